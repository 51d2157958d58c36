// Package state keeps per-conversation dialogue state for Telegram bots.
// Values are keyed by chat id; updates for one key are applied under that
// key's lock so concurrent updates for the same chat never interleave.
package state
