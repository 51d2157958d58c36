package logger

import "strings"

// enum maps accepted spellings of a field onto its canonical value.
type enum map[string]string

func (e enum) lookup(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", false
	}
	canon, ok := e[v]
	if !ok {
		return v, false
	}
	return canon, true
}

var (
	levels = enum{
		"debug":   "DEBUG",
		"info":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
	}
	statuses = enum{
		"ok":           "ok",
		"fail":         "fail",
		"failed":       "fail",
		"skip":         "skip",
		"retry":        "retry",
		"rate_limited": "rate_limited",
		"cancelled":    "cancelled",
	}
	intents = enum{
		"add":    "add",
		"delete": "delete",
		"none":   "none",
	}
	outcomes = enum{
		"ok":           "ok",
		"fail":         "fail",
		"cancelled":    "cancelled",
		"rate_limited": "rate_limited",
	}
)

func normalizeLevel(level string) string {
	if canon, ok := levels.lookup(level); ok {
		return canon
	}
	if level == "" {
		return "INFO"
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool)   { return statuses.lookup(status) }
func normalizeIntent(intent string) (string, bool)   { return intents.lookup(intent) }
func normalizeOutcome(outcome string) (string, bool) { return outcomes.lookup(outcome) }

// defaultKeyOrder puts the fields every line has first, then request
// identity, then the domain fields, then errors.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano", "update_id", "user_id", "chat_id", "chat_type",
	"handler", "op", "cb_key", "outcome", "duration_ms", "messages", "kb",
	"intent", "slot", "window", "days", "count", "removed", "lesson", "start", "path",
	"mode", "listen", "public_url", "tz",
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms", "rate_limited",
}
