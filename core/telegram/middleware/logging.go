package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/schedulebot/core/logger"
	"github.com/m3rciful/schedulebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/schedulebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// receipts remembers recently logged update IDs so an update passing through
// several wrapped branches is logged once.
type receipts struct {
	mu      sync.Mutex
	seen    map[int]time.Time
	keepFor time.Duration
}

var recent = &receipts{seen: make(map[int]time.Time), keepFor: 10 * time.Second}

func (r *receipts) first(updateID int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ts := range r.seen {
		if now.Sub(ts) > r.keepFor {
			delete(r.seen, id)
		}
	}
	if _, ok := r.seen[updateID]; ok {
		return false
	}
	r.seen[updateID] = now
	return true
}

// LoggerMiddleware sets the rid and update metadata for downstream logs and
// writes one sampled debug receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		ctx := tghelpers.NewRequestContext(c)

		if logger.ShouldSampleDebug() && recent.first(upd.ID, time.Now()) {
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", receiptAttrs(c)...)
		}

		return next(c)
	}
}

func receiptAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil && user.Username != "" {
		attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
	}
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		key, payload := callbacks.ParseCallbackData(upd.Callback)
		attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		if payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		} else {
			attrs = append(attrs, slog.Bool("media", true))
		}
	}
	return attrs
}
