package helpers

import (
	"context"

	"github.com/m3rciful/schedulebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	contextKey = "logger_ctx"
	ridKey     = "rid"
)

// Identity returns the update, chat and user ids of c; missing parts are 0.
func Identity(c tele.Context) (updateID int, chatID, userID int64) {
	updateID = c.Update().ID
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	return updateID, chatID, userID
}

// NewRequestContext derives the logging context of c from its ids, stores
// it together with the rid on c and returns it.
func NewRequestContext(c tele.Context) context.Context {
	updateID, chatID, userID := Identity(c)
	rid := logger.BuildRID(updateID, chatID, userID)
	c.Set(ridKey, rid)

	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.Component("tg"))
	c.Set(contextKey, ctx)
	return ctx
}

// BuildContext returns the request context of c, creating it on first use.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(contextKey).(context.Context); ok {
		return ctx
	}
	return NewRequestContext(c)
}

// WithHandler names the handler in the stored context of c.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := logger.WithHandler(BuildContext(c), handler)
	c.Set(contextKey, ctx)
	return ctx
}
