package router

import (
	"time"

	tg "github.com/m3rciful/schedulebot/core/telegram"
	"github.com/m3rciful/schedulebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM is the dialogue owner that receives messages while a conversation is
// in progress. Conversations are keyed by chat.
type FSM interface {
	InProgress(chatID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	UnknownText  tele.HandlerFunc
	UnknownMedia tele.HandlerFunc
}

func inProgress(fsm FSM, c tele.Context) bool {
	if fsm == nil || c.Chat() == nil {
		return false
	}
	return fsm.InProgress(c.Chat().ID)
}

// TextRoutes builds handlers for free text and media messages. Messages of a
// conversation with a dialogue in progress go to the FSM; the rest go to the
// registry text fallback or the configured unknown handlers.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if inProgress(fsm, c) {
			return handleWithSummary(c, "fsm", start, func() error {
				return fsm.ManagerHandler(c)
			})
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if inProgress(fsm, c) {
			return handleWithSummary(c, "fsm_media", start, func() error {
				return fsm.ManagerHandler(c)
			})
		}
		if opts.UnknownMedia != nil {
			return handleWithSummary(c, "unexpected_media", start, func() error {
				return opts.UnknownMedia(c)
			})
		}
		logHandlerSummary(c, "unexpected_media", start, "skip", nil)
		return nil
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnMedia,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler)),
		},
	}
}
