package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/schedulebot/core/logger"
	tg "github.com/m3rciful/schedulebot/core/telegram"
	"github.com/m3rciful/schedulebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes prepares command handlers wrapped with shared middleware.
// Each command emits one handler.handled summary line.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for _, cmd := range reg.ListCommands(false) {
		def, _ := reg.Command(cmd.Text)
		name := normalizeHandlerName(cmd.Text)
		next := def.Handler
		h := func(c tele.Context) error {
			start := time.Now()
			return handleWithSummary(c, name, start, func() error {
				return next(c)
			})
		}
		routes = append(routes, tg.Route{
			Endpoint: cmd.Text,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
		})
	}

	if logger.TWire != nil {
		logger.TWire.Info("tg.wire",
			slog.String("event", "routes.commands"),
			slog.String("status", "ok"),
			slog.Int("count", len(routes)),
			slog.Int("callbacks", len(reg.ListCallbacks())),
		)
	}

	return routes
}
