package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/m3rciful/schedulebot/core/bootstrap"
	corecmd "github.com/m3rciful/schedulebot/core/cmd"
	coreconfig "github.com/m3rciful/schedulebot/core/config"
	"github.com/m3rciful/schedulebot/core/logger"
	"github.com/m3rciful/schedulebot/core/metrics"
	coretelegram "github.com/m3rciful/schedulebot/core/telegram"
	tghelpers "github.com/m3rciful/schedulebot/core/telegram/helpers"
	"github.com/m3rciful/schedulebot/internal/assistant"
	"github.com/m3rciful/schedulebot/internal/bot"

	tele "gopkg.in/telebot.v4"
)

const rateLimitedText = "Слишком много сообщений. Подождите немного."

type app struct {
	cfg     *coreconfig.Config
	infra   *bootstrap.Result
	metrics *metrics.Server
}

func (a *app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	svc := assistant.New(a.infra.Store,
		assistant.WithLocation(a.cfg.Location()),
		assistant.WithMetrics(a.infra.Metrics),
	)
	b := bot.New(svc)

	reg := coretelegram.NewRegistry()
	if err := b.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	return coretelegram.RunOptions{
		Config:   a.cfg,
		Registry: reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg, func(c tele.Context) error {
			return tghelpers.SendText(c, rateLimitedText)
		}),
		Routes:  b.Routes(reg),
		OnStart: a.start,
		OnStop:  a.stop,
	}, nil
}

func (a *app) start(context.Context, coretelegram.Runtime) error {
	if a.cfg.Metrics.Listen != "" {
		a.metrics = a.infra.Metrics.Serve(a.cfg.Metrics.Listen)
	}
	return nil
}

func (a *app) stop(ctx context.Context, _ coretelegram.Runtime) error {
	if err := a.metrics.Shutdown(ctx); err != nil {
		logger.Warn(ctx, "metrics", "shutdown",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return nil
}

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		EnvFile:           ".env",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return coreconfig.Load(path)
		},
		Bootstrap: func(cc corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := cc.CoreConfig()
			infra, err := bootstrap.Run(bootstrap.Options{Config: cfg})
			if err != nil {
				return nil, err
			}
			return &app{cfg: cfg, infra: infra}, nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
