package bootstrap

import (
	"fmt"

	coreconfig "github.com/m3rciful/schedulebot/core/config"
	"github.com/m3rciful/schedulebot/core/logger"
	"github.com/m3rciful/schedulebot/core/metrics"
	"github.com/m3rciful/schedulebot/internal/store"
)

// Options control the bootstrap pipeline.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	OpenStore  func(path string, opts ...store.Option) (*store.FileStore, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	Store   *store.FileStore
	Metrics *metrics.Metrics
}

// Run initializes the logger, installs the process metrics and opens the
// schedule store.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	m := metrics.New()
	metrics.SetDefault(m)

	open := opts.OpenStore
	if open == nil {
		open = store.Open
	}
	st, err := open(opts.Config.Storage.SchedulePath, store.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: schedule store: %w", err)
	}

	return &Result{Store: st, Metrics: m}, nil
}
