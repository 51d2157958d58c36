// Package metrics exports bot counters in Prometheus format.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/schedulebot/core/logger"
)

const namespace = "schedulebot"

// Metrics groups the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	updates        *prometheus.CounterVec
	handlerLatency *prometheus.HistogramVec
	storeOps       *prometheus.CounterVec
	dialogs        *prometheus.CounterVec
}

var global atomic.Pointer[Metrics]

// SetDefault installs m as the process-wide collector set used by package helpers.
func SetDefault(m *Metrics) {
	global.Store(m)
}

// Default returns the process-wide collector set, or nil.
func Default() *Metrics {
	return global.Load()
}

// New creates collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tg",
			Name:      "handled_total",
			Help:      "Updates handled, by handler and outcome",
		}, []string{"handler", "outcome"}),
		handlerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tg",
			Name:      "handler_seconds",
			Help:      "Handler latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"handler"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Schedule file operations, by operation and status",
		}, []string{"op", "status"}),
		dialogs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dialog",
			Name:      "finished_total",
			Help:      "Lesson dialogues finished, by intent and result",
		}, []string{"intent", "result"}),
	}
	reg.MustRegister(
		m.updates,
		m.handlerLatency,
		m.storeOps,
		m.dialogs,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHandler records one handled update.
func (m *Metrics) ObserveHandler(handler, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(handler, outcome).Inc()
	m.handlerLatency.WithLabelValues(handler).Observe(took.Seconds())
}

// ObserveStore records one store operation.
func (m *Metrics) ObserveStore(op string, err error) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(op, logger.Status(err)).Inc()
}

// ObserveDialog records a finished or cancelled dialogue.
func (m *Metrics) ObserveDialog(intent, result string) {
	if m == nil {
		return
	}
	m.dialogs.WithLabelValues(intent, result).Inc()
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics on addr until Shutdown is called.
type Server struct {
	srv  *http.Server
	done chan struct{}
}

// Serve starts the metrics endpoint in the background.
func (m *Metrics) Serve(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	s := &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		done: make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		logger.Info(context.Background(), "metrics", "listen",
			slog.String("status", "ok"),
			slog.String("listen", addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "metrics", "listen",
				slog.String("status", "fail"),
				slog.String("listen", addr),
				slog.String("err", err.Error()),
			)
		}
	}()
	return s
}

// Shutdown stops the endpoint and waits for the listener goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}
