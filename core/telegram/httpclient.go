package telegram

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/schedulebot/core/logger"
	"github.com/m3rciful/schedulebot/core/telegram/netutil"
)

// HTTPClientOptions tunes the client used for Bot API calls. Zero fields
// take the defaults below.
type HTTPClientOptions struct {
	DialTimeout     time.Duration
	ResponseTimeout time.Duration
	ClientTimeout   time.Duration
	Retries         int
	RetryBackoff    time.Duration
}

func (o HTTPClientOptions) withDefaults() HTTPClientOptions {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.ResponseTimeout <= 0 {
		o.ResponseTimeout = 5 * time.Second
	}
	// Long polling holds the request open; the timeout must exceed it.
	if o.ClientTimeout <= 0 {
		o.ClientTimeout = 30 * time.Second
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	return o
}

// BuildHTTPClient returns an HTTP client with default options.
func BuildHTTPClient() *http.Client {
	return NewHTTPClient(HTTPClientOptions{Retries: 3})
}

// NewHTTPClient returns a client that retries transient transport failures
// of replayable requests.
func NewHTTPClient(opts HTTPClientOptions) *http.Client {
	opts = opts.withDefaults()
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.DialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   opts.DialTimeout,
		ResponseHeaderTimeout: opts.ResponseTimeout,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout: opts.ClientTimeout,
		Transport: &retryTransport{
			base:    transport,
			retries: opts.Retries,
			backoff: opts.RetryBackoff,
		},
	}
}

var errNoReplay = errors.New("telegram: request body cannot be replayed")

type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	for attempt := 1; ; attempt++ {
		resp, err := t.base.RoundTrip(req)
		if err == nil || attempt > t.retries || !netutil.ShouldRetry(err) {
			return resp, err
		}

		next, rerr := rewind(req)
		if rerr != nil {
			return nil, err
		}
		req = next

		delay := t.backoff * time.Duration(attempt)
		logger.Debug(ctx, "tg", "http.retry",
			slog.String("status", "retry"),
			slog.Int("attempts", attempt),
			slog.Duration("backoff", delay),
			slog.String("err_code", "transport"),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// rewind clones req with a fresh body. Requests whose body cannot be
// replayed are not retried.
func rewind(req *http.Request) (*http.Request, error) {
	next := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return next, nil
	}
	if req.GetBody == nil {
		return nil, errNoReplay
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	next.Body = body
	return next, nil
}
