// Package httpclient builds the outbound HTTP client used for registry
// calls: a tuned transport, a total request timeout and a per-host circuit
// breaker.
package httpclient

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"arbt/internal/platform/metrics"
)

type Config struct {
	// Total timeout for the entire request, including reading the body.
	// A context deadline can still shorten it.
	Timeout time.Duration

	// Transport / dial timeouts.
	DialTimeout     time.Duration
	KeepAlive       time.Duration
	TLSHandshake    time.Duration
	ResponseHeader  time.Duration
	IdleConnTimeout time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int

	// Circuit breaker, one per upstream host.
	BreakerFailures    int
	BreakerSuccesses   int
	BreakerOpenTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:             30 * time.Second,
		DialTimeout:         5 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshake:        5 * time.Second,
		ResponseHeader:      20 * time.Second,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		BreakerFailures:     5,
		BreakerSuccesses:    1,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

// Option configures New.
type Option func(*options)

type options struct {
	base    http.RoundTripper
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// WithTransport replaces the tuned transport underneath the breaker.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock overrides the breakers' time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New returns a client whose requests pass through a circuit breaker for
// their host before reaching the tuned transport.
func New(cfg Config, opts ...Option) *http.Client {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.base == nil {
		o.base = newTransport(cfg)
	}

	return &http.Client{
		Transport: newBreakerTransport(o.base, cfg, o),
		Timeout:   cfg.Timeout,
	}
}

func newTransport(cfg Config) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: cfg.KeepAlive,
	}

	return &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		ForceAttemptHTTP2: true,

		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,

		TLSHandshakeTimeout:   cfg.TLSHandshake,
		ResponseHeaderTimeout: cfg.ResponseHeader,
	}
}
