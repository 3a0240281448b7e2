package httpclient

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"arbt/internal/platform/metrics"
	"arbt/pkg/platform/circuit"
)

// ErrCircuitOpen is returned without contacting the host while its breaker
// is open.
var ErrCircuitOpen = errors.New("circuit open")

// breakerTransport trips per host on transport errors and 5xx responses.
// Cancellations by the caller are not held against the host.
type breakerTransport struct {
	next    http.RoundTripper
	opts    []circuit.Option
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

func newBreakerTransport(next http.RoundTripper, cfg Config, o options) *breakerTransport {
	return &breakerTransport{
		next: next,
		opts: []circuit.Option{
			circuit.WithFailureThreshold(cfg.BreakerFailures),
			circuit.WithSuccessThreshold(cfg.BreakerSuccesses),
			circuit.WithOpenTimeout(cfg.BreakerOpenTimeout),
			circuit.WithClock(o.now),
		},
		logger:   o.logger,
		metrics:  o.metrics,
		breakers: make(map[string]*circuit.Breaker),
	}
}

func (t *breakerTransport) breaker(host string) *circuit.Breaker {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.breakers[host]
	if !ok {
		b = circuit.New(host, t.opts...)
		t.breakers[host] = b
	}
	return b
}

func (t *breakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	b := t.breaker(req.URL.Host)
	if !b.Allow() {
		t.metrics.RecordRejection(b.Name())
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, b.Name())
	}

	resp, err := t.next.RoundTrip(req)
	switch {
	case err != nil && req.Context().Err() != nil:
		return nil, err
	case err != nil:
		t.failure(req, b)
		return nil, err
	case resp.StatusCode >= http.StatusInternalServerError:
		t.failure(req, b)
	default:
		t.success(req, b)
	}
	return resp, nil
}

func (t *breakerTransport) failure(req *http.Request, b *circuit.Breaker) {
	if _, change := b.RecordFailure(); change.Opened {
		t.metrics.RecordTransition(b.Name(), circuit.StateOpen.String())
		t.logger.WarnContext(req.Context(), "circuit opened", "host", b.Name())
	}
}

func (t *breakerTransport) success(req *http.Request, b *circuit.Breaker) {
	if _, change := b.RecordSuccess(); change.Closed {
		t.metrics.RecordTransition(b.Name(), circuit.StateClosed.String())
		t.logger.InfoContext(req.Context(), "circuit closed", "host", b.Name())
	}
}
