// Package upstream performs GET requests against registry APIs and classifies
// every result into an Outcome. It knows nothing about registries or datasets.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"arbt/internal/evidence/registry/metrics"
)

// DefaultMaxBodySize bounds how much of a response body is read.
const DefaultMaxBodySize = 5 << 20

const tracerName = "arbt/internal/evidence/registry/upstream"

var errBodyTooLarge = errors.New("response body exceeds size limit")

// Doer is the configured HTTP transport. *http.Client satisfies it; the
// transport owns timeouts, TLS and connection pooling.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Validator is implemented by payload types with required fields. Decode
// calls it after unmarshalling.
type Validator interface {
	Validate() error
}

// Client fetches upstream JSON. It holds no per-request state and performs
// no retries.
type Client struct {
	http        Doer
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for non-success outcomes.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics enables upstream metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithMaxBodySize overrides DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// New builds a Client around an already-configured transport.
func New(httpClient Doer, opts ...Option) *Client {
	c := &Client{
		http:        httpClient,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:      otel.Tracer(tracerName),
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues a GET for rawURL and classifies the result. It never returns
// a raw transport error: failures to obtain a response, including context
// cancellation, become TagNetworkFailure.
func (c *Client) Fetch(ctx context.Context, rawURL string) Outcome {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "upstream.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.full", rawURL),
		))
	defer span.End()

	out := c.fetch(ctx, rawURL)

	span.SetAttributes(attribute.String("upstream.outcome", out.Tag().String()))
	if out.Status() != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", out.Status()))
	}
	if out.Tag() != TagSuccess && out.Tag() != TagNotFound {
		span.SetStatus(codes.Error, out.Tag().String())
		if out.Cause() != nil {
			span.RecordError(out.Cause())
		}
	}
	c.metrics.ObserveUpstream(hostOf(rawURL), out.Tag().String(), time.Since(start))
	c.log(ctx, out)
	return out
}

func (c *Client) fetch(ctx context.Context, rawURL string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return NetworkFailure(rawURL, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return NetworkFailure(rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NotFound(rawURL)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ClientError(rawURL, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return ServerError(rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return NetworkFailure(rawURL, fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > c.maxBodySize {
		return DecodeFailure(rawURL, errBodyTooLarge)
	}
	return Success(rawURL, body)
}

func (c *Client) log(ctx context.Context, out Outcome) {
	switch out.Tag() {
	case TagSuccess:
		return
	case TagNotFound:
		c.logger.InfoContext(ctx, "upstream record not found", "url", out.URL())
	case TagDecodeFailure:
		c.logger.ErrorContext(ctx, "upstream payload rejected",
			"url", out.URL(),
			"error", out.Cause(),
		)
	default:
		c.logger.WarnContext(ctx, "upstream request failed",
			"url", out.URL(),
			"outcome", out.Tag().String(),
			"status", out.Status(),
			"error", out.Cause(),
		)
	}
}

// FetchAndDecode fetches rawURL and strictly decodes a successful body into T.
// The error, if any, is a *providers.HarvestError of exactly one kind.
func FetchAndDecode[T any](ctx context.Context, c *Client, rawURL string) (T, error) {
	var zero T
	out := c.Fetch(ctx, rawURL)
	if out.Tag() != TagSuccess {
		return zero, out.Err()
	}

	v, err := Decode[T](out.Payload())
	if err != nil {
		failed := DecodeFailure(rawURL, err)
		c.log(ctx, failed)
		return zero, failed.Err()
	}
	return v, nil
}

// Decode unmarshals payload into T and runs its Validate method when T (or
// *T) implements Validator. Empty and null payloads are rejected.
func Decode[T any](payload []byte) (T, error) {
	var v T
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return v, errors.New("empty payload")
	}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return v, err
	}
	if val, ok := any(&v).(Validator); ok {
		if err := val.Validate(); err != nil {
			var zero T
			return zero, err
		}
	}
	return v, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}
