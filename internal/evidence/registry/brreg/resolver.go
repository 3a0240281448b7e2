// Package brreg resolves organizations against the Brønnøysund business
// registry (Enhetsregisteret).
package brreg

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"arbt/internal/evidence/registry/metrics"
	"arbt/internal/evidence/registry/providers"
	"arbt/internal/evidence/registry/upstream"
)

const (
	// DefaultBaseURL is the public Enhetsregisteret API.
	DefaultBaseURL = "https://data.brreg.no/enhetsregisteret/api"

	// DefaultMaxDepth bounds how many records are visited per resolution.
	DefaultMaxDepth = 16
)

// Resolver walks the parent chain of an organization until it reaches a
// main unit. It holds no per-request state and is safe for concurrent use.
type Resolver struct {
	client   *upstream.Client
	baseURL  string
	maxDepth int
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a resolver against baseURL, e.g. DefaultBaseURL.
func NewResolver(client *upstream.Client, baseURL string, opts ...Option) *Resolver {
	r := &Resolver{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer("arbt/internal/evidence/registry/brreg"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveMainUnit returns the main unit that id belongs to. A main unit
// resolves to itself. Unknown ids, cycles in the parent chain and chains
// longer than the depth bound are ErrorOrganizationNotFound; every other
// upstream failure is returned with its own kind.
func (r *Resolver) ResolveMainUnit(ctx context.Context, id string) (OrganizationRef, error) {
	ctx, span := r.tracer.Start(ctx, "brreg.resolve_main_unit",
		trace.WithAttributes(attribute.String("organization.number", id)))
	defer span.End()

	ref, depth, err := r.resolve(ctx, id)
	span.SetAttributes(attribute.Int("brreg.depth", depth))
	if err != nil {
		span.SetStatus(codes.Error, string(providers.KindOf(err)))
		return OrganizationRef{}, err
	}
	r.metrics.ObserveResolutionDepth(depth)
	span.SetAttributes(attribute.String("organization.main_unit", ref.OrganizationNumber))
	return ref, nil
}

func (r *Resolver) resolve(ctx context.Context, id string) (OrganizationRef, int, error) {
	visited := make(map[string]struct{}, 4)
	current := id

	for depth := 1; depth <= r.maxDepth; depth++ {
		if _, seen := visited[current]; seen {
			r.logger.WarnContext(ctx, "cycle in organization hierarchy",
				"organization_number", id,
				"repeated", current,
			)
			return OrganizationRef{}, depth, providers.NotFound(id, "organization hierarchy contains a cycle")
		}
		visited[current] = struct{}{}

		ref, err := r.lookup(ctx, current)
		if err != nil {
			return OrganizationRef{}, depth, err
		}
		if ref.IsMainUnit() {
			return ref, depth, nil
		}
		current = ref.Parent
	}

	r.logger.WarnContext(ctx, "organization hierarchy too deep",
		"organization_number", id,
		"max_depth", r.maxDepth,
	)
	return OrganizationRef{}, r.maxDepth, providers.NotFound(id, "organization hierarchy exceeds maximum depth")
}

// lookup reads one record, trying the main unit endpoint before the
// sub-unit endpoint.
func (r *Resolver) lookup(ctx context.Context, id string) (OrganizationRef, error) {
	unit, err := upstream.FetchAndDecode[unitRecord](ctx, r.client, r.unitURL("enheter", id))
	if err == nil {
		return unit.ref(), nil
	}
	if !providers.IsNotFound(err) {
		return OrganizationRef{}, err
	}

	unit, err = upstream.FetchAndDecode[unitRecord](ctx, r.client, r.unitURL("underenheter", id))
	if err == nil {
		return unit.ref(), nil
	}
	if providers.IsNotFound(err) {
		return OrganizationRef{}, providers.NotFound(id, "organization not found in the business registry")
	}
	return OrganizationRef{}, err
}

func (r *Resolver) unitURL(collection, id string) string {
	return r.baseURL + "/" + collection + "/" + url.PathEscape(id)
}
