package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"arbt/internal/evidence/registry/evidence"
	"arbt/internal/evidence/registry/metrics"
	"arbt/internal/evidence/registry/providers"
	dErrors "arbt/pkg/domain-errors"
	"arbt/pkg/platform/httputil"
	"arbt/pkg/requestcontext"
)

// Registry resolves dataset names to providers.
type Registry interface {
	Get(id string) (providers.Provider, bool)
	Codes() []evidence.Code
}

// Handler wires the dataset endpoints to the provider registry.
type Handler struct {
	registry Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New constructs a dataset handler with its dependencies.
func New(registry Registry, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// Register mounts dataset endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/metadata", h.HandleMetadata)
	r.Post("/api/{dataset}", h.HandleHarvest)
}

// HandleMetadata handles GET /api/metadata requests.
func (h *Handler) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.registry.Codes())
}

// HandleHarvest handles POST /api/{dataset} requests.
func (h *Handler) HandleHarvest(w http.ResponseWriter, r *http.Request) {
	dataset := chi.URLParam(r, "dataset")
	ctx := requestcontext.WithDataset(r.Context(), dataset)
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	provider, ok := h.registry.Get(dataset)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown dataset"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[HarvestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	orgnr := req.ParsedOrganizationNumber().String()

	values, err := provider.Harvest(ctx, orgnr)
	if err != nil {
		kind := providers.KindOf(err)
		h.metrics.ObserveHarvest(dataset, string(kind), time.Since(start))

		level := slog.LevelError
		if kind == providers.ErrorOrganizationNotFound || kind == providers.ErrorUpstreamClient {
			level = slog.LevelInfo
		}
		h.logger.Log(ctx, level, "harvest failed",
			"request_id", requestID,
			"dataset", dataset,
			"organization_number", orgnr,
			"kind", kind,
			"retryable", providers.IsRetryable(err),
			"error", err,
		)
		httputil.WriteError(w, toDomainError(err))
		return
	}

	h.metrics.ObserveHarvest(dataset, "ok", time.Since(start))
	h.logger.InfoContext(ctx, "dataset harvested",
		"request_id", requestID,
		"dataset", dataset,
		"organization_number", orgnr,
		"values", len(values),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, values)
}

// toDomainError maps a harvest error kind to its client-visible code.
func toDomainError(err error) error {
	switch providers.KindOf(err) {
	case providers.ErrorOrganizationNotFound:
		return dErrors.Wrap(err, dErrors.CodeNotFound, "organization could not be found")
	case providers.ErrorUpstreamClient:
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "request was rejected by the upstream registry")
	case providers.ErrorUpstreamServer, providers.ErrorNetwork:
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "upstream registry is unavailable, try again later")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "request could not be processed")
	}
}
