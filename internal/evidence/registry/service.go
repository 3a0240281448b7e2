// Package registry assembles the harvesting pipeline from configuration:
// the breaker-guarded HTTP client, the upstream client, the business
// registry resolver and the dataset providers.
package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"arbt/internal/evidence/registry/brreg"
	"arbt/internal/evidence/registry/datasets"
	"arbt/internal/evidence/registry/evidence"
	"arbt/internal/evidence/registry/metrics"
	"arbt/internal/evidence/registry/providers"
	"arbt/internal/evidence/registry/upstream"
	"arbt/internal/platform/config"
	"arbt/internal/platform/httpclient"
	platformmetrics "arbt/internal/platform/metrics"
	"arbt/pkg/domain"
)

// Service owns the provider registry for one process.
type Service struct {
	providers *providers.ProviderRegistry
	metrics   *metrics.Metrics
}

// NewService wires every dataset provider from cfg. Metrics are registered
// with reg; a nil reg keeps them in a private registry.
func NewService(cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) (*Service, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	harvestMetrics := metrics.NewWithRegisterer(reg)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPClient.Timeout
	httpCfg.BreakerFailures = cfg.HTTPClient.BreakerFailures
	httpCfg.BreakerSuccesses = cfg.HTTPClient.BreakerSuccesses
	httpCfg.BreakerOpenTimeout = cfg.HTTPClient.BreakerOpenTimeout
	httpClient := httpclient.New(httpCfg,
		httpclient.WithLogger(logger),
		httpclient.WithMetrics(platformmetrics.NewWithRegisterer(reg)),
	)

	client := upstream.New(httpClient,
		upstream.WithLogger(logger),
		upstream.WithMetrics(harvestMetrics),
	)
	resolver := brreg.NewResolver(client, cfg.Registry.BrregBaseURL,
		brreg.WithMaxDepth(cfg.Registry.MaxDepth),
		brreg.WithLogger(logger),
		brreg.WithMetrics(harvestMetrics),
	)

	provs := providers.NewProviderRegistry()
	err := datasets.Register(provs, resolver, client, datasets.Templates{
		Bemanning: cfg.Registry.BemanningURL,
		Renhold:   cfg.Registry.RenholdURL,
		Bilpleie:  cfg.Registry.BilpleieURL,
	})
	if err != nil {
		return nil, fmt.Errorf("register datasets: %w", err)
	}

	return &Service{providers: provs, metrics: harvestMetrics}, nil
}

// Providers returns the dataset registry used for dispatch.
func (s *Service) Providers() *providers.ProviderRegistry {
	return s.providers
}

// Metrics returns the harvest metrics shared by the pipeline.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// Harvest validates orgnr and runs the named dataset's provider.
func (s *Service) Harvest(ctx context.Context, dataset, orgnr string) ([]evidence.Value, error) {
	p, ok := s.providers.Get(dataset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", providers.ErrProviderNotFound, dataset)
	}
	parsed, err := domain.ParseOrganizationNumber(orgnr)
	if err != nil {
		return nil, err
	}
	return p.Harvest(ctx, parsed.String())
}
