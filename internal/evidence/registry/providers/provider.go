// Package providers defines the dataset provider contract, the provider
// registry used for dispatch, and the harvest error taxonomy.
package providers

import (
	"context"
	"fmt"
	"sort"

	"arbt/internal/evidence/registry/evidence"
)

// Provider harvests one dataset for an organization.
//
//go:generate mockgen -source=provider.go -destination=mocks/provider_mock.go -package=mocks Provider
type Provider interface {
	// ID returns the dataset name used for dispatch, e.g. "Renholdsregisteret".
	ID() string

	// Code returns the dataset's declared evidence values.
	Code() evidence.Code

	// Harvest resolves orgnr to its main unit and returns the dataset's
	// evidence values in contract order. Errors are *HarvestError.
	Harvest(ctx context.Context, orgnr string) ([]evidence.Value, error)
}

// ProviderRegistry maps dataset names to providers. It is populated once at
// startup and read-only afterwards.
type ProviderRegistry struct {
	providers map[string]Provider
}

// NewProviderRegistry creates a new empty registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry
func (r *ProviderRegistry) Register(p Provider) error {
	id := p.ID()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("%w: %s", ErrProviderRegistered, id)
	}
	r.providers[id] = p
	return nil
}

// Get retrieves a provider by dataset name
func (r *ProviderRegistry) Get(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// All returns all registered providers ordered by dataset name.
func (r *ProviderRegistry) All() []Provider {
	result := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// Codes returns the metadata of every registered dataset.
func (r *ProviderRegistry) Codes() []evidence.Code {
	all := r.All()
	codes := make([]evidence.Code, 0, len(all))
	for _, p := range all {
		codes = append(codes, p.Code())
	}
	return codes
}
