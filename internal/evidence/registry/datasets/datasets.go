// Package datasets implements the Arbeidstilsynet registry providers. Each
// provider resolves the requested organization to its main unit, fetches
// its own registry record and maps it to evidence values under a
// dataset-specific missing-data policy.
package datasets

import (
	"context"
	"strings"

	"arbt/internal/evidence/registry/brreg"
	"arbt/internal/evidence/registry/evidence"
	"arbt/internal/evidence/registry/providers"
	"arbt/internal/evidence/registry/upstream"
)

// Source is the evidence source of every value these providers emit.
const Source = "Arbeidstilsynet"

// Placeholder is replaced by the resolved organization number in dataset
// URL templates.
const Placeholder = "{orgnr}"

// Dataset names, also used as provider IDs and route names.
const (
	BemanningID = "Bemanningsforetakregisteret"
	RenholdID   = "Renholdsregisteret"
	BilpleieID  = "Bilpleieregisteret"
)

// MainUnitResolver resolves an organization number to its main unit.
// *brreg.Resolver implements it.
type MainUnitResolver interface {
	ResolveMainUnit(ctx context.Context, id string) (brreg.OrganizationRef, error)
}

// Templates holds the dataset URL templates, each containing Placeholder.
type Templates struct {
	Bemanning string
	Renhold   string
	Bilpleie  string
}

// Register adds all three providers to reg.
func Register(reg *providers.ProviderRegistry, resolver MainUnitResolver, client *upstream.Client, t Templates) error {
	for _, p := range []providers.Provider{
		NewBemanning(resolver, client, t.Bemanning),
		NewRenhold(resolver, client, t.Renhold),
		NewBilpleie(resolver, client, t.Bilpleie),
	} {
		if err := reg.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// ExpandTemplate substitutes orgnr for every Placeholder in template.
func ExpandTemplate(template, orgnr string) string {
	return strings.ReplaceAll(template, Placeholder, orgnr)
}

// base is the composition shared by the providers.
type base struct {
	resolver MainUnitResolver
	client   *upstream.Client
	template string
}

func (b base) resolve(ctx context.Context, orgnr string) (brreg.OrganizationRef, string, error) {
	org, err := b.resolver.ResolveMainUnit(ctx, orgnr)
	if err != nil {
		return brreg.OrganizationRef{}, "", err
	}
	return org, ExpandTemplate(b.template, org.OrganizationNumber), nil
}

// assemble returns the builder's values. A builder failure is a defect in
// the provider, so it is reported as an internal error.
func assemble(code evidence.Code, b *evidence.Builder) ([]evidence.Value, error) {
	values, err := b.Values()
	if err != nil {
		return nil, providers.NewHarvestError(providers.ErrorInternal, code.Name, "evidence assembly failed", err)
	}
	return values, nil
}

func requireString(field string, v *string) error {
	if v == nil {
		return &missingFieldError{field: field}
	}
	return nil
}

type missingFieldError struct {
	field string
}

func (e *missingFieldError) Error() string {
	return e.field + " is required"
}
