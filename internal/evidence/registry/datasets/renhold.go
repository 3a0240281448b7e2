package datasets

import (
	"context"
	"errors"

	"arbt/internal/evidence/registry/evidence"
	"arbt/internal/evidence/registry/upstream"
)

var renholdCode = evidence.Code{
	Name:   RenholdID,
	Source: Source,
	Values: []evidence.ValueSpec{
		{Name: "Organisasjonsnummer", Type: evidence.TypeString},
		{Name: "Status", Type: evidence.TypeString},
		{Name: "StatusEndret", Type: evidence.TypeDateTime},
	},
}

type renholdRecord struct {
	OrganizationNumber *string      `json:"Organisasjonsnummer"`
	Status             *string      `json:"Status"`
	StatusChanged      RegistryTime `json:"StatusEndret"`
}

func (r *renholdRecord) Validate() error {
	return errors.Join(
		requireString("Organisasjonsnummer", r.OrganizationNumber),
		requireString("Status", r.Status),
	)
}

// Renhold harvests the cleaning company register. StatusEndret is optional
// and omitted when the register has no date for it.
type Renhold struct {
	base
}

func NewRenhold(resolver MainUnitResolver, client *upstream.Client, template string) *Renhold {
	return &Renhold{base{resolver: resolver, client: client, template: template}}
}

func (p *Renhold) ID() string          { return RenholdID }
func (p *Renhold) Code() evidence.Code { return renholdCode }

func (p *Renhold) Harvest(ctx context.Context, orgnr string) ([]evidence.Value, error) {
	_, target, err := p.resolve(ctx, orgnr)
	if err != nil {
		return nil, err
	}
	rec, err := upstream.FetchAndDecode[renholdRecord](ctx, p.client, target)
	if err != nil {
		return nil, err
	}

	b := evidence.NewBuilder(renholdCode)
	b.Add("Organisasjonsnummer", *rec.OrganizationNumber, Source)
	b.Add("Status", *rec.Status, Source)
	if rec.StatusChanged.IsSet() {
		b.Add("StatusEndret", rec.StatusChanged.Time, Source, evidence.Optional())
	}
	return assemble(renholdCode, b)
}
