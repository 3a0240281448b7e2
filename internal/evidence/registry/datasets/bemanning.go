package datasets

import (
	"context"
	"errors"

	"arbt/internal/evidence/registry/evidence"
	"arbt/internal/evidence/registry/upstream"
)

var bemanningCode = evidence.Code{
	Name:   BemanningID,
	Source: Source,
	Values: []evidence.ValueSpec{
		{Name: "Organisasjonsnummer", Type: evidence.TypeString},
		{Name: "Godkjenningsstatus", Type: evidence.TypeString},
	},
}

type bemanningRecord struct {
	OrganizationNumber *string `json:"Organisasjonsnummer"`
	ApprovalStatus     *string `json:"Godkjenningsstatus"`
}

func (r *bemanningRecord) Validate() error {
	return errors.Join(
		requireString("Organisasjonsnummer", r.OrganizationNumber),
		requireString("Godkjenningsstatus", r.ApprovalStatus),
	)
}

// Bemanning harvests the staffing agency register. Every failure is hard,
// including an organization missing from the register.
type Bemanning struct {
	base
}

func NewBemanning(resolver MainUnitResolver, client *upstream.Client, template string) *Bemanning {
	return &Bemanning{base{resolver: resolver, client: client, template: template}}
}

func (p *Bemanning) ID() string          { return BemanningID }
func (p *Bemanning) Code() evidence.Code { return bemanningCode }

func (p *Bemanning) Harvest(ctx context.Context, orgnr string) ([]evidence.Value, error) {
	_, target, err := p.resolve(ctx, orgnr)
	if err != nil {
		return nil, err
	}
	rec, err := upstream.FetchAndDecode[bemanningRecord](ctx, p.client, target)
	if err != nil {
		return nil, err
	}

	b := evidence.NewBuilder(bemanningCode)
	b.Add("Organisasjonsnummer", *rec.OrganizationNumber, Source)
	b.Add("Godkjenningsstatus", *rec.ApprovalStatus, Source)
	return assemble(bemanningCode, b)
}
