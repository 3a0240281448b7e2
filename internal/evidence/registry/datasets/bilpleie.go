package datasets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"arbt/internal/evidence/registry/evidence"
	"arbt/internal/evidence/registry/providers"
	"arbt/internal/evidence/registry/upstream"
)

// Values emitted when the organization is absent from the car care register.
const (
	NotFoundStatus         = -1
	NotFoundStatusText     = "not found"
	NotFoundApprovalStatus = "not registered"
)

var bilpleieCode = evidence.Code{
	Name:   BilpleieID,
	Source: Source,
	Values: []evidence.ValueSpec{
		{Name: "Organisasjonsnummer", Type: evidence.TypeString},
		{Name: "Registerstatus", Type: evidence.TypeNumber},
		{Name: "RegisterstatusTekst", Type: evidence.TypeString},
		{Name: "Godkjenningsstatus", Type: evidence.TypeString},
		{Name: "Underenheter", Type: evidence.TypeJSON},
	},
}

type bilpleieRecord struct {
	Metadata struct {
		Version     string `json:"versjon"`
		GeneratedAt string `json:"datoTidGenerert"`
	} `json:"metadata"`
	Data *bilpleieData `json:"data"`
}

type bilpleieData struct {
	OrganizationNumber string          `json:"organisasjonsnummer"`
	RegisterStatus     *int            `json:"registerstatus"`
	RegisterStatusText *string         `json:"registerstatusTekst"`
	ApprovalStatus     *string         `json:"godkjenningsstatus"`
	SubUnits           json.RawMessage `json:"underenheter"`
}

func (r *bilpleieRecord) Validate() error {
	if r.Data == nil {
		return &missingFieldError{field: "data"}
	}
	var status error
	if r.Data.RegisterStatus == nil {
		status = &missingFieldError{field: "data.registerstatus"}
	}
	return errors.Join(
		status,
		requireString("data.registerstatusTekst", r.Data.RegisterStatusText),
		requireString("data.godkjenningsstatus", r.Data.ApprovalStatus),
	)
}

func (d *bilpleieData) hasSubUnits() bool {
	trimmed := bytes.TrimSpace(d.SubUnits)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Bilpleie harvests the car care register. An organization missing from
// the register yields sentinel values instead of an error; failing to
// resolve the organization itself is still an error.
type Bilpleie struct {
	base
}

func NewBilpleie(resolver MainUnitResolver, client *upstream.Client, template string) *Bilpleie {
	return &Bilpleie{base{resolver: resolver, client: client, template: template}}
}

func (p *Bilpleie) ID() string          { return BilpleieID }
func (p *Bilpleie) Code() evidence.Code { return bilpleieCode }

func (p *Bilpleie) Harvest(ctx context.Context, orgnr string) ([]evidence.Value, error) {
	org, target, err := p.resolve(ctx, orgnr)
	if err != nil {
		return nil, err
	}

	b := evidence.NewBuilder(bilpleieCode)
	b.Add("Organisasjonsnummer", org.OrganizationNumber, Source)

	rec, err := upstream.FetchAndDecode[bilpleieRecord](ctx, p.client, target)
	switch {
	case providers.IsNotFound(err):
		b.Add("Registerstatus", NotFoundStatus, Source)
		b.Add("RegisterstatusTekst", NotFoundStatusText, Source)
		b.Add("Godkjenningsstatus", NotFoundApprovalStatus, Source)
	case err != nil:
		return nil, err
	default:
		b.Add("Registerstatus", *rec.Data.RegisterStatus, Source)
		b.Add("RegisterstatusTekst", *rec.Data.RegisterStatusText, Source)
		b.Add("Godkjenningsstatus", *rec.Data.ApprovalStatus, Source)
		if rec.Data.hasSubUnits() {
			b.Add("Underenheter", rec.Data.SubUnits, Source, evidence.Optional())
		}
	}
	return assemble(bilpleieCode, b)
}
