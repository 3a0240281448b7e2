package brreg

import "errors"

// OrganizationRef is an organization as recorded in the business registry.
// An empty Parent means the organization is a main unit.
type OrganizationRef struct {
	OrganizationNumber string
	Name               string
	Parent             string
}

// IsMainUnit reports whether the organization has no parent.
func (o OrganizationRef) IsMainUnit() bool {
	return o.Parent == ""
}

// unitRecord is the subset of an enheter/underenheter record the resolver
// reads. Both endpoints use the same field names.
type unitRecord struct {
	OrganizationNumber *string `json:"organisasjonsnummer"`
	Name               string  `json:"navn"`
	Parent             string  `json:"overordnetEnhet"`
}

func (u *unitRecord) Validate() error {
	if u.OrganizationNumber == nil || *u.OrganizationNumber == "" {
		return errors.New("organisasjonsnummer is required")
	}
	return nil
}

func (u unitRecord) ref() OrganizationRef {
	return OrganizationRef{
		OrganizationNumber: *u.OrganizationNumber,
		Name:               u.Name,
		Parent:             u.Parent,
	}
}
