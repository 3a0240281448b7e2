package handler

import (
	"strings"

	"arbt/pkg/domain"
	dErrors "arbt/pkg/domain-errors"
)

// HarvestRequest is the HTTP request body for POST /api/{dataset}.
type HarvestRequest struct {
	OrganizationNumber string `json:"organizationNumber"`

	// Parsed values (populated by Validate)
	parsedOrganizationNumber domain.OrganizationNumber
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *HarvestRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.OrganizationNumber = strings.TrimSpace(r.OrganizationNumber)
	if r.OrganizationNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "organizationNumber is required")
	}

	orgnr, err := domain.ParseOrganizationNumber(r.OrganizationNumber)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "organizationNumber: "+dErrors.MessageOf(err))
	}
	r.parsedOrganizationNumber = orgnr
	return nil
}

// ParsedOrganizationNumber returns the validated organization number.
func (r *HarvestRequest) ParsedOrganizationNumber() domain.OrganizationNumber {
	return r.parsedOrganizationNumber
}
