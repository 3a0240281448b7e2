// Package domain holds validated identifiers shared across packages.
package domain

import (
	dErrors "arbt/pkg/domain-errors"
)

// OrganizationNumber is a Norwegian organization number as issued by the
// Central Coordinating Register for Legal Entities.
//
// Invariants:
//   - Exactly 9 ASCII digits
//   - Last digit is the modulus 11 check digit of the first 8
type OrganizationNumber string

var orgNumberWeights = [8]int{3, 2, 7, 6, 5, 4, 3, 2}

// ParseOrganizationNumber validates s and returns it as an OrganizationNumber.
func ParseOrganizationNumber(s string) (OrganizationNumber, error) {
	if len(s) != 9 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "organization number must be 9 digits")
	}
	sum := 0
	for i := 0; i < 9; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "organization number must be 9 digits")
		}
		if i < 8 {
			sum += int(c-'0') * orgNumberWeights[i]
		}
	}

	check := 11 - sum%11
	if check == 11 {
		check = 0
	}
	if check == 10 || check != int(s[8]-'0') {
		return "", dErrors.New(dErrors.CodeInvalidInput, "organization number has an invalid check digit")
	}
	return OrganizationNumber(s), nil
}

// String returns the 9-digit representation.
func (n OrganizationNumber) String() string {
	return string(n)
}

// IsZero reports whether n is unset.
func (n OrganizationNumber) IsZero() bool {
	return n == ""
}
