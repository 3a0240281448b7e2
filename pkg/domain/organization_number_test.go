package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "arbt/pkg/domain-errors"
)

func TestParseOrganizationNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"registry main unit", "974760673", false},
		{"check digit zero path", "923609016", false},
		{"another valid number", "991825827", false},

		{"wrong check digit", "974760674", true},
		{"too short", "97476067", true},
		{"too long", "9747606730", true},
		{"letters", "97476067A", true},
		{"whitespace padded", " 97476067", true},
		{"empty", "", true},
		{"oversized", strings.Repeat("9", 1000), true},
		{"unicode digits", "９７４７６０６７３", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseOrganizationNumber(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				assert.True(t, n.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, n.String())
		})
	}
}
