package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "arbt/pkg/domain-errors"
)

func TestHarvestRequestValidate(t *testing.T) {
	t.Run("trims and parses", func(t *testing.T) {
		req := &HarvestRequest{OrganizationNumber: "  923609016\n"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "923609016", req.OrganizationNumber)
		assert.Equal(t, "923609016", req.ParsedOrganizationNumber().String())
	})

	t.Run("nil request", func(t *testing.T) {
		var req *HarvestRequest
		assert.True(t, dErrors.HasCode(req.Validate(), dErrors.CodeBadRequest))
	})

	t.Run("invalid number keeps parse message", func(t *testing.T) {
		req := &HarvestRequest{OrganizationNumber: "974760674"}
		err := req.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, dErrors.MessageOf(err), "check digit")
		assert.True(t, req.ParsedOrganizationNumber().IsZero())
	})
}
