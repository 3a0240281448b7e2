package evidence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCode = Code{
	Name:   "Renholdsregisteret",
	Source: "Arbeidstilsynet",
	Values: []ValueSpec{
		{Name: "Organisasjonsnummer", Type: TypeString},
		{Name: "Status", Type: TypeString},
		{Name: "StatusEndret", Type: TypeDateTime},
	},
}

func TestBuilderPreservesInsertionOrder(t *testing.T) {
	b := NewBuilder(testCode)
	changed := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)

	require.NoError(t, b.Add("Status", "Godkjent", "Arbeidstilsynet"))
	require.NoError(t, b.Add("Organisasjonsnummer", "974760673", "Arbeidstilsynet"))
	require.NoError(t, b.Add("StatusEndret", changed, "Arbeidstilsynet", Optional()))

	values, err := b.Values()
	require.NoError(t, err)
	require.Len(t, values, 3)

	assert.Equal(t, []string{"Status", "Organisasjonsnummer", "StatusEndret"}, names(values))
	assert.True(t, values[0].Mandatory)
	assert.False(t, values[2].Mandatory)
	assert.Equal(t, TypeDateTime, values[2].Type)
	assert.Equal(t, changed, values[2].Value)
}

func TestBuilderRejectsDuplicateName(t *testing.T) {
	b := NewBuilder(testCode)
	require.NoError(t, b.Add("Status", "Godkjent", "Arbeidstilsynet"))

	err := b.Add("Status", "Ikke godkjent", "Arbeidstilsynet")
	require.ErrorIs(t, err, ErrDuplicateValue)

	t.Run("error sticks", func(t *testing.T) {
		assert.ErrorIs(t, b.Add("Organisasjonsnummer", "974760673", "Arbeidstilsynet"), ErrDuplicateValue)
		values, err := b.Values()
		assert.ErrorIs(t, err, ErrDuplicateValue)
		assert.Nil(t, values)
	})
}

func TestBuilderChecksDeclarations(t *testing.T) {
	t.Run("undeclared name", func(t *testing.T) {
		b := NewBuilder(testCode)
		assert.ErrorIs(t, b.Add("Registerstatus", 1, "Arbeidstilsynet"), ErrUndeclaredValue)
	})

	t.Run("type mismatch", func(t *testing.T) {
		b := NewBuilder(testCode)
		assert.ErrorIs(t, b.Add("Status", 3, "Arbeidstilsynet"), ErrTypeMismatch)
	})

	t.Run("unsupported go type", func(t *testing.T) {
		b := NewBuilder(Code{Name: "free"})
		assert.ErrorIs(t, b.Add("x", struct{}{}, "src"), ErrUnsupportedType)
	})

	t.Run("code without declarations accepts any name", func(t *testing.T) {
		b := NewBuilder(Code{Name: "free"})
		require.NoError(t, b.Add("anything", true, "src"))
		require.NoError(t, b.Add("blob", json.RawMessage(`[1,2]`), "src"))

		values, err := b.Values()
		require.NoError(t, err)
		assert.Equal(t, TypeBoolean, values[0].Type)
		assert.Equal(t, TypeJSON, values[1].Type)
	})
}

func TestValuesReturnsCopy(t *testing.T) {
	b := NewBuilder(testCode)
	require.NoError(t, b.Add("Status", "Godkjent", "Arbeidstilsynet"))

	first, err := b.Values()
	require.NoError(t, err)
	first[0].Value = "mutated"

	second, err := b.Values()
	require.NoError(t, err)
	assert.Equal(t, "Godkjent", second[0].Value)
}

func names(values []Value) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.Name)
	}
	return out
}
