package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"arbt/internal/evidence/registry/evidence"
	"arbt/internal/evidence/registry/providers"
	"arbt/internal/evidence/registry/providers/mocks"
)

func newMockProvider(ctrl *gomock.Controller, id string) *mocks.MockProvider {
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().ID().Return(id).AnyTimes()
	p.EXPECT().Code().Return(evidence.Code{Name: id, Source: "Arbeidstilsynet"}).AnyTimes()
	return p
}

func TestProviderRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)

	reg := providers.NewProviderRegistry()
	require.NoError(t, reg.Register(newMockProvider(ctrl, "Renholdsregisteret")))
	require.NoError(t, reg.Register(newMockProvider(ctrl, "Bemanningsforetakregisteret")))

	t.Run("rejects duplicate dataset names", func(t *testing.T) {
		err := reg.Register(newMockProvider(ctrl, "Renholdsregisteret"))
		assert.ErrorIs(t, err, providers.ErrProviderRegistered)
	})

	t.Run("looks up by dataset name", func(t *testing.T) {
		p, ok := reg.Get("Renholdsregisteret")
		require.True(t, ok)
		assert.Equal(t, "Renholdsregisteret", p.ID())

		_, ok = reg.Get("Ukjent")
		assert.False(t, ok)
	})

	t.Run("lists datasets in name order", func(t *testing.T) {
		codes := reg.Codes()
		require.Len(t, codes, 2)
		assert.Equal(t, "Bemanningsforetakregisteret", codes[0].Name)
		assert.Equal(t, "Renholdsregisteret", codes[1].Name)
	})
}
