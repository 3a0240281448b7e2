package brreg

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbt/internal/evidence/registry/providers"
	"arbt/internal/evidence/registry/upstream"
	"arbt/pkg/testutil"
)

func newResolver(t *testing.T, reg *testutil.FakeRegistry, opts ...Option) *Resolver {
	t.Helper()
	return NewResolver(upstream.New(reg.Client()), reg.URL+"/enhetsregisteret/api/", opts...)
}

func TestResolveMainUnit(t *testing.T) {
	ctx := context.Background()

	t.Run("main unit resolves to itself", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			JSON("/enhetsregisteret/api/enheter/974760673", `{"organisasjonsnummer":"974760673","navn":"ARBEIDSTILSYNET"}`)

		ref, err := newResolver(t, reg).ResolveMainUnit(ctx, "974760673")

		require.NoError(t, err)
		assert.Equal(t, OrganizationRef{OrganizationNumber: "974760673", Name: "ARBEIDSTILSYNET"}, ref)
		assert.True(t, ref.IsMainUnit())
		assert.Equal(t, []string{"/enhetsregisteret/api/enheter/974760673"}, reg.Hits())
	})

	t.Run("sub-unit resolves to its parent", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			JSON("/enhetsregisteret/api/underenheter/923609016", `{"organisasjonsnummer":"923609016","navn":"AVD OSLO","overordnetEnhet":"974760673"}`).
			JSON("/enhetsregisteret/api/enheter/974760673", `{"organisasjonsnummer":"974760673","navn":"ARBEIDSTILSYNET"}`)

		ref, err := newResolver(t, reg).ResolveMainUnit(ctx, "923609016")

		require.NoError(t, err)
		assert.Equal(t, "974760673", ref.OrganizationNumber)
		assert.Equal(t, []string{
			"/enhetsregisteret/api/enheter/923609016",
			"/enhetsregisteret/api/underenheter/923609016",
			"/enhetsregisteret/api/enheter/974760673",
		}, reg.Hits())
	})

	t.Run("grandparent chain resolves to the top", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			JSON("/enhetsregisteret/api/underenheter/100000001", `{"organisasjonsnummer":"100000001","overordnetEnhet":"200000002"}`).
			JSON("/enhetsregisteret/api/enheter/200000002", `{"organisasjonsnummer":"200000002","overordnetEnhet":"300000003"}`).
			JSON("/enhetsregisteret/api/enheter/300000003", `{"organisasjonsnummer":"300000003","navn":"TOP"}`)

		ref, err := newResolver(t, reg).ResolveMainUnit(ctx, "100000001")

		require.NoError(t, err)
		assert.Equal(t, "300000003", ref.OrganizationNumber)
		assert.Equal(t, "TOP", ref.Name)
	})

	t.Run("unknown organization is not found", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t)

		_, err := newResolver(t, reg).ResolveMainUnit(ctx, "974760673")

		require.Error(t, err)
		assert.True(t, providers.IsNotFound(err))
		assert.False(t, providers.IsRetryable(err))
		assert.Len(t, reg.Hits(), 2)
	})

	t.Run("unknown parent is not found", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			JSON("/enhetsregisteret/api/underenheter/923609016", `{"organisasjonsnummer":"923609016","overordnetEnhet":"974760673"}`)

		_, err := newResolver(t, reg).ResolveMainUnit(ctx, "923609016")

		assert.True(t, providers.IsNotFound(err))
	})

	t.Run("cycle terminates as not found", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			JSON("/enhetsregisteret/api/enheter/100000001", `{"organisasjonsnummer":"100000001","overordnetEnhet":"200000002"}`).
			JSON("/enhetsregisteret/api/enheter/200000002", `{"organisasjonsnummer":"200000002","overordnetEnhet":"100000001"}`)

		_, err := newResolver(t, reg).ResolveMainUnit(ctx, "100000001")

		require.Error(t, err)
		assert.True(t, providers.IsNotFound(err))
		assert.Len(t, reg.Hits(), 2)
	})

	t.Run("depth bound terminates as not found", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			JSON("/enhetsregisteret/api/enheter/1", `{"organisasjonsnummer":"1","overordnetEnhet":"2"}`).
			JSON("/enhetsregisteret/api/enheter/2", `{"organisasjonsnummer":"2","overordnetEnhet":"3"}`).
			JSON("/enhetsregisteret/api/enheter/3", `{"organisasjonsnummer":"3"}`)

		_, err := newResolver(t, reg, WithMaxDepth(2)).ResolveMainUnit(ctx, "1")

		assert.True(t, providers.IsNotFound(err))
		assert.Len(t, reg.Hits(), 2)
	})

	t.Run("server error propagates with its kind", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			Respond("/enhetsregisteret/api/enheter/974760673", http.StatusBadGateway, ``)

		_, err := newResolver(t, reg).ResolveMainUnit(ctx, "974760673")

		assert.Equal(t, providers.ErrorUpstreamServer, providers.KindOf(err))
		assert.True(t, providers.IsRetryable(err))
		assert.Len(t, reg.Hits(), 1, "sub-unit endpoint is only tried after a 404")
	})

	t.Run("server error on sub-unit endpoint propagates", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			Respond("/enhetsregisteret/api/underenheter/923609016", http.StatusInternalServerError, ``)

		_, err := newResolver(t, reg).ResolveMainUnit(ctx, "923609016")

		assert.Equal(t, providers.ErrorUpstreamServer, providers.KindOf(err))
	})

	t.Run("record without organization number is a decode failure", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t).
			JSON("/enhetsregisteret/api/enheter/974760673", `{"navn":"ARBEIDSTILSYNET"}`)

		_, err := newResolver(t, reg).ResolveMainUnit(ctx, "974760673")

		assert.Equal(t, providers.ErrorDecode, providers.KindOf(err))
	})

	t.Run("network failure is transient", func(t *testing.T) {
		reg := testutil.NewFakeRegistry(t)
		r := newResolver(t, reg)
		reg.Close()

		_, err := r.ResolveMainUnit(ctx, "974760673")

		assert.Equal(t, providers.ErrorNetwork, providers.KindOf(err))
		assert.True(t, providers.IsRetryable(err))
	})
}
