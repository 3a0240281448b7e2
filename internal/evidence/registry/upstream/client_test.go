package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbt/internal/evidence/registry/metrics"
	"arbt/internal/evidence/registry/providers"
)

type unit struct {
	Number *string `json:"organisasjonsnummer"`
	Name   string  `json:"navn"`
}

func (u *unit) Validate() error {
	if u.Number == nil || *u.Number == "" {
		return errors.New("organisasjonsnummer is required")
	}
	return nil
}

func statusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchClassifiesStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		tag    Tag
		kind   providers.ErrorKind
		retry  bool
	}{
		{"200 is success", http.StatusOK, TagSuccess, "", false},
		{"204 is success", http.StatusNoContent, TagSuccess, "", false},
		{"404 is not found", http.StatusNotFound, TagNotFound, providers.ErrorOrganizationNotFound, false},
		{"400 is client error", http.StatusBadRequest, TagClientError, providers.ErrorUpstreamClient, false},
		{"410 is client error", http.StatusGone, TagClientError, providers.ErrorUpstreamClient, false},
		{"500 is server error", http.StatusInternalServerError, TagServerError, providers.ErrorUpstreamServer, true},
		{"503 is server error", http.StatusServiceUnavailable, TagServerError, providers.ErrorUpstreamServer, true},
		{"304 is server error", http.StatusNotModified, TagServerError, providers.ErrorUpstreamServer, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := statusServer(t, tt.status, `{}`)
			c := New(srv.Client())

			out := c.Fetch(context.Background(), srv.URL+"/enheter/974760673")

			require.Equal(t, tt.tag, out.Tag())
			if tt.tag == TagSuccess {
				assert.NoError(t, out.Err())
				return
			}
			assert.Equal(t, tt.status, out.Status())
			assert.Equal(t, tt.kind, providers.KindOf(out.Err()))
			assert.Equal(t, tt.retry, providers.IsRetryable(out.Err()))
		})
	}
}

func TestFetchReturnsPayload(t *testing.T) {
	srv := statusServer(t, http.StatusOK, `{"organisasjonsnummer":"974760673"}`)
	out := New(srv.Client()).Fetch(context.Background(), srv.URL)

	require.Equal(t, TagSuccess, out.Tag())
	assert.JSONEq(t, `{"organisasjonsnummer":"974760673"}`, string(out.Payload()))
	assert.Equal(t, srv.URL, out.URL())
}

func TestFetchNetworkFailures(t *testing.T) {
	t.Run("connection refused is transient", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		out := New(http.DefaultClient).Fetch(context.Background(), addr)

		require.Equal(t, TagNetworkFailure, out.Tag())
		assert.Error(t, out.Cause())
		assert.Equal(t, providers.ErrorNetwork, providers.KindOf(out.Err()))
		assert.True(t, providers.IsRetryable(out.Err()))
		assert.False(t, providers.IsNotFound(out.Err()), "network failure must be distinguishable from 404")
	})

	t.Run("cancelled context is a network failure", func(t *testing.T) {
		srv := statusServer(t, http.StatusOK, `{}`)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := New(srv.Client()).Fetch(ctx, srv.URL)

		require.Equal(t, TagNetworkFailure, out.Tag())
		assert.ErrorIs(t, out.Err(), context.Canceled)
	})

	t.Run("transport timeout is a network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		t.Cleanup(srv.Close)
		client := srv.Client()
		client.Timeout = 50 * time.Millisecond

		out := New(client).Fetch(context.Background(), srv.URL)

		assert.Equal(t, TagNetworkFailure, out.Tag())
	})

	t.Run("malformed url is a network failure", func(t *testing.T) {
		out := New(http.DefaultClient).Fetch(context.Background(), "://missing-scheme")
		assert.Equal(t, TagNetworkFailure, out.Tag())
	})
}

func TestFetchBodyLimit(t *testing.T) {
	srv := statusServer(t, http.StatusOK, `{"navn":"0123456789"}`)
	out := New(srv.Client(), WithMaxBodySize(8)).Fetch(context.Background(), srv.URL)

	require.Equal(t, TagDecodeFailure, out.Tag())
	assert.Equal(t, providers.ErrorDecode, providers.KindOf(out.Err()))
	assert.False(t, providers.IsRetryable(out.Err()))
}

func TestFetchAndDecode(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		srv := statusServer(t, http.StatusOK, `{"organisasjonsnummer":"974760673","navn":"ARBEIDSTILSYNET","ukjent":1}`)

		u, err := FetchAndDecode[unit](context.Background(), New(srv.Client()), srv.URL)

		require.NoError(t, err)
		require.NotNil(t, u.Number)
		assert.Equal(t, "974760673", *u.Number)
		assert.Equal(t, "ARBEIDSTILSYNET", u.Name)
	})

	decodeFailures := map[string]string{
		"malformed json":         `{"organisasjonsnummer":`,
		"missing required field": `{"navn":"ARBEIDSTILSYNET"}`,
		"wrong field type":       `{"organisasjonsnummer":974760673}`,
		"empty body":             ``,
		"null body":              `null`,
	}
	for name, body := range decodeFailures {
		t.Run(name, func(t *testing.T) {
			srv := statusServer(t, http.StatusOK, body)

			_, err := FetchAndDecode[unit](context.Background(), New(srv.Client()), srv.URL)

			require.Error(t, err)
			assert.Equal(t, providers.ErrorDecode, providers.KindOf(err))
		})
	}

	t.Run("upstream failure is not decoded", func(t *testing.T) {
		srv := statusServer(t, http.StatusNotFound, `not json`)

		_, err := FetchAndDecode[unit](context.Background(), New(srv.Client()), srv.URL)

		assert.True(t, providers.IsNotFound(err))
	})
}

func TestFetchRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(reg)
	srv := statusServer(t, http.StatusBadGateway, ``)
	c := New(srv.Client(), WithMetrics(m))

	c.Fetch(context.Background(), srv.URL)
	c.Fetch(context.Background(), srv.URL)

	host := hostOf(srv.URL)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamRequests.WithLabelValues(host, "server_error")))
}

func TestOutcomeErrNilOnSuccess(t *testing.T) {
	assert.NoError(t, Success("http://x", []byte(`{}`)).Err())
	assert.Equal(t, "decode_failure", TagDecodeFailure.String())
	assert.Equal(t, "unknown", Tag(99).String())
}
