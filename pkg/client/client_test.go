package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"founder-coach-api/pkg/entitlements"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsTokenAndTimezone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/usage", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "Europe/Paris", r.Header.Get("X-Timezone"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"plan":"free","usage":[{"resource":"idea_generations","allowed":true,"used":1,"limit":3,"remaining":2}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok", WithTimezone("Europe/Paris"))
	summary, err := c.Usage(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Usage, 1)
	assert.Equal(t, entitlements.Bounded(2), summary.Usage[0].Remaining)
}

func TestClient_DenialIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"export is not available on the free plan","code":"EXPORT_REQUIRES_PRO","copy":{"headline":"Export is a Pro feature","subhead":"","cta":"Upgrade"}}`))
	}))
	defer srv.Close()

	err := New(srv.URL, "tok").CheckFeature(context.Background(), "export")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsDenial())
	assert.Equal(t, entitlements.CodeExportRequiresPro, apiErr.Code)
	require.NotNil(t, apiErr.Copy)
	assert.Equal(t, "Export is a Pro feature", apiErr.Copy.Headline)
}

func TestClient_CheckFeatureEscapesName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/features/a%2Fb%3Fc/check", r.URL.EscapedPath())
		assert.Empty(t, r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL, "tok").CheckFeature(context.Background(), "a/b?c"))
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Plans(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Message)
}
