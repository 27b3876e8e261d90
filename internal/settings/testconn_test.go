package settings_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/settings"
)

func TestTestConnection_UnauthorizedReportsStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := settings.TestConnection(context.Background(), srv.Client(), settings.TestConnectionRequest{
		Provider: "openai",
		Endpoint: srv.URL,
		APIKey:   "bad",
		Model:    "gpt-4o",
	})

	require.False(t, result.Ok)
	assert.Equal(t, "Connection failed: server responded with 401 — check your API key.", result.Error)
}

func TestTestConnection_SuccessReportsOk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := settings.TestConnection(context.Background(), srv.Client(), settings.TestConnectionRequest{
		Provider: "openai",
		Endpoint: srv.URL,
		APIKey:   "sk-test",
		Model:    "gpt-4o",
	})

	assert.True(t, result.Ok)
	assert.Empty(t, result.Error)
}

func TestTestConnection_RequiresAPIKeyForCloudProvider(t *testing.T) {
	result := settings.TestConnection(context.Background(), http.DefaultClient, settings.TestConnectionRequest{
		Provider: "openai",
		Model:    "gpt-4o",
	})

	require.False(t, result.Ok)
	assert.Contains(t, result.Error, "apiKey is required")
}

func TestTestConnection_RequiresEndpointForCustomProvider(t *testing.T) {
	result := settings.TestConnection(context.Background(), http.DefaultClient, settings.TestConnectionRequest{
		Provider: "custom",
		Model:    "llama",
	})

	require.False(t, result.Ok)
	assert.Contains(t, result.Error, "endpoint is required")
}

func TestTestConnection_UnknownProvider(t *testing.T) {
	result := settings.TestConnection(context.Background(), http.DefaultClient, settings.TestConnectionRequest{
		Provider: "does-not-exist",
	})

	require.False(t, result.Ok)
	assert.Contains(t, result.Error, "unknown provider")
}
