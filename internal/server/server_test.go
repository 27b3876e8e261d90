package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/server"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/settings"
)

func newTestServer(store settings.Store) *server.Server {
	config := &server.Config{Address: ":8080", Debug: true}
	return server.NewServer(config, store)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(settings.NewMemStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
}

func TestGetSettings_MasksSecrets(t *testing.T) {
	store := settings.NewMemStore()
	ctx := context.Background()
	_, err := store.Upsert(ctx, []settings.Setting{
		{Key: string(settings.KeyOpenAIAPIKey), Value: "sk-super-secret"},
		{Key: string(settings.KeyProvider), Value: "openai"},
	})
	require.NoError(t, err)

	srv := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/admin/uploads/settings", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "sk-super-secret")

	var response server.GetSettingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	found := false
	for _, s := range response.Settings {
		if s.Key == string(settings.KeyOpenAIAPIKey) {
			found = true
			assert.Equal(t, settings.SentinelSet, s.Value)
		}
	}
	assert.True(t, found)
}

func TestPutSettings_SkipsUnrecognizedKeys(t *testing.T) {
	store := settings.NewMemStore()
	srv := newTestServer(store)

	body := `{"settings":[{"key":"smart_upload_provider","value":"ollama"},{"key":"not_a_real_key","value":"x"}]}`
	req := httptest.NewRequest(http.MethodPut, "/admin/uploads/settings", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response server.PutSettingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Contains(t, response.Updated, "smart_upload_provider")
	assert.Contains(t, response.Skipped, "not_a_real_key")
}

func TestPutSettings_RejectsInvalidThresholdOrdering(t *testing.T) {
	store := settings.NewMemStore()
	srv := newTestServer(store)

	body := `{"settings":[
		{"key":"smart_upload_skip_parse_threshold","value":"90"},
		{"key":"smart_upload_auto_approve_threshold","value":"40"}
	]}`
	req := httptest.NewRequest(http.MethodPut, "/admin/uploads/settings", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetPrompts(t *testing.T) {
	store := settings.NewMemStore()
	ctx := context.Background()
	_, err := store.Upsert(ctx, []settings.Setting{
		{Key: string(settings.KeyVisionPrompt), Value: "a custom prompt"},
	})
	require.NoError(t, err)

	srv := newTestServer(store)

	req := httptest.NewRequest(http.MethodPost, "/admin/uploads/settings/reset-prompts", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response server.ResetPromptsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.NotEqual(t, "a custom prompt", response.Prompts["visionSystemPrompt"])

	setting, ok, err := store.Get(ctx, string(settings.KeyVisionPrompt))
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, "a custom prompt", setting.Value)
}

func TestTestConnectionEndpoint_MissingModel(t *testing.T) {
	srv := newTestServer(settings.NewMemStore())

	body := `{"provider":"openai","apiKey":"sk-test"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/uploads/settings/test", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptionsEndpoint(t *testing.T) {
	srv := newTestServer(settings.NewMemStore())

	req := httptest.NewRequest(http.MethodOptions, "/admin/uploads/settings", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
}

func BenchmarkGetSettings(b *testing.B) {
	srv := newTestServer(settings.NewMemStore())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/admin/uploads/settings", nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
	}
}
