package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/settings"
)

func TestLoad_DefaultsAreValid(t *testing.T) {
	store := settings.NewMemStore()
	cfg, err := settings.Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.Provider)
	assert.Equal(t, 40.0, cfg.SkipParseThreshold)
}

func TestLoad_EndpointFallsBackToProviderDefaultWhenUnset(t *testing.T) {
	store := settings.NewMemStore()
	_, err := store.Upsert(context.Background(), []settings.Setting{
		{Key: string(settings.KeyProvider), Value: "anthropic"},
		{Key: string(settings.KeyAnthropicAPIKey), Value: "sk-test"},
	})
	require.NoError(t, err)

	cfg, err := settings.Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "https://api.anthropic.com", cfg.Endpoint)
}

func TestLoad_ExplicitEndpointOverridesProviderDefault(t *testing.T) {
	store := settings.NewMemStore()
	_, err := store.Upsert(context.Background(), []settings.Setting{
		{Key: string(settings.KeyProvider), Value: "anthropic"},
		{Key: string(settings.KeyAnthropicAPIKey), Value: "sk-test"},
		{Key: string(settings.KeyEndpoint), Value: "https://proxy.internal/anthropic"},
	})
	require.NoError(t, err)

	cfg, err := settings.Load(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "https://proxy.internal/anthropic", cfg.Endpoint)
}

func TestLoad_RejectsCloudProviderWithoutAPIKey(t *testing.T) {
	store := settings.NewMemStore()
	_, err := store.Upsert(context.Background(), []settings.Setting{
		{Key: string(settings.KeyProvider), Value: "openai"},
	})
	require.NoError(t, err)

	_, err = settings.Load(context.Background(), store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiKey")
}

func TestLoad_RejectsOutOfOrderThresholds(t *testing.T) {
	store := settings.NewMemStore()
	_, err := store.Upsert(context.Background(), []settings.Setting{
		{Key: string(settings.KeySkipParseThreshold), Value: "90"},
		{Key: string(settings.KeyAutoApproveThreshold), Value: "40"},
	})
	require.NoError(t, err)

	_, err = settings.Load(context.Background(), store)
	require.Error(t, err)
}

func TestLoad_RejectsInvalidPromptVersion(t *testing.T) {
	store := settings.NewMemStore()
	_, err := store.Upsert(context.Background(), []settings.Setting{
		{Key: string(settings.KeyPromptVersion), Value: "not-semver"},
	})
	require.NoError(t, err)

	_, err = settings.Load(context.Background(), store)
	require.Error(t, err)
}

func TestValidate_ReturnsAllViolationsNotJustFirst(t *testing.T) {
	store := settings.NewMemStore()
	_, err := store.Upsert(context.Background(), []settings.Setting{
		{Key: string(settings.KeyProvider), Value: "bogus"},
		{Key: string(settings.KeyPromptVersion), Value: "nope"},
	})
	require.NoError(t, err)

	_, err = settings.Load(context.Background(), store)
	require.Error(t, err)
	configErrs, ok := err.(model.ConfigErrors)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(configErrs), 2)
}
