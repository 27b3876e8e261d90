package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/settings"
)

func TestMerge_SentinelSetPreservesExistingSecret(t *testing.T) {
	existing := []settings.Setting{
		{Key: string(settings.KeyOpenAIAPIKey), Value: "sk-real-secret"},
	}
	incoming := []settings.Setting{
		{Key: string(settings.KeyOpenAIAPIKey), Value: settings.SentinelSet},
	}

	merged, changed := settings.Merge(existing, incoming)

	require := func(ok bool) {
		if !ok {
			t.Fatal("expected secret to be preserved")
		}
	}
	var got string
	for _, s := range merged {
		if s.Key == string(settings.KeyOpenAIAPIKey) {
			got = s.Value
		}
	}
	require(got == "sk-real-secret")
	assert.Empty(t, changed)
}

func TestMerge_EmptyValueClearsSecret(t *testing.T) {
	existing := []settings.Setting{
		{Key: string(settings.KeyOpenAIAPIKey), Value: "sk-real-secret"},
	}
	incoming := []settings.Setting{
		{Key: string(settings.KeyOpenAIAPIKey), Value: ""},
	}

	merged, changed := settings.Merge(existing, incoming)

	var got string
	for _, s := range merged {
		if s.Key == string(settings.KeyOpenAIAPIKey) {
			got = s.Value
		}
	}
	assert.Empty(t, got)
	assert.Contains(t, changed, string(settings.KeyOpenAIAPIKey))
}

func TestMerge_SkipsUnrecognizedKeys(t *testing.T) {
	incoming := []settings.Setting{
		{Key: "some_unknown_key", Value: "x"},
	}

	merged, changed := settings.Merge(nil, incoming)

	assert.Empty(t, merged)
	assert.Empty(t, changed)
}

func TestMaskForDisplay_RoundTrip(t *testing.T) {
	assert.Equal(t, settings.SentinelSet, settings.MaskForDisplay(string(settings.KeyOpenAIAPIKey), "sk-real"))
	assert.Equal(t, settings.SentinelUnset, settings.MaskForDisplay(string(settings.KeyOpenAIAPIKey), ""))
	assert.Equal(t, "gpt-4o", settings.MaskForDisplay(string(settings.KeyVisionModel), "gpt-4o"))
}
