package cmd

import (
	"context"
	"time"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/provider"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/settings"
)

// loadConfigFromFlags seeds a MemStore from the global flags/env and runs it
// through the same Load/Validate path the Settings API uses, so the CLI and
// the server never disagree about what a valid configuration looks like.
func loadConfigFromFlags(ctx context.Context) (model.RuntimeConfig, settings.Store, error) {
	store := settings.NewMemStore()

	var updates []settings.Setting
	now := time.Now().UTC()
	put := func(key settings.Key, value string) {
		if value == "" {
			return
		}
		updates = append(updates, settings.Setting{Key: string(key), Value: value, UpdatedAt: now})
	}

	put(settings.KeyProvider, providerFlag)
	put(settings.KeyEndpoint, endpoint)
	put(settings.KeyVisionModel, visionModel)
	put(settings.KeyVerificationModel, verificationModel)

	if secretKey, ok := settings.SecretKeyFor(resolvedProviderID()); ok {
		put(secretKey, apiKey)
	}

	if len(updates) > 0 {
		if _, err := store.Upsert(ctx, updates); err != nil {
			return model.RuntimeConfig{}, nil, err
		}
	}

	cfg, err := settings.Load(ctx, store)
	if err != nil {
		return model.RuntimeConfig{}, nil, err
	}
	return cfg, store, nil
}

func resolvedProviderID() provider.ID {
	if providerFlag != "" {
		return provider.ID(providerFlag)
	}
	return provider.Ollama
}
