package settings

import (
	"context"
	"time"
)

// Setting is the persisted wire record (§4.8).
type Setting struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UpdatedBy   *string   `json:"updatedBy"`
}

// Store is the external persistence collaborator the loader and Settings
// API are built against. A real implementation is a database table; tests
// use an in-memory map.
type Store interface {
	List(ctx context.Context) ([]Setting, error)
	Get(ctx context.Context, key string) (Setting, bool, error)
	// Upsert writes settings in a single transaction and returns the keys
	// that were actually changed.
	Upsert(ctx context.Context, settings []Setting) (changed []string, err error)
}

// MemStore is an in-memory Store, useful for tests and for the `process`
// CLI command's standalone runs.
type MemStore struct {
	byKey map[string]Setting
}

// NewMemStore builds an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{byKey: map[string]Setting{}}
}

func (m *MemStore) List(_ context.Context) ([]Setting, error) {
	out := make([]Setting, 0, len(m.byKey))
	for _, s := range m.byKey {
		out = append(out, s)
	}
	return out, nil
}

func (m *MemStore) Get(_ context.Context, key string) (Setting, bool, error) {
	s, ok := m.byKey[key]
	return s, ok, nil
}

func (m *MemStore) Upsert(_ context.Context, settings []Setting) ([]string, error) {
	var changed []string
	for _, s := range settings {
		existing, ok := m.byKey[s.Key]
		if !ok || existing.Value != s.Value {
			changed = append(changed, s.Key)
		}
		m.byKey[s.Key] = s
	}
	return changed, nil
}
