package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/model"
	"github.com/ArtisanClarinets/smart-upload-pipeline/internal/pdfsplit"
)

// fileObjectStore is a filesystem-backed processor.ObjectStore for local
// runs of the `process` and `serve` commands, standing in for the blob
// store a hosting application would supply (spec's "external
// collaborators" boundary).
type fileObjectStore struct {
	dir string
}

func newFileObjectStore(dir string) (*fileObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create object store dir: %w", err)
	}
	return &fileObjectStore{dir: dir}, nil
}

func (f *fileObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(f.dir, filepath.Clean("/"+key)))
}

func (f *fileObjectStore) Put(_ context.Context, key string, data []byte, _ map[string]string) error {
	path := filepath.Join(f.dir, filepath.Clean("/"+key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// memSessionRepository is an in-process processor.SessionRepository, good
// enough for a one-shot local run or a single-node server without a
// relational store wired up.
type memSessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemSessionRepository() *memSessionRepository {
	return &memSessionRepository{sessions: map[string]*model.Session{}}
}

func (r *memSessionRepository) Get(_ context.Context, sessionID string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[sessionID], nil
}

func (r *memSessionRepository) Save(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID.String()] = session
	return nil
}

// pageCountOnlyRenderer implements processor.PDFRenderer's PageCount using
// pdfcpu, the pack's only PDF-manipulation dependency. Rasterizing a page to
// an image is explicitly out of scope (spec's "external collaborators"
// boundary names RenderPage/RenderHeaderCrop as a host-supplied primitive,
// and no rasterization library appears anywhere in the example pack), so
// RenderPage returns a plain descriptive error rather than guessing at one.
type pageCountOnlyRenderer struct{}

func (pageCountOnlyRenderer) PageCount(_ context.Context, pdf []byte) (int, error) {
	return pdfsplit.PageCount(pdf)
}

func (pageCountOnlyRenderer) RenderPage(_ context.Context, _ []byte, _ int, _ float64, _ float64) ([]byte, error) {
	return nil, fmt.Errorf("page rasterization requires a host-supplied PDFRenderer; none is wired into this CLI build")
}
