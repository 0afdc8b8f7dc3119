package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// MemoryRepository keeps blobs in process memory. Handy for tests and for
// running the worker against a directory of JSON fixtures.
type MemoryRepository struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ BlobStore = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{blobs: make(map[string][]byte)}
}

// NewMemoryFromDir seeds a repository from <dir>/<key>.json for every known
// state key. Missing files are skipped.
func NewMemoryFromDir(dir string) (*MemoryRepository, error) {
	r := NewMemoryRepository()
	if dir == "" {
		return r, nil
	}
	for _, key := range Keys {
		b, err := os.ReadFile(filepath.Join(dir, key+".json"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("seed %s: %w", key, err)
		}
		r.blobs[key] = b
	}
	return r, nil
}

func (r *MemoryRepository) Get(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blobs[key] = append([]byte(nil), value...)
	return nil
}
