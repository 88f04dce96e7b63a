// Package blob stores payment evidence and returns a URL for it. The core
// treats it as an external collaborator; a store failure is fatal to the
// operation that needed it.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type Store interface {
	Store(ctx context.Context, data []byte, suggestedName string) (string, error)
}

// LocalStore writes blobs under a directory served as static files.
type LocalStore struct {
	dir     string
	baseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStore) Store(_ context.Context, data []byte, suggestedName string) (string, error) {
	name := fmt.Sprintf("payment_%s%s", uuid.NewString(), filepath.Ext(suggestedName))

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}

	return s.baseURL + "/" + name, nil
}
