package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rana718/seedforge/internal/config"
	"github.com/Rana718/seedforge/internal/export"
)

// Stored describes where an artifact ended up.
type Stored struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Size     int    `json:"size"`
}

// Store persists exported artifacts.
type Store interface {
	Put(ctx context.Context, a *export.Artifact) (*Stored, error)
}

// LocalStore writes artifacts into a directory, replacing any file of the
// same name.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(ctx context.Context, a *export.Artifact) (*Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := filepath.Base(a.Name)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Stored{Key: name, Location: abs, Size: len(a.Data)}, nil
}

// Open builds the store selected by cfg.Artifacts. It returns a nil Store
// for the none driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Artifacts.Driver {
	case "", "local":
		return NewLocalStore(cfg.ExportPath)
	case "s3":
		return NewS3Store(ctx, cfg.Artifacts.S3)
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported artifacts driver: %s", cfg.Artifacts.Driver)
}
