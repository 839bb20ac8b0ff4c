package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Rana718/seedforge/internal/types"
	"gopkg.in/yaml.v3"
)

const fileExt = ".yaml"

// FileRepository keeps one YAML document per schema in a directory.
type FileRepository struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create schema directory %s: %w", dir, err)
	}
	return &FileRepository{dir: dir, now: time.Now}, nil
}

func (r *FileRepository) path(id string) string {
	return filepath.Join(r.dir, id+fileExt)
}

func (r *FileRepository) List(ctx context.Context) ([]types.SavedSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %s: %w", r.dir, err)
	}

	list := []types.SavedSchema{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := r.read(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		list = append(list, loaded(*s))
	}
	sortSchemas(list)
	return list, nil
}

func (r *FileRepository) Get(ctx context.Context, id string) (*types.SavedSchema, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, err := r.read(r.path(id))
	if err != nil {
		return nil, err
	}
	out := loaded(*s)
	return &out, nil
}

func (r *FileRepository) Save(ctx context.Context, s *types.SavedSchema) error {
	if err := prepare(s, r.now()); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, err := r.read(r.path(s.ID)); err == nil && !prev.CreatedAt.IsZero() {
		s.CreatedAt = prev.CreatedAt
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode schema %s: %w", s.Name, err)
	}

	// Write then rename so readers never see a partial file.
	tmp := r.path(s.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write schema %s: %w", s.Name, err)
	}
	if err := os.Rename(tmp, r.path(s.ID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write schema %s: %w", s.Name, err)
	}
	return nil
}

func (r *FileRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path(id)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete schema %s: %w", id, err)
	}
	return nil
}

func (r *FileRepository) read(path string) (*types.SavedSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var s types.SavedSchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &s, nil
}
