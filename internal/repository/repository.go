package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Rana718/seedforge/internal/schema"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("schema not found")
	ErrInvalid  = errors.New("invalid schema")
)

// SchemaRepository stores named schemas. Schemas handed out by List and
// Get carry fresh field ids so they never collide with the active schema.
type SchemaRepository interface {
	List(ctx context.Context) ([]types.SavedSchema, error)
	Get(ctx context.Context, id string) (*types.SavedSchema, error)
	// Save inserts or replaces s, assigning an id and timestamps as needed.
	Save(ctx context.Context, s *types.SavedSchema) error
	Delete(ctx context.Context, id string) error
}

// prepare fills in the id and timestamps of a schema about to be stored.
func prepare(s *types.SavedSchema, now time.Time) error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(s.Fields) == 0 {
		return types.ErrEmpty
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	} else if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("%w: bad id %q: %v", ErrInvalid, s.ID, err)
	}
	now = now.UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	s.Fields = schema.EnsureIDs(s.Fields)
	return nil
}

func loaded(s types.SavedSchema) types.SavedSchema {
	s.Fields = schema.WithFreshIDs(s.Fields)
	return s
}

// validID rejects ids that could not have been assigned by prepare. File
// names and keys are built from ids, so nothing else may reach storage.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func sortSchemas(list []types.SavedSchema) {
	sort.Slice(list, func(i, j int) bool {
		a, b := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name)
		if a != b {
			return a < b
		}
		return list[i].ID < list[j].ID
	})
}
