package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/types"
)

// Validate is the schema gate run before any generation: the schema must
// have fields and every field must have a known type.
func Validate(s types.Schema) error {
	return ValidateWith(registry.Default(), s)
}

func ValidateWith(reg *registry.Registry, s types.Schema) error {
	if len(s) == 0 {
		return types.NewError(types.KindEmpty, types.ErrEmpty.Message)
	}
	var missing []string
	for i, f := range s {
		if _, ok := reg.Lookup(f.Type); !ok {
			missing = append(missing, displayName(f, i))
		}
	}
	if len(missing) > 0 {
		return types.NewError(types.KindMissingType, types.ErrMissingType.Message, missing...)
	}
	return nil
}

// ValidateExportConfig is the config gate. hasAIFields says whether the
// schema contains AI-generated fields.
func ValidateExportConfig(cfg types.ExportConfig, hasAIFields bool) error {
	if hasAIFields && !cfg.ApplyAIEnhancement() {
		return types.NewError(types.KindMissingAIPrompt, types.ErrMissingAIPrompt.Message)
	}
	if cfg.UseSeed && strings.TrimSpace(cfg.Seed) == "" {
		return types.NewError(types.KindMissingSeed, types.ErrMissingSeed.Message)
	}
	return nil
}

func ValidateRowCount(n, max int) error {
	if n < 1 || n > max {
		return types.NewError(types.KindInvalidRowCount, fmt.Sprintf("row count must be between 1 and %d, got %d", max, n))
	}
	return nil
}

// FieldIssues runs the advisory per-field checks and returns messages keyed
// by field id. Fields without problems are absent from the map.
func FieldIssues(s types.Schema, now time.Time) map[string][]string {
	return FieldIssuesWith(registry.Default(), s, now)
}

func FieldIssuesWith(reg *registry.Registry, s types.Schema, now time.Time) map[string][]string {
	out := make(map[string][]string)
	for i, f := range s {
		var msgs []string
		opts, issues := reg.Decode(f, now)
		for _, issue := range issues {
			msgs = append(msgs, issue.Message)
		}
		if ref, ok := opts.(types.ReferenceOptions); ok {
			if msg := checkReference(s, i, ref.SourceField); msg != "" {
				msgs = append(msgs, msg)
			}
		}
		if len(msgs) > 0 {
			out[fieldKey(f, i)] = msgs
		}
	}
	return out
}

// ReferenceProblem reports why a reference field at index cannot resolve,
// or "" when its source exists.
func ReferenceProblem(s types.Schema, index int, source string) string {
	return checkReference(s, index, source)
}

func checkReference(s types.Schema, index int, source string) string {
	if source == "" {
		return "source field is required"
	}
	if s[index].Name == source {
		return "source field cannot reference itself"
	}
	for i, f := range s {
		if i != index && f.Name == source {
			return ""
		}
	}
	return fmt.Sprintf("source field not found: %s", source)
}

func displayName(f types.FieldDefinition, i int) string {
	if strings.TrimSpace(f.Name) != "" {
		return f.Name
	}
	return fmt.Sprintf("#%d", i+1)
}

func fieldKey(f types.FieldDefinition, i int) string {
	if f.ID != "" {
		return f.ID
	}
	return displayName(f, i)
}
