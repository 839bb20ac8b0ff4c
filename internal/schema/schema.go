package schema

import (
	"fmt"
	"strings"

	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/google/uuid"
)

// Direction for MoveField.
type Direction int

const (
	Up Direction = iota
	Down
)

// Every operation returns a new schema and leaves its input untouched.

func NewID() string {
	return uuid.NewString()
}

// AddField appends a field with a placeholder name and no type.
func AddField(s types.Schema) types.Schema {
	out := Clone(s)
	return append(out, types.FieldDefinition{
		ID:      NewID(),
		Name:    placeholderName(s),
		Options: map[string]any{},
	})
}

func RemoveField(s types.Schema, index int) types.Schema {
	if !inRange(s, index) {
		return Clone(s)
	}
	out := make(types.Schema, 0, len(s)-1)
	for i, f := range s {
		if i != index {
			out = append(out, cloneField(f))
		}
	}
	return out
}

// DuplicateField appends a copy of the field at index with a fresh id and a
// name made unique with _copy / _copy_N suffixes.
func DuplicateField(s types.Schema, index int) types.Schema {
	out := Clone(s)
	if !inRange(s, index) {
		return out
	}
	dup := cloneField(s[index])
	dup.ID = NewID()
	dup.Name = uniqueName(s, s[index].Name+"_copy")
	return append(out, dup)
}

// MoveField swaps a field with its neighbour. Moving past either end is a no-op.
func MoveField(s types.Schema, index int, dir Direction) types.Schema {
	out := Clone(s)
	if !inRange(s, index) {
		return out
	}
	target := index - 1
	if dir == Down {
		target = index + 1
	}
	if !inRange(s, target) {
		return out
	}
	out[index], out[target] = out[target], out[index]
	return out
}

// SetFieldType switches a field's type and resets its options to the new
// type's defaults. Nothing from the previous options survives.
func SetFieldType(s types.Schema, index int, typeName string) types.Schema {
	return SetFieldTypeWith(registry.Default(), s, index, typeName)
}

func SetFieldTypeWith(reg *registry.Registry, s types.Schema, index int, typeName string) types.Schema {
	out := Clone(s)
	if !inRange(s, index) {
		return out
	}
	if canonical, ok := reg.Canonical(typeName); ok {
		typeName = canonical
	}
	opts := reg.Defaults(typeName)
	if typeName == registry.TypeReference {
		opts[registry.OptionSourceField] = ""
	}
	out[index].Type = typeName
	out[index].Options = opts
	return out
}

func SetFieldOption(s types.Schema, index int, name string, value any) types.Schema {
	out := Clone(s)
	if !inRange(s, index) {
		return out
	}
	if out[index].Options == nil {
		out[index].Options = map[string]any{}
	}
	out[index].Options[name] = value
	return out
}

func SetFieldName(s types.Schema, index int, name string) types.Schema {
	out := Clone(s)
	if inRange(s, index) {
		out[index].Name = name
	}
	return out
}

// Replace swaps the whole schema for fields, giving each a fresh id.
func Replace(fields []types.FieldDefinition) types.Schema {
	return WithFreshIDs(types.Schema(fields))
}

// WithFreshIDs copies a schema and assigns new ids, as required whenever a
// stored schema is loaded next to the active one.
func WithFreshIDs(s types.Schema) types.Schema {
	out := Clone(s)
	for i := range out {
		out[i].ID = NewID()
	}
	return out
}

// EnsureIDs fills in ids missing from hand-written schema files.
func EnsureIDs(s types.Schema) types.Schema {
	out := Clone(s)
	for i := range out {
		if strings.TrimSpace(out[i].ID) == "" {
			out[i].ID = NewID()
		}
	}
	return out
}

func Clone(s types.Schema) types.Schema {
	if s == nil {
		return types.Schema{}
	}
	out := make(types.Schema, len(s))
	for i, f := range s {
		out[i] = cloneField(f)
	}
	return out
}

func Names(s types.Schema) []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// IndexOf returns the position of the first field with the given name, or -1.
func IndexOf(s types.Schema, name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func IsAIField(f types.FieldDefinition) bool {
	return strings.EqualFold(strings.TrimSpace(f.Type), registry.TypeAIGenerated)
}

func IsReference(f types.FieldDefinition) bool {
	return strings.EqualFold(strings.TrimSpace(f.Type), registry.TypeReference)
}

func AIFields(s types.Schema) []string {
	var out []string
	for _, f := range s {
		if IsAIField(f) {
			out = append(out, f.Name)
		}
	}
	return out
}

func HasAIFields(s types.Schema) bool {
	return len(AIFields(s)) > 0
}

func cloneField(f types.FieldDefinition) types.FieldDefinition {
	if f.Options != nil {
		opts := make(map[string]any, len(f.Options))
		for k, v := range f.Options {
			opts[k] = v
		}
		f.Options = opts
	}
	return f
}

func inRange(s types.Schema, i int) bool {
	return i >= 0 && i < len(s)
}

func taken(s types.Schema) map[string]bool {
	names := make(map[string]bool, len(s))
	for _, f := range s {
		names[f.Name] = true
	}
	return names
}

func placeholderName(s types.Schema) string {
	used := taken(s)
	for n := len(s) + 1; ; n++ {
		name := fmt.Sprintf("field_%d", n)
		if !used[name] {
			return name
		}
	}
}

func uniqueName(s types.Schema, base string) string {
	used := taken(s)
	if !used[base] {
		return base
	}
	for n := 2; ; n++ {
		name := fmt.Sprintf("%s_%d", base, n)
		if !used[name] {
			return name
		}
	}
}
