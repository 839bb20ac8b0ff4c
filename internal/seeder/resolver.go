package seeder

import (
	"fmt"

	"github.com/Rana718/seedforge/internal/schema"
	"github.com/Rana718/seedforge/internal/types"
)

const referenceSalt = "reference"

// ResolveReferences fills every reference column of rows by picking, per
// row, one value from the full source column. Unresolvable references are
// left null and reported as warnings; only a cycle is an error.
func ResolveReferences(s types.Schema, rows []types.GeneratedRow, seed string, seeded bool) ([]string, error) {
	return ResolveReferencesWhere(s, rows, seed, seeded, nil)
}

// ResolveReferencesWhere resolves only the reference fields for which
// include returns true, in dependency order. A nil include means all.
func ResolveReferencesWhere(s types.Schema, rows []types.GeneratedRow, seed string, seeded bool, include func(types.FieldDefinition) bool) ([]string, error) {
	order, err := ReferenceOrder(s)
	if err != nil {
		return nil, err
	}

	var warnings []string
	for _, idx := range order {
		field := s[idx]
		if include != nil && !include(field) {
			continue
		}
		source := SourceField(field)
		if msg := schema.ReferenceProblem(s, idx, source); msg != "" {
			warnings = append(warnings, fmt.Sprintf("reference field %q: %s; values left empty", field.Name, msg))
			fill(rows, field.Name, nil)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		column := make([]any, len(rows))
		for i, row := range rows {
			column[i] = row[source]
		}
		picker := newFaker(seed, seeded, field.Name, referenceSalt)
		for _, row := range rows {
			row[field.Name] = column[picker.Number(0, len(column)-1)]
		}
	}
	return warnings, nil
}

func fill(rows []types.GeneratedRow, name string, v any) {
	for _, row := range rows {
		row[name] = v
	}
}
