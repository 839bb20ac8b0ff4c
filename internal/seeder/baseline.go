package seeder

import (
	"context"
	"sync"
	"time"

	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/schema"
	"github.com/Rana718/seedforge/internal/types"
)

const cancelCheckEvery = 512

// GenerateRows produces n rows of baseline values. Reference and AI
// columns are left null for the later stages. Columns share no state, so
// each one is generated on its own goroutine.
func GenerateRows(ctx context.Context, s types.Schema, n int, seed string, seeded bool, now time.Time) ([]types.GeneratedRow, error) {
	reg := registry.Default()
	columns := make([][]any, len(s))

	var wg sync.WaitGroup
	for i, field := range s {
		if schema.IsReference(field) || schema.IsAIField(field) {
			continue
		}
		opts, _ := reg.Decode(field, now)
		gen := NewDataGenerator(field, opts, seed, seeded, now)

		wg.Add(1)
		go func(i int, gen *DataGenerator) {
			defer wg.Done()
			col := make([]any, n)
			for row := 0; row < n; row++ {
				if row%cancelCheckEvery == 0 && ctx.Err() != nil {
					return
				}
				col[row] = gen.Generate(row)
			}
			columns[i] = col
		}(i, gen)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The first field with a given name owns the row key.
	seen := make(map[string]bool, len(s))
	owner := make([]bool, len(s))
	for i, field := range s {
		owner[i] = !seen[field.Name]
		seen[field.Name] = true
	}

	rows := make([]types.GeneratedRow, n)
	for r := range rows {
		row := make(types.GeneratedRow, len(s))
		for i, field := range s {
			if !owner[i] {
				continue
			}
			if columns[i] != nil {
				row[field.Name] = columns[i][r]
			} else {
				row[field.Name] = nil
			}
		}
		rows[r] = row
	}
	return rows, nil
}
