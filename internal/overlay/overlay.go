package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Rana718/seedforge/internal/types"
)

// FieldDescriptor describes one schema column to the collaborator.
type FieldDescriptor struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Hint    string         `json:"hint,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// Request asks the collaborator to author values for AIFields.
type Request struct {
	Fields      []FieldDescriptor `json:"fields"`
	AIFields    []string          `json:"aiFields"`
	RowCount    int               `json:"rowCount"`
	Instruction string            `json:"instruction"`
	Seed        string            `json:"seed,omitempty"`
	Provider    string            `json:"provider,omitempty"`
	Model       string            `json:"model,omitempty"`
	Baseline    []map[string]any  `json:"baseline,omitempty"`
}

// Response carries one object per row keyed by field name. Deterministic
// is true only when the collaborator guarantees replayable output for the
// request's seed.
type Response struct {
	Rows          []map[string]any `json:"rows"`
	Deterministic bool             `json:"deterministic"`
}

// Overlay is the AI enhancement capability. A nil Overlay means the
// capability is not configured.
type Overlay interface {
	Enhance(ctx context.Context, req Request) (*Response, error)
}

// Func adapts a plain function to Overlay.
type Func func(ctx context.Context, req Request) (*Response, error)

func (f Func) Enhance(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Merge copies collaborator values into rows for aiFields only. Values the
// collaborator returns for other fields are dropped, and anything it leaves
// out stays null. The returned warnings describe both cases.
func Merge(rows []types.GeneratedRow, aiFields []string, resp *Response) []string {
	var warnings []string
	if resp == nil {
		return []string{"AI enhancement returned no data; AI fields left empty"}
	}

	allowed := make(map[string]bool, len(aiFields))
	for _, f := range aiFields {
		allowed[f] = true
	}

	if len(resp.Rows) < len(rows) {
		warnings = append(warnings, fmt.Sprintf("AI enhancement returned %d of %d rows; remaining AI values left empty", len(resp.Rows), len(rows)))
	}

	missing := make(map[string]int)
	ignored := make(map[string]bool)
	for i, row := range rows {
		if i >= len(resp.Rows) {
			break
		}
		got := resp.Rows[i]
		for _, f := range aiFields {
			v, ok := got[f]
			if !ok {
				missing[f]++
				continue
			}
			row[f] = Scalar(v)
		}
		for k := range got {
			if !allowed[k] {
				ignored[k] = true
			}
		}
	}

	for _, f := range aiFields {
		if n := missing[f]; n > 0 {
			warnings = append(warnings, fmt.Sprintf("AI enhancement omitted field %q in %d rows", f, n))
		}
	}
	if len(ignored) > 0 {
		names := make([]string, 0, len(ignored))
		for k := range ignored {
			names = append(names, k)
		}
		sort.Strings(names)
		warnings = append(warnings, "AI enhancement values for non-AI fields were ignored: "+strings.Join(names, ", "))
	}
	return warnings
}

// Scalar coerces a decoded JSON value to a row scalar. Whole numbers become
// int64; arrays and objects are kept as compact JSON text.
func Scalar(v any) any {
	switch x := v.(type) {
	case nil, string, bool, int64:
		return x
	case int:
		return int64(x)
	case float64:
		if x == float64(int64(x)) && x < 1<<53 && x > -(1<<53) {
			return int64(x)
		}
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
