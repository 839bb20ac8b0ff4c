package export

import (
	"strings"

	"github.com/Rana718/seedforge/internal/types"
)

const bom = "\uFEFF"

// encodeCSV writes header and rows joined by the configured line ending,
// with no terminator after the last line.
func encodeCSV(ds types.Dataset, opts Options) ([]byte, error) {
	lines := make([]string, 0, ds.Len()+1)
	if opts.IncludeHeader {
		lines = append(lines, csvLine(stringsToAny(ds.Fields)))
	}
	for _, row := range ds.Rows {
		values := make([]any, len(ds.Fields))
		for i, f := range ds.Fields {
			values[i] = row[f]
		}
		lines = append(lines, csvLine(values))
	}

	b := getBuffer()
	defer putBuffer(b)
	if opts.IncludeBOM {
		b.WriteString(bom)
	}
	b.WriteString(strings.Join(lines, opts.newline()))
	return detach(b), nil
}

func csvLine(values []any) string {
	cells := make([]string, len(values))
	for i, v := range values {
		cells[i] = csvCell(v)
	}
	return strings.Join(cells, ",")
}

// csvCell quotes strings containing a quote, comma, CR or LF and doubles
// inner quotes. Non-string values are never quoted.
func csvCell(v any) string {
	s, isString := v.(string)
	if !isString {
		return formatValue(v)
	}
	if strings.ContainsAny(s, "\",\r\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
