package export

import (
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/Rana718/seedforge/internal/database"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
)

var plainIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// TableName is the explicit table override, or the snake-cased plural of
// the dataset name.
func TableName(opts Options) string {
	if t := strings.TrimSpace(opts.TableName); t != "" {
		return t
	}
	return inflection.Plural(strcase.ToSnake(opts.datasetName()))
}

// encodeSQL writes one INSERT statement per row. Values are rendered as
// literals so the file can be replayed by any SQL client.
func encodeSQL(ds types.Dataset, opts Options) ([]byte, error) {
	table := quoteIdent(TableName(opts))
	cols := make([]string, len(ds.Fields))
	for i, f := range ds.Fields {
		cols[i] = quoteIdent(f)
	}
	columnList := strings.Join(cols, ", ")

	b := getBuffer()
	defer putBuffer(b)
	for n, row := range ds.Rows {
		literals := make([]string, len(ds.Fields))
		for i, f := range ds.Fields {
			literals[i] = sqlLiteral(row[f])
		}
		stmt, _, err := sq.Insert(table).
			Columns(columnList).
			Values(sq.Expr(strings.Join(literals, ", "))).
			ToSql()
		if err != nil {
			return nil, err
		}
		if n > 0 {
			b.WriteString(opts.newline())
		}
		b.WriteString(stmt)
		b.WriteByte(';')
	}
	return detach(b), nil
}

// quoteIdent leaves plain identifiers alone and double-quotes the rest,
// including reserved words.
func quoteIdent(name string) string {
	if plainIdentifier.MatchString(name) && !database.IsKeyword(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int64, int, float64:
		return formatValue(x)
	default:
		return "'" + strings.ReplaceAll(formatValue(x), "'", "''") + "'"
	}
}
