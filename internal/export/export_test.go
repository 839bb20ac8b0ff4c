package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Rana718/seedforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var day = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

func people() types.Dataset {
	return types.Dataset{
		Fields: []string{"id", "name", "note", "active", "score"},
		Rows: []types.GeneratedRow{
			{"id": int64(1), "name": "O'Hara", "note": `said "hi", left`, "active": true, "score": 1.5},
			{"id": int64(2), "name": "Lee", "note": nil, "active": false, "score": nil},
		},
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "test-data-2026-10-18.csv", FileName("", day, "csv"))
	assert.Equal(t, "users-2026-10-18.sql", FileName("users", day, "sql"))
}

func TestEncodeUnsupported(t *testing.T) {
	_, err := Encode("yaml", people(), Options{})
	assert.True(t, errors.Is(err, types.ErrUnsupportedFormat))
}

func TestEncodeNoRows(t *testing.T) {
	_, err := Encode(types.FormatCSV, types.Dataset{Fields: []string{"id"}}, Options{})
	assert.True(t, errors.Is(err, types.ErrEncodeFailed))
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestCSV(t *testing.T) {
	a, err := Encode(types.FormatCSV, people(), Options{IncludeHeader: true, Now: day, DatasetName: "people"})
	require.NoError(t, err)
	assert.Equal(t, "people-2026-10-18.csv", a.Name)
	assert.Equal(t, "text/csv", a.ContentType)
	want := "id,name,note,active,score\n" +
		"1,O'Hara,\"said \"\"hi\"\", left\",true,1.5\n" +
		"2,Lee,,false,"
	assert.Equal(t, want, string(a.Data))
}

func TestCSVLineEndingAndBOM(t *testing.T) {
	a, err := Encode(types.FormatCSV, people(), Options{IncludeHeader: true, IncludeBOM: true, LineEnding: "\r\n"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(a.Data, []byte("\uFEFFid,name")))
	assert.Equal(t, 2, strings.Count(string(a.Data), "\r\n"))
	assert.False(t, bytes.HasSuffix(a.Data, []byte("\r\n")))
}

func TestCSVWithoutHeader(t *testing.T) {
	a, err := Encode(types.FormatCSV, people(), Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(a.Data), "1,O'Hara"))
}

func TestCSVQuotesLineBreaks(t *testing.T) {
	assert.Equal(t, "\"a\nb\"", csvCell("a\nb"))
	assert.Equal(t, "\"a\rb\"", csvCell("a\rb"))
	assert.Equal(t, "plain", csvCell("plain"))
	assert.Equal(t, "42", csvCell(int64(42)))
}

func TestJSONRoundTrip(t *testing.T) {
	a, err := Encode(types.FormatJSON, people(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "application/json", a.ContentType)
	assert.Contains(t, string(a.Data), "\n  {\n    \"id\": 1,")

	var back []map[string]any
	require.NoError(t, json.Unmarshal(a.Data, &back))
	require.Len(t, back, 2)
	for _, obj := range back {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		assert.ElementsMatch(t, people().Fields, keys)
	}
	assert.Nil(t, back[1]["note"])
}

func TestJSONKeysFollowFieldOrder(t *testing.T) {
	ds := types.Dataset{Fields: []string{"z", "a"}, Rows: []types.GeneratedRow{{"a": "1", "z": "2"}}}
	a, err := Encode(types.FormatJSON, ds, Options{})
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(a.Data), `"z"`), strings.Index(string(a.Data), `"a"`))
}

func TestSQL(t *testing.T) {
	a, err := Encode(types.FormatSQL, people(), Options{DatasetName: "Team Member"})
	require.NoError(t, err)
	lines := strings.Split(string(a.Data), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `INSERT INTO team_members (id, name, note, active, score) VALUES (1, 'O''Hara', 'said "hi", left', TRUE, 1.5);`, lines[0])
	assert.Equal(t, `INSERT INTO team_members (id, name, note, active, score) VALUES (2, 'Lee', NULL, FALSE, NULL);`, lines[1])

	shape := regexp.MustCompile(`^INSERT INTO \S+ \(.*\) VALUES \(.*\);$`)
	for _, l := range lines {
		assert.Regexp(t, shape, l)
	}
}

func TestSQLQuotesIdentifiers(t *testing.T) {
	ds := types.Dataset{Fields: []string{"first name"}, Rows: []types.GeneratedRow{{"first name": "Al"}}}
	a, err := Encode(types.FormatSQL, ds, Options{TableName: "Staff List"})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "Staff List" ("first name") VALUES ('Al');`, string(a.Data))
}

func TestSQLQuotesReservedWords(t *testing.T) {
	ds := types.Dataset{
		Fields: []string{"order", "User", "total"},
		Rows:   []types.GeneratedRow{{"order": int64(7), "User": "ada", "total": 2.5}},
	}
	a, err := Encode(types.FormatSQL, ds, Options{TableName: "select"})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "select" ("order", "User", total) VALUES (7, 'ada', 2.5);`, string(a.Data))
}

func TestBufferPoolKeepsCapacity(t *testing.T) {
	b := getBuffer()
	b.WriteString(strings.Repeat("x", 1000))
	out := detach(b)
	b.WriteString("y")
	assert.Equal(t, strings.Repeat("x", 1000), string(out))

	capacity := b.Cap()
	putBuffer(b)
	assert.Zero(t, b.Len())
	assert.Equal(t, capacity, b.Cap())
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "test_data", TableName(Options{}))
	assert.Equal(t, "orders", TableName(Options{DatasetName: "Order"}))
	assert.Equal(t, "custom", TableName(Options{DatasetName: "Order", TableName: "custom"}))
}

func TestXLSX(t *testing.T) {
	a, err := Encode(types.FormatXLSX, people(), Options{DatasetName: "people: q1/q2", Now: day})
	require.NoError(t, err)
	assert.Equal(t, "xlsx", a.Extension)

	f, err := excelize.OpenReader(bytes.NewReader(a.Data))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "people q1q2", sheet)
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "name", "note", "active", "score"}, rows[0])
	assert.Equal(t, "O'Hara", rows[1][1])
	assert.Equal(t, "1", rows[1][0])
}

func TestEncodeSpreadsheetSortsKeys(t *testing.T) {
	a, err := EncodeSpreadsheet([]map[string]any{{"b": "2", "a": "1"}}, nil, Options{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(a.Data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, rows[0])

	_, err = EncodeSpreadsheet(nil, nil, Options{})
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", SheetName("[]"))
	assert.Len(t, []rune(SheetName(strings.Repeat("x", 40))), 31)
}

func TestColumnWidth(t *testing.T) {
	assert.Equal(t, 10.0, columnWidth("id"))
	assert.Equal(t, 60.0, columnWidth(strings.Repeat("x", 80)))
	assert.InDelta(t, 16.0, columnWidth("0123456789"), 0.001)
}
