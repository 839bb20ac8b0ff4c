package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// OptionKind is the input control a TypeOption renders as.
type OptionKind string

const (
	OptionNumber  OptionKind = "number"
	OptionText    OptionKind = "text"
	OptionBoolean OptionKind = "boolean"
	OptionSelect  OptionKind = "select"
)

type TypeOption struct {
	Name    string     `json:"name"`
	Label   string     `json:"label"`
	Kind    OptionKind `json:"kind"`
	Default any        `json:"default"`
	Min     *float64   `json:"min,omitempty"`
	Max     *float64   `json:"max,omitempty"`
	Choices []string   `json:"choices,omitempty"`
}

type FieldTypeDefinition struct {
	Name        string       `json:"name"`
	Provider    string       `json:"provider"`
	Category    string       `json:"category"`
	Description string       `json:"description,omitempty"`
	Options     []TypeOption `json:"options"`
}

type FieldDefinition struct {
	ID      string         `json:"id" yaml:"id"`
	Name    string         `json:"name" yaml:"name"`
	Type    string         `json:"type" yaml:"type"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Schema is an ordered list of fields; order is column order.
type Schema []FieldDefinition

type SavedSchema struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Fields    Schema    `json:"fields" yaml:"fields"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatSQL  Format = "sql"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts the canonical names plus the labels used by the UI.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv", "delimited", "delimited-text":
		return FormatCSV, true
	case "json", "structured", "structured-text":
		return FormatJSON, true
	case "sql", "sql statements":
		return FormatSQL, true
	case "xlsx", "excel", "spreadsheet":
		return FormatXLSX, true
	}
	return "", false
}

const (
	LineEndingLF   = "Unix (LF)"
	LineEndingCRLF = "Windows (CRLF)"
)

type ExportConfig struct {
	RowCount          int    `json:"rowCount" yaml:"row_count"`
	Format            Format `json:"format" yaml:"format"`
	LineEnding        string `json:"lineEnding" yaml:"line_ending"`
	IncludeHeader     bool   `json:"includeHeader" yaml:"include_header"`
	IncludeBOM        bool   `json:"includeBOM" yaml:"include_bom"`
	EnhancementPrompt string `json:"enhancementPrompt,omitempty" yaml:"enhancement_prompt,omitempty"`
	UseSeed           bool   `json:"useSeed" yaml:"use_seed"`
	Seed              string `json:"seed,omitempty" yaml:"seed,omitempty"`
	Provider          string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model             string `json:"model,omitempty" yaml:"model,omitempty"`
	DatasetName       string `json:"datasetName,omitempty" yaml:"dataset_name,omitempty"`
	TableName         string `json:"tableName,omitempty" yaml:"table_name,omitempty"`
}

// ApplyAIEnhancement reports whether an enhancement instruction was supplied.
func (c ExportConfig) ApplyAIEnhancement() bool {
	return strings.TrimSpace(c.EnhancementPrompt) != ""
}

// Newline resolves the configured line ending, defaulting to LF.
func (c ExportConfig) Newline() string {
	switch strings.ToLower(strings.TrimSpace(c.LineEnding)) {
	case strings.ToLower(LineEndingCRLF), "crlf", "windows", "\r\n":
		return "\r\n"
	}
	return "\n"
}

// SeedValue returns the active seed, or "" when seeding is off.
func (c ExportConfig) SeedValue() string {
	if !c.UseSeed {
		return ""
	}
	return c.Seed
}

// GeneratedRow maps field name to a scalar: nil, string, int64, float64 or bool.
type GeneratedRow map[string]any

type Dataset struct {
	Fields []string
	Rows   []GeneratedRow
}

func (d Dataset) Len() int { return len(d.Rows) }

// Column returns the values of one field across all rows.
func (d Dataset) Column(name string) []any {
	out := make([]any, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[name]
	}
	return out
}

// MarshalJSON writes rows as objects whose keys follow field order.
func (d Dataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range d.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, name := range d.Fields {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(name)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(row[name])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

type Timings struct {
	Validation time.Duration `json:"-"`
	Baseline   time.Duration `json:"-"`
	References time.Duration `json:"-"`
	Overlay    time.Duration `json:"-"`
	Encoding   time.Duration `json:"-"`
	Total      time.Duration `json:"-"`
}

func (t Timings) MarshalJSON() ([]byte, error) {
	ms := func(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
	return json.Marshal(map[string]float64{
		"validationMs": ms(t.Validation),
		"baselineMs":   ms(t.Baseline),
		"referencesMs": ms(t.References),
		"overlayMs":    ms(t.Overlay),
		"encodingMs":   ms(t.Encoding),
		"totalMs":      ms(t.Total),
	})
}

type GenerationMetadata struct {
	Deterministic bool     `json:"deterministic"`
	Warnings      []string `json:"warnings"`
	Timings       Timings  `json:"timings"`
}

func (m *GenerationMetadata) Warn(msg string) {
	m.Warnings = append(m.Warnings, msg)
}
