package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rana718/seedforge/internal/types"
)

// ErrNoRows is returned when a full export is asked to encode nothing.
var ErrNoRows = errors.New("no rows to export")

const DefaultDatasetName = "test-data"

// Artifact is one encoded dataset ready to be downloaded or stored.
type Artifact struct {
	Name        string
	Extension   string
	ContentType string
	Format      types.Format
	Data        []byte
}

// Options carries the config values the encoders look at.
type Options struct {
	LineEnding    string
	IncludeHeader bool
	IncludeBOM    bool
	DatasetName   string
	TableName     string
	Now           time.Time
}

// OptionsFrom reads encoder options out of an export config.
func OptionsFrom(cfg types.ExportConfig, now time.Time) Options {
	return Options{
		LineEnding:    cfg.Newline(),
		IncludeHeader: cfg.IncludeHeader,
		IncludeBOM:    cfg.IncludeBOM,
		DatasetName:   cfg.DatasetName,
		TableName:     cfg.TableName,
		Now:           now,
	}
}

func (o Options) newline() string {
	if o.LineEnding == "" {
		return "\n"
	}
	return o.LineEnding
}

func (o Options) datasetName() string {
	if strings.TrimSpace(o.DatasetName) == "" {
		return DefaultDatasetName
	}
	return strings.TrimSpace(o.DatasetName)
}

// FileName builds "<prefix>-<YYYY-MM-DD>.<ext>".
func FileName(prefix string, now time.Time, ext string) string {
	if strings.TrimSpace(prefix) == "" {
		prefix = DefaultDatasetName
	}
	return fmt.Sprintf("%s-%s.%s", strings.TrimSpace(prefix), now.Format("2006-01-02"), ext)
}

type encoder struct {
	ext         string
	contentType string
	encode      func(ds types.Dataset, opts Options) ([]byte, error)
}

var encoders = map[types.Format]encoder{
	types.FormatCSV:  {"csv", "text/csv", encodeCSV},
	types.FormatJSON: {"json", "application/json", encodeJSON},
	types.FormatSQL:  {"sql", "application/sql", encodeSQL},
	types.FormatXLSX: {"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", encodeXLSX},
}

// Supported reports whether an encoder exists for format.
func Supported(format types.Format) bool {
	_, ok := encoders[format]
	return ok
}

// Encode runs exactly one encoder over ds.
func Encode(format types.Format, ds types.Dataset, opts Options) (*Artifact, error) {
	enc, ok := encoders[format]
	if !ok {
		return nil, types.NewError(types.KindUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
	if ds.Len() == 0 {
		return nil, types.WrapError(types.KindEncodeFailed, types.ErrEncodeFailed.Message, ErrNoRows)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	data, err := enc.encode(ds, opts)
	if err != nil {
		return nil, types.WrapError(types.KindEncodeFailed, types.ErrEncodeFailed.Message, err)
	}
	return &Artifact{
		Name:        FileName(opts.datasetName(), opts.Now, enc.ext),
		Extension:   enc.ext,
		ContentType: enc.contentType,
		Format:      format,
		Data:        data,
	}, nil
}

// formatValue renders a scalar as plain text; nil is the empty string.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
