package registry

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Rana718/seedforge/internal/types"
	"github.com/spf13/cast"
)

// Issue is a problem found while decoding a field's option bag.
type Issue struct {
	Option  string
	Message string
}

func (i Issue) String() string { return i.Message }

const yearSpan = 365 * 24 * time.Hour

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// ParseDate accepts plain dates and RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// SplitList splits a comma separated list, trimming and dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type reader struct {
	opts     map[string]any
	defaults map[string]any
	issues   []Issue
}

func (r *reader) provided(key string) (any, bool) {
	v, ok := r.opts[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func (r *reader) flag(option, format string, args ...any) {
	r.issues = append(r.issues, Issue{Option: option, Message: fmt.Sprintf(format, args...)})
}

// float returns the option as a number, falling back to the declared
// default. ok is false when a supplied value could not be parsed.
func (r *reader) float(key string) (float64, bool) {
	if v, ok := r.provided(key); ok {
		f, err := cast.ToFloat64E(v)
		if err == nil {
			return f, true
		}
		r.flag(key, "%s must be a number", key)
	}
	return cast.ToFloat64(r.defaults[key]), false
}

func (r *reader) int(key string) (int, bool) {
	f, ok := r.float(key)
	return int(f), ok
}

func (r *reader) str(key string) string {
	if v, ok := r.provided(key); ok {
		return strings.TrimSpace(cast.ToString(v))
	}
	return strings.TrimSpace(cast.ToString(r.defaults[key]))
}

func (r *reader) rangeCheck(minKey, maxKey string) (float64, float64) {
	lo, loOK := r.float(minKey)
	hi, hiOK := r.float(maxKey)
	if loOK && hiOK && lo > hi {
		r.flag(minKey, "%s must not exceed %s", minKey, maxKey)
	}
	return lo, hi
}

func (r *reader) date(key string) (time.Time, bool) {
	s := r.str(key)
	if s == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(s)
	if err != nil {
		r.flag(key, "%s date is not a valid date: %q", key, s)
		return time.Time{}, false
	}
	return t, true
}

func (r *reader) dateFormat() types.DateFormat {
	f := r.str("format")
	for _, known := range dateFormats {
		if f == known {
			return types.DateFormat(f)
		}
	}
	r.flag("format", "unknown date format %q", f)
	return types.DateISO
}

// Decode turns a field's option bag into its typed record. now anchors
// relative date bounds. Unknown or unset types decode to NoOptions with no
// issues; requiring a type is the gating validator's job.
func (r *Registry) Decode(field types.FieldDefinition, now time.Time) (types.FieldOptions, []Issue) {
	def, ok := r.Lookup(field.Type)
	if !ok {
		return types.NoOptions{}, nil
	}
	rd := &reader{opts: field.Options, defaults: r.Defaults(def.Name)}
	if rd.opts == nil {
		rd.opts = map[string]any{}
	}

	var out types.FieldOptions
	switch def.Name {
	case TypeRowNumber:
		start, _ := rd.float("start")
		out = types.RowNumberOptions{Start: int64(start)}
	case TypeNumber:
		lo, hi := rd.rangeCheck("min", "max")
		out = types.NumberOptions{Min: lo, Max: hi}
	case TypeDecimal:
		lo, hi := rd.rangeCheck("min", "max")
		decimals, _ := rd.int("decimals")
		if decimals < 0 || decimals > 10 {
			rd.flag("decimals", "decimals must be between 0 and 10")
			decimals = 2
		}
		step, ok := rd.float("multipleOf")
		if ok && step < 0 {
			rd.flag("multipleOf", "multipleOf must not be negative")
			step = 0
		}
		if step > 0 && !hasMultiple(lo, hi, step) {
			rd.flag("multipleOf", "no multiple of %g lies between min and max", step)
		}
		out = types.DecimalOptions{Min: lo, Max: hi, Decimals: decimals, MultipleOf: step}
	case TypeYear:
		lo, hi := rd.rangeCheck("min", "max")
		out = types.YearOptions{Min: int(lo), Max: int(hi)}
	case TypeEmail:
		out = types.EmailOptions{Domain: strings.TrimPrefix(rd.str("domain"), "@")}
	case TypePhone:
		out = decodePhone(rd)
	case TypeDate, TypeFutureDate, TypePastDate:
		out = decodeDateRange(rd, def.Name, now)
	case TypeDateOfBirth:
		lo, loOK := rd.int("minAge")
		hi, hiOK := rd.int("maxAge")
		if loOK && lo < 0 {
			rd.flag("minAge", "minAge must not be negative")
		}
		if loOK && hiOK && lo > hi {
			rd.flag("minAge", "minAge must not exceed maxAge")
		}
		out = types.BirthDateOptions{MinAge: lo, MaxAge: hi, Format: rd.dateFormat()}
	case TypeTime:
		out = types.TimeOptions{Clock: rd.str("format")}
	case TypeCustomList:
		values := SplitList(rd.str("values"))
		if len(values) == 0 {
			rd.flag("values", "list must contain at least one value")
		}
		out = types.ListOptions{Values: values}
	case TypeFixedText:
		length, ok := rd.int("length")
		if ok && length <= 0 {
			rd.flag("length", "length must be greater than 0")
		}
		out = types.FixedTextOptions{Length: length, Charset: rd.str("charset")}
	case TypeWords, TypeSentences:
		count, ok := rd.int("count")
		if ok && count <= 0 {
			rd.flag("count", "count must be greater than 0")
		}
		out = types.CountOptions{Count: count}
	case TypeParagraph:
		count, ok := rd.int("sentences")
		if ok && count <= 0 {
			rd.flag("sentences", "sentences must be greater than 0")
		}
		out = types.CountOptions{Count: count}
	case TypeReference:
		out = types.ReferenceOptions{SourceField: rd.str(OptionSourceField)}
	case TypeAIGenerated:
		out = types.AIOptions{Hint: rd.str("hint")}
	default:
		out = types.NoOptions{}
	}
	return out, rd.issues
}

func decodePhone(rd *reader) types.PhoneOptions {
	format := rd.str("format")
	custom := rd.str("customFormat")
	if custom != "" && !strings.Contains(custom, PhoneDigitSentinel) {
		rd.flag("customFormat", "custom format must contain at least one %s placeholder", PhoneDigitSentinel)
		custom = ""
	}
	switch {
	case format == PhoneCustomFormat && custom != "":
		return types.PhoneOptions{Format: custom}
	case format == PhoneCustomFormat:
		return types.PhoneOptions{Format: phoneFormats[0]}
	case strings.Contains(format, PhoneDigitSentinel):
		return types.PhoneOptions{Format: format}
	}
	return types.PhoneOptions{Format: phoneFormats[0]}
}

// decodeDateRange fills a missing bound from the type's defaults. When the
// default would land on the wrong side of the supplied bound, the missing one
// is derived from it instead, one year apart.
func decodeDateRange(rd *reader, typeName string, now time.Time) types.DateRangeOptions {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from, fromOK := rd.date("from")
	to, toOK := rd.date("to")

	var lo, hi time.Time
	switch typeName {
	case TypeFutureDate:
		lo, hi = today, today.Add(yearSpan)
	case TypePastDate:
		lo, hi = today.Add(-yearSpan), today
	default:
		lo = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		hi = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	}

	switch {
	case fromOK && toOK:
		lo, hi = from, to
		if lo.After(hi) {
			rd.flag("from", "from date must not be after to date")
		}
	case fromOK:
		lo = from
		if hi.Before(lo) {
			hi = lo.Add(yearSpan)
		}
	case toOK:
		hi = to
		if lo.After(hi) {
			lo = hi.Add(-yearSpan)
		}
	}
	return types.DateRangeOptions{From: lo, To: hi, Format: rd.dateFormat()}
}

// hasMultiple reports whether some multiple of step lies in [lo, hi].
func hasMultiple(lo, hi, step float64) bool {
	if lo > hi {
		lo, hi = hi, lo
	}
	return math.Ceil(lo/step)*step <= hi+1e-9
}
