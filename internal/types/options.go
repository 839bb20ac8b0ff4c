package types

import "time"

// FieldOptions is the decoded, strongly typed option record of one field.
// Each registry type decodes into exactly one of the records below.
type FieldOptions interface {
	fieldOptions()
}

type NoOptions struct{}

type RowNumberOptions struct {
	Start int64
}

type NumberOptions struct {
	Min, Max float64
}

type DecimalOptions struct {
	Min, Max   float64
	Decimals   int
	MultipleOf float64
}

type YearOptions struct {
	Min, Max int
}

type EmailOptions struct {
	Domain string
}

type PhoneOptions struct {
	Format string
}

type DateFormat string

const (
	DateISO     DateFormat = "YYYY-MM-DD"
	DateUS      DateFormat = "MM/DD/YYYY"
	DateEU      DateFormat = "DD/MM/YYYY"
	DateRFC3339 DateFormat = "ISO 8601"
)

// Layout maps a date format choice to a Go time layout.
func (f DateFormat) Layout() string {
	switch f {
	case DateUS:
		return "01/02/2006"
	case DateEU:
		return "02/01/2006"
	case DateRFC3339:
		return "2006-01-02T15:04:05Z07:00"
	}
	return "2006-01-02"
}

// DateRangeOptions covers Date, Future Date and Past Date once the
// relative bounds have been resolved against the clock.
type DateRangeOptions struct {
	From, To time.Time
	Format   DateFormat
}

type BirthDateOptions struct {
	MinAge, MaxAge int
	Format         DateFormat
}

type TimeOptions struct {
	Clock string
}

type ListOptions struct {
	Values []string
}

type FixedTextOptions struct {
	Length  int
	Charset string
}

type CountOptions struct {
	Count int
}

type ReferenceOptions struct {
	SourceField string
}

type AIOptions struct {
	Hint string
}

func (NoOptions) fieldOptions()        {}
func (RowNumberOptions) fieldOptions() {}
func (NumberOptions) fieldOptions()    {}
func (DecimalOptions) fieldOptions()   {}
func (YearOptions) fieldOptions()      {}
func (EmailOptions) fieldOptions()     {}
func (PhoneOptions) fieldOptions()     {}
func (DateRangeOptions) fieldOptions() {}
func (BirthDateOptions) fieldOptions() {}
func (TimeOptions) fieldOptions()      {}
func (ListOptions) fieldOptions()      {}
func (FixedTextOptions) fieldOptions() {}
func (CountOptions) fieldOptions()     {}
func (ReferenceOptions) fieldOptions() {}
func (AIOptions) fieldOptions()        {}
