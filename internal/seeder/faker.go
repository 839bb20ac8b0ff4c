package seeder

import (
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/cespare/xxhash/v2"
)

const (
	charsetAlphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	charsetLetters      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	charsetDigits       = "0123456789"
	charsetHex          = "0123456789abcdef"
)

// DataGenerator produces the values of one column. Values depend only on the
// seed it was built with and the order of calls, so a seeded generator
// replays the same column every time.
type DataGenerator struct {
	faker    *gofakeit.Faker
	typeName string
	opts     types.FieldOptions
	now      time.Time
}

// SeedFor derives the per-field seed from the user seed, the field name and
// a salt (the type name for values, "reference" for reference picks).
func SeedFor(seed, fieldName, salt string) uint64 {
	d := xxhash.New()
	d.WriteString(seed)
	d.WriteString("\x00")
	d.WriteString(fieldName)
	d.WriteString("\x00")
	d.WriteString(salt)
	return d.Sum64()
}

// randomSeed is used when seeding is off. Zero is avoided because gofakeit
// treats it as "pick your own".
func randomSeed() uint64 {
	for {
		if v := rand.Uint64(); v != 0 {
			return v
		}
	}
}

func newFaker(seed string, seeded bool, fieldName, salt string) *gofakeit.Faker {
	if !seeded {
		return gofakeit.New(randomSeed())
	}
	return gofakeit.New(SeedFor(seed, fieldName, salt))
}

// NewDataGenerator builds a generator for a field whose options have
// already been decoded. seeded=false draws a random seed.
func NewDataGenerator(field types.FieldDefinition, opts types.FieldOptions, seed string, seeded bool, now time.Time) *DataGenerator {
	typeName := field.Type
	if canonical, ok := registry.Default().Canonical(field.Type); ok {
		typeName = canonical
	}
	return &DataGenerator{
		faker:    newFaker(seed, seeded, field.Name, typeName),
		typeName: typeName,
		opts:     opts,
		now:      now,
	}
}

// ForField decodes the field's options with the default registry and
// returns its generator.
func ForField(field types.FieldDefinition, seed string, seeded bool, now time.Time) *DataGenerator {
	opts, _ := registry.Default().Decode(field, now)
	return NewDataGenerator(field, opts, seed, seeded, now)
}

// Column generates n values in row order.
func (g *DataGenerator) Column(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = g.Generate(i)
	}
	return out
}

// Generate returns the value for rowIndex. Blank, AI Generated, Reference
// and unknown types yield nil.
func (g *DataGenerator) Generate(rowIndex int) any {
	f := g.faker
	switch o := g.opts.(type) {
	case types.RowNumberOptions:
		return o.Start + int64(rowIndex)
	case types.NumberOptions:
		lo, hi := ordered(o.Min, o.Max)
		a, b := int(math.Ceil(lo)), int(math.Floor(hi))
		if a > b {
			return int64(math.Round(lo))
		}
		return int64(f.Number(a, b))
	case types.DecimalOptions:
		return g.decimal(o)
	case types.YearOptions:
		lo, hi := o.Min, o.Max
		if lo > hi {
			lo, hi = hi, lo
		}
		return int64(f.Number(lo, hi))
	case types.EmailOptions:
		if o.Domain == "" {
			return strings.ToLower(f.Email())
		}
		return strings.ToLower(f.Username()) + "@" + o.Domain
	case types.PhoneOptions:
		return f.Numerify(o.Format)
	case types.DateRangeOptions:
		return g.date(o.From, o.To).Format(o.Format.Layout())
	case types.BirthDateOptions:
		lo, hi := o.MinAge, o.MaxAge
		if lo > hi {
			lo, hi = hi, lo
		}
		from := g.now.AddDate(-hi-1, 0, 1)
		to := g.now.AddDate(-lo, 0, 0)
		return g.date(from, to).Format(o.Format.Layout())
	case types.TimeOptions:
		secs := f.Number(0, 24*60*60-1)
		t := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second)
		if o.Clock == "12h" {
			return t.Format("03:04 PM")
		}
		return t.Format("15:04")
	case types.ListOptions:
		if len(o.Values) == 0 {
			return nil
		}
		return o.Values[f.Number(0, len(o.Values)-1)]
	case types.FixedTextOptions:
		return g.fixedText(o)
	case types.CountOptions:
		return g.text(o.Count)
	case types.NoOptions:
		return g.plain()
	}
	return nil
}

func (g *DataGenerator) plain() any {
	f := g.faker
	switch g.typeName {
	case registry.TypeBoolean:
		return f.Bool()
	case registry.TypeFirstName:
		return f.FirstName()
	case registry.TypeLastName:
		return f.LastName()
	case registry.TypeFullName:
		return f.FirstName() + " " + f.LastName()
	case registry.TypeUsername:
		return f.Username()
	case registry.TypeStreetAddress:
		return f.Street()
	case registry.TypeCity:
		return f.City()
	case registry.TypeState:
		return f.State()
	case registry.TypeCountry:
		return f.Country()
	case registry.TypePostalCode:
		return f.Zip()
	case registry.TypeCompany:
		return f.Company()
	case registry.TypeJobTitle:
		return f.JobTitle()
	case registry.TypeURL:
		return f.URL()
	case registry.TypeIPAddress:
		return f.IPv4Address()
	case registry.TypeUUID:
		return f.UUID()
	case registry.TypeHexColor:
		return f.HexColor()
	case registry.TypeCurrency:
		return f.CurrencyShort()
	}
	return nil
}

func (g *DataGenerator) decimal(o types.DecimalOptions) float64 {
	lo, hi := ordered(o.Min, o.Max)
	v := g.faker.Float64Range(lo, hi)
	if lo == hi {
		v = lo
	}
	if m := o.MultipleOf; m > 0 {
		first, last := math.Ceil(lo/m)*m, math.Floor(hi/m)*m
		if first <= last {
			v = math.Min(math.Max(math.Round(v/m)*m, first), last)
		}
	}
	p := math.Pow10(o.Decimals)
	return math.Round(v*p) / p
}

// date picks a day in [from, to]. An inverted range yields from.
func (g *DataGenerator) date(from, to time.Time) time.Time {
	days := int(to.Sub(from).Hours() / 24)
	if days <= 0 {
		return from
	}
	return from.AddDate(0, 0, g.faker.Number(0, days))
}

func (g *DataGenerator) fixedText(o types.FixedTextOptions) string {
	charset := charsetAlphanumeric
	switch o.Charset {
	case "letters":
		charset = charsetLetters
	case "digits":
		charset = charsetDigits
	case "hex":
		charset = charsetHex
	}
	n := o.Length
	if n <= 0 {
		n = 8
	}
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(charset[g.faker.Number(0, len(charset)-1)])
	}
	return b.String()
}

func (g *DataGenerator) text(count int) string {
	if count <= 0 {
		count = 1
	}
	f := g.faker
	switch g.typeName {
	case registry.TypeWords:
		words := make([]string, count)
		for i := range words {
			words[i] = f.Word()
		}
		return strings.Join(words, " ")
	case registry.TypeSentences:
		sentences := make([]string, count)
		for i := range sentences {
			sentences[i] = f.Sentence(f.Number(6, 12))
		}
		return strings.Join(sentences, " ")
	}
	return f.Paragraph(1, count, 10, " ")
}

func ordered(a, b float64) (float64, float64) {
	if a > b {
		return b, a
	}
	return a, b
}
