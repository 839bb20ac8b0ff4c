package registry

import (
	"sort"
	"strings"

	"github.com/Rana718/seedforge/internal/types"
)

// Built-in type names.
const (
	TypeBlank          = "Blank"
	TypeRowNumber      = "Row Number"
	TypeNumber         = "Number"
	TypeDecimal        = "Decimal"
	TypeYear           = "Year"
	TypeBoolean        = "Boolean"
	TypeFirstName      = "First Name"
	TypeLastName       = "Last Name"
	TypeFullName       = "Full Name"
	TypeEmail          = "Email Address"
	TypeUsername       = "Username"
	TypePhone          = "Phone Number"
	TypeStreetAddress  = "Street Address"
	TypeCity           = "City"
	TypeState          = "State"
	TypeCountry        = "Country"
	TypePostalCode     = "Postal Code"
	TypeCompany        = "Company Name"
	TypeJobTitle       = "Job Title"
	TypeURL            = "URL"
	TypeIPAddress      = "IP Address"
	TypeUUID           = "UUID"
	TypeHexColor       = "Hex Color"
	TypeCurrency       = "Currency Code"
	TypeDate           = "Date"
	TypeFutureDate     = "Future Date"
	TypePastDate       = "Past Date"
	TypeDateOfBirth    = "Date of Birth"
	TypeTime           = "Time"
	TypeCustomList     = "Custom List"
	TypeFixedText      = "Fixed Length Text"
	TypeWords          = "Words"
	TypeSentences      = "Sentences"
	TypeParagraph      = "Paragraph"
	TypeReference      = "Reference"
	TypeAIGenerated    = "AI Generated"
	OptionSourceField  = "sourceField"
	PhoneCustomFormat  = "custom"
	PhoneDigitSentinel = "#"
)

var dateFormats = []string{
	string(types.DateISO),
	string(types.DateUS),
	string(types.DateEU),
	string(types.DateRFC3339),
}

var phoneFormats = []string{"###-###-####", "(###) ###-####", "+1 ### ### ####", PhoneCustomFormat}

// Registry is the immutable catalog of field types.
type Registry struct {
	defs  []types.FieldTypeDefinition
	index map[string]int
}

var defaultRegistry = build(catalog())

// Default returns the process-wide catalog.
func Default() *Registry {
	return defaultRegistry
}

func build(defs []types.FieldTypeDefinition) *Registry {
	r := &Registry{defs: defs, index: make(map[string]int, len(defs))}
	for i, d := range defs {
		r.index[strings.ToLower(d.Name)] = i
	}
	return r
}

// Lookup finds a type by name, case-insensitively. The returned definition
// is a copy; callers cannot mutate the catalog.
func (r *Registry) Lookup(name string) (types.FieldTypeDefinition, bool) {
	i, ok := r.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return types.FieldTypeDefinition{}, false
	}
	return clone(r.defs[i]), true
}

// Types lists every definition in catalog order.
func (r *Registry) Types() []types.FieldTypeDefinition {
	out := make([]types.FieldTypeDefinition, len(r.defs))
	for i, d := range r.defs {
		out[i] = clone(d)
	}
	return out
}

// Names lists the type names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for _, d := range r.defs {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns the declared default of every option of a type. Unknown
// types yield an empty map rather than an error.
func (r *Registry) Defaults(name string) map[string]any {
	out := map[string]any{}
	def, ok := r.Lookup(name)
	if !ok {
		return out
	}
	for _, opt := range def.Options {
		out[opt.Name] = opt.Default
	}
	return out
}

// Canonical returns the catalog spelling of a type name.
func (r *Registry) Canonical(name string) (string, bool) {
	def, ok := r.Lookup(name)
	return def.Name, ok
}

func clone(d types.FieldTypeDefinition) types.FieldTypeDefinition {
	opts := make([]types.TypeOption, len(d.Options))
	for i, o := range d.Options {
		if o.Choices != nil {
			o.Choices = append([]string(nil), o.Choices...)
		}
		opts[i] = o
	}
	d.Options = opts
	return d
}
