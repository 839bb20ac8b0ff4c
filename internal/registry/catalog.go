package registry

import "github.com/Rana718/seedforge/internal/types"

func bound(v float64) *float64 { return &v }

func number(name, label string, def float64) types.TypeOption {
	return types.TypeOption{Name: name, Label: label, Kind: types.OptionNumber, Default: def}
}

func positive(name, label string, def float64) types.TypeOption {
	o := number(name, label, def)
	o.Min = bound(1)
	return o
}

func text(name, label, def string) types.TypeOption {
	return types.TypeOption{Name: name, Label: label, Kind: types.OptionText, Default: def}
}

func choice(name, label, def string, choices []string) types.TypeOption {
	return types.TypeOption{Name: name, Label: label, Kind: types.OptionSelect, Default: def, Choices: choices}
}

func dateFormat() types.TypeOption {
	return choice("format", "Format", string(types.DateISO), dateFormats)
}

func plain(name, provider, category string) types.FieldTypeDefinition {
	return types.FieldTypeDefinition{Name: name, Provider: provider, Category: category, Options: []types.TypeOption{}}
}

func catalog() []types.FieldTypeDefinition {
	return []types.FieldTypeDefinition{
		{Name: TypeBlank, Category: "Basic", Description: "Always empty", Options: []types.TypeOption{}},
		{Name: TypeRowNumber, Provider: "row.number", Category: "Basic", Options: []types.TypeOption{
			number("start", "Start at", 1),
		}},
		{Name: TypeNumber, Provider: "number.integer", Category: "Basic", Options: []types.TypeOption{
			number("min", "Min", 1),
			number("max", "Max", 1000),
		}},
		{Name: TypeDecimal, Provider: "number.decimal", Category: "Basic", Options: []types.TypeOption{
			number("min", "Min", 0),
			number("max", "Max", 1000),
			{Name: "decimals", Label: "Decimals", Kind: types.OptionNumber, Default: float64(2), Min: bound(0), Max: bound(10)},
			{Name: "multipleOf", Label: "Multiple of", Kind: types.OptionNumber, Default: float64(0), Min: bound(0)},
		}},
		{Name: TypeYear, Provider: "number.year", Category: "Basic", Options: []types.TypeOption{
			number("min", "From year", 1970),
			number("max", "To year", 2030),
		}},
		plain(TypeBoolean, "boolean", "Basic"),
		plain(TypeFirstName, "person.first_name", "Personal"),
		plain(TypeLastName, "person.last_name", "Personal"),
		plain(TypeFullName, "person.full_name", "Personal"),
		{Name: TypeEmail, Provider: "internet.email", Category: "Personal", Options: []types.TypeOption{
			text("domain", "Domain", ""),
		}},
		plain(TypeUsername, "internet.username", "Personal"),
		{Name: TypePhone, Provider: "phone.number", Category: "Personal", Options: []types.TypeOption{
			choice("format", "Format", phoneFormats[0], phoneFormats),
			text("customFormat", "Custom format (# = digit)", ""),
		}},
		plain(TypeStreetAddress, "address.street", "Location"),
		plain(TypeCity, "address.city", "Location"),
		plain(TypeState, "address.state", "Location"),
		plain(TypeCountry, "address.country", "Location"),
		plain(TypePostalCode, "address.postal_code", "Location"),
		plain(TypeCompany, "company.name", "Business"),
		plain(TypeJobTitle, "company.job_title", "Business"),
		plain(TypeURL, "internet.url", "Technical"),
		plain(TypeIPAddress, "internet.ipv4", "Technical"),
		plain(TypeUUID, "misc.uuid", "Technical"),
		plain(TypeHexColor, "misc.hex_color", "Technical"),
		plain(TypeCurrency, "misc.currency", "Business"),
		{Name: TypeDate, Provider: "date.range", Category: "Date", Options: []types.TypeOption{
			text("from", "From", "2020-01-01"),
			text("to", "To", "2025-12-31"),
			dateFormat(),
		}},
		{Name: TypeFutureDate, Provider: "date.future", Category: "Date", Options: []types.TypeOption{
			text("from", "From (default today)", ""),
			text("to", "To (default one year ahead)", ""),
			dateFormat(),
		}},
		{Name: TypePastDate, Provider: "date.past", Category: "Date", Options: []types.TypeOption{
			text("from", "From (default one year ago)", ""),
			text("to", "To (default today)", ""),
			dateFormat(),
		}},
		{Name: TypeDateOfBirth, Provider: "date.birth", Category: "Date", Options: []types.TypeOption{
			number("minAge", "Min age", 18),
			number("maxAge", "Max age", 80),
			dateFormat(),
		}},
		{Name: TypeTime, Provider: "time.of_day", Category: "Date", Options: []types.TypeOption{
			choice("format", "Clock", "24h", []string{"24h", "12h"}),
		}},
		{Name: TypeCustomList, Provider: "list.custom", Category: "Basic", Options: []types.TypeOption{
			text("values", "Values (comma separated)", "Option A, Option B, Option C"),
		}},
		{Name: TypeFixedText, Provider: "text.fixed", Category: "Text", Options: []types.TypeOption{
			positive("length", "Length", 8),
			choice("charset", "Characters", "alphanumeric", []string{"alphanumeric", "letters", "digits", "hex"}),
		}},
		{Name: TypeWords, Provider: "lorem.words", Category: "Text", Options: []types.TypeOption{
			positive("count", "Words", 3),
		}},
		{Name: TypeSentences, Provider: "lorem.sentences", Category: "Text", Options: []types.TypeOption{
			positive("count", "Sentences", 1),
		}},
		{Name: TypeParagraph, Provider: "lorem.paragraph", Category: "Text", Options: []types.TypeOption{
			positive("sentences", "Sentences", 3),
		}},
		{Name: TypeReference, Provider: "reference", Category: "Relational", Description: "Reuses values generated for another field", Options: []types.TypeOption{
			text(OptionSourceField, "Source field", ""),
		}},
		{Name: TypeAIGenerated, Provider: "ai.overlay", Category: "AI", Description: "Filled by the AI enhancement service", Options: []types.TypeOption{
			text("hint", "Hint", ""),
		}},
	}
}
