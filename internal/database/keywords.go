package database

import "strings"

// keywords are words reserved by at least one of Postgres, MySQL or SQLite
// that are likely to show up as column or table names.
var keywords = toSet(`
	add all alter analyse analyze and any array as asc asymmetric authorization
	between binary both by case cast check collate column constraint create cross
	current_date current_role current_time current_timestamp current_user database
	default delete desc distinct div do drop else end except exists false fetch
	for foreign from full grant group having if in index inner insert intersect
	interval into is join key keys leading left like limit localtime
	localtimestamp match mod natural not null of offset on only or order outer
	over partition placing primary range read references regexp rename replace
	returning right row rows schema select session_user set some symmetric table
	then to trailing true union unique update usage user using values when where
	window with write xor
`)

func toSet(words string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(words) {
		out[w] = struct{}{}
	}
	return out
}

// IsKeyword reports whether name is a reserved SQL word, ignoring case.
func IsKeyword(name string) bool {
	_, ok := keywords[strings.ToLower(name)]
	return ok
}

// QuoteIdent quotes a plain identifier that collides with a keyword, using
// backticks for MySQL and double quotes elsewhere. Other names pass through.
func QuoteIdent(provider, name string) string {
	if !IsKeyword(name) {
		return name
	}
	if Normalize(provider) == MySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
