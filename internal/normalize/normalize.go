// Package normalize turns stored list encodings into plain string sequences.
//
// Listing columns such as technical_skills arrive from the store in several
// shapes: native arrays, Postgres array literals ({A,B}), Python list reprs
// (['A', 'B']) or NULL. List collapses all of them into []string.
package normalize

import (
	"strings"

	"github.com/JakeFAU/jobs-observatory/internal/record"
)

// wrapping characters removed anywhere in an encoded list.
var stripper = strings.NewReplacer(
	"{", "",
	"}", "",
	"[", "",
	"]", "",
	"'", "",
	`"`, "",
)

// List converts v to an ordered sequence of non-empty trimmed strings.
// Structured sequences are returned unchanged; unsupported types yield an
// empty, non-nil slice.
func List(v any) any {
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		return val
	case []any:
		return val
	case string:
		return splitEncoded(val)
	default:
		return []string{}
	}
}

func splitEncoded(s string) []string {
	s = stripper.Replace(s)
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Row returns a copy of row where every column named in fields holds a
// normalized list. Columns in fields that the row lacks are added as empty
// lists; all other columns are passed through as-is.
func Row(row record.Row, fields []string) record.Row {
	if len(fields) == 0 {
		return row
	}
	out := row.Clone()
	for _, f := range fields {
		v, _ := out.Get(f)
		out.Set(f, List(v))
	}
	return out
}

// Rows applies Row to every element of rows.
func Rows(rows []record.Row, fields []string) []record.Row {
	out := make([]record.Row, len(rows))
	for i, r := range rows {
		out[i] = Row(r, fields)
	}
	return out
}
