package dataset

import (
	"github.com/JakeFAU/jobs-observatory/internal/apperr"
	"github.com/JakeFAU/jobs-observatory/internal/normalize"
	"github.com/JakeFAU/jobs-observatory/internal/record"
)

// NotFoundMessage is the error text returned for unknown entity ids.
const NotFoundMessage = "Not found"

// Collection shapes pre-ordered rows into a collection body: list fields are
// normalized when any are given, and the result never holds more than limit
// rows. The returned slice is never nil so it encodes as [] when empty.
func Collection(rows []record.Row, listFields []string, limit int) []record.Row {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	if len(listFields) > 0 {
		return normalize.Rows(rows, listFields)
	}
	out := make([]record.Row, len(rows))
	copy(out, rows)
	return out
}

// Entity returns row verbatim when found, or a NotFound error.
func Entity(row record.Row, found bool) (record.Row, error) {
	if !found {
		return record.Row{}, apperr.NotFound(NotFoundMessage)
	}
	return row, nil
}
