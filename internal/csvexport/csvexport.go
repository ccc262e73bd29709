// Package csvexport renders row sets as downloadable CSV files.
package csvexport

import (
	"bytes"
	"database/sql/driver"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/JakeFAU/jobs-observatory/internal/apperr"
	"github.com/JakeFAU/jobs-observatory/internal/record"
)

// ContentType is sent with every export.
const ContentType = "text/csv"

// NoDataMessage is the plain-text body for empty exports.
const NoDataMessage = "no data"

// Kind names an export dataset.
type Kind string

// Export kinds and their attachment filenames.
const (
	KindStats Kind = "stats"
	KindD3    Kind = "d3"
)

// Filename returns the fixed attachment name for k.
func (k Kind) Filename() string {
	switch k {
	case KindD3:
		return "dataset_d3.csv"
	default:
		return "dataset.csv"
	}
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindStats, KindD3:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown export kind %q", s)
	}
}

// HeaderMode selects how the header row is derived.
type HeaderMode string

// Header modes.
const (
	// HeaderFirstRow uses the first row's columns; later extra columns are dropped.
	HeaderFirstRow HeaderMode = "first_row"
	// HeaderUnion uses every column seen, in first-seen order.
	HeaderUnion HeaderMode = "union"
)

// ParseHeaderMode validates a header mode; empty means HeaderFirstRow.
func ParseHeaderMode(s string) (HeaderMode, error) {
	switch HeaderMode(s) {
	case "", HeaderFirstRow:
		return HeaderFirstRow, nil
	case HeaderUnion:
		return HeaderUnion, nil
	default:
		return "", fmt.Errorf("unknown header mode %q", s)
	}
}

// Result is a rendered export.
type Result struct {
	Body        []byte
	Filename    string
	ContentType string
	Header      []string
	Rows        int
	// Dropped lists columns present in some row but left out of the header.
	Dropped []string
}

// ExportWith renders rows using the given header mode. An empty row set is a
// NoData error, never an empty file.
func ExportWith(rows []record.Row, kind Kind, mode HeaderMode) (Result, error) {
	if len(rows) == 0 {
		return Result{}, apperr.NoData(NoDataMessage)
	}
	header := rows[0].Columns()
	union := unionColumns(rows)
	if mode == HeaderUnion {
		header = union
	}
	dropped := missing(union, header)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return Result{}, apperr.Internal("write csv header", err)
	}
	line := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			v, _ := row.Get(col)
			line[i] = Cell(v)
		}
		if err := w.Write(line); err != nil {
			return Result{}, apperr.Internal("write csv row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return Result{}, apperr.Internal("flush csv", err)
	}
	return Result{
		Body:        buf.Bytes(),
		Filename:    kind.Filename(),
		ContentType: ContentType,
		Header:      header,
		Rows:        len(rows),
		Dropped:     dropped,
	}, nil
}

func unionColumns(rows []record.Row) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		for _, c := range r.Columns() {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func missing(all, header []string) []string {
	in := make(map[string]struct{}, len(header))
	for _, c := range header {
		in[c] = struct{}{}
	}
	var out []string
	for _, c := range all {
		if _, ok := in[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// Cell formats a stored value for a CSV cell.
func Cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return formatTime(val)
	case []string, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return ""
		}
		if _, again := dv.(driver.Valuer); again {
			return fmt.Sprint(dv)
		}
		return Cell(dv)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func formatTime(t time.Time) string {
	u := t.UTC()
	if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
