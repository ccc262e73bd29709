// Package record holds the row type returned by the storage layer.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Row is an ordered column -> value record. The column set is fixed by the
// query that produced it; Set on an unknown column appends it.
type Row struct {
	cols []string
	vals map[string]any
}

// New returns an empty Row with room for n columns.
func New(n int) Row {
	return Row{
		cols: make([]string, 0, n),
		vals: make(map[string]any, n),
	}
}

// FromPairs builds a Row from alternating column/value arguments. It panics
// on an odd count or a non-string column; it exists for tests and fixtures.
func FromPairs(kv ...any) Row {
	if len(kv)%2 != 0 {
		panic("record: odd number of arguments to FromPairs")
	}
	r := New(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		col, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("record: column %v is not a string", kv[i]))
		}
		r.Set(col, kv[i+1])
	}
	return r
}

// Set stores v under col, keeping the original position of existing columns.
func (r *Row) Set(col string, v any) {
	if r.vals == nil {
		r.vals = make(map[string]any)
	}
	if _, ok := r.vals[col]; !ok {
		r.cols = append(r.cols, col)
	}
	r.vals[col] = v
}

// Get returns the value stored under col.
func (r Row) Get(col string) (any, bool) {
	v, ok := r.vals[col]
	return v, ok
}

// Columns returns the column names in insertion order.
func (r Row) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Len returns the number of columns.
func (r Row) Len() int {
	return len(r.cols)
}

// Clone returns a shallow copy that can be modified independently.
func (r Row) Clone() Row {
	out := New(len(r.cols))
	for _, c := range r.cols {
		out.Set(c, r.vals[c])
	}
	return out
}

// MarshalJSON encodes the row as a JSON object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", c, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(jsonValue(r.vals[c]))
		if err != nil {
			return nil, fmt.Errorf("marshal value of %q: %w", c, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue maps values JSON cannot represent onto null. pgx decodes
// double precision NaN and Infinity as non-finite floats.
func jsonValue(v any) any {
	switch f := v.(type) {
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil
		}
	}
	return v
}
