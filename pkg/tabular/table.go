// Package tabular converts opaque parsed-file payloads into column-oriented
// tables. It is the only package in the pipeline permitted to materialize
// raw data; everything downstream of the embedding creator operates on
// derived statistics and bounded samples.
package tabular

import (
	"encoding/json"
	"strconv"
)

// Table is a column-major view of a parsed file. Missing cells are nil.
type Table struct {
	columns []string
	data    map[string][]interface{}
	rows    int
}

// Columns returns the column names in first-seen order.
func (t *Table) Columns() []string {
	return t.columns
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.rows
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t == nil || t.rows == 0 || len(t.columns) == 0
}

// Column returns the values of the named column in natural order, nil if
// the column does not exist.
func (t *Table) Column(name string) []interface{} {
	return t.data[name]
}

// NonNull returns the non-nil values of the named column in natural order.
func (t *Table) NonNull(name string) []interface{} {
	col := t.data[name]
	out := make([]interface{}, 0, len(col))
	for _, v := range col {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// NullCount returns the number of nil cells in the named column.
func (t *Table) NullCount(name string) int {
	var n int
	for _, v := range t.data[name] {
		if v == nil {
			n++
		}
	}
	return n
}

// NumericColumn returns the numeric values of the named column in natural
// order, discarding nils and values that cannot be coerced.
func (t *Table) NumericColumn(name string) []float64 {
	col := t.data[name]
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if f, ok := ToFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

// AlignedNumericColumns returns the values of two columns at positions
// where both coerce to numeric, preserving natural order.
func (t *Table) AlignedNumericColumns(a, b string) ([]float64, []float64) {
	ca, cb := t.data[a], t.data[b]
	n := len(ca)
	if len(cb) < n {
		n = len(cb)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		x, okx := ToFloat(ca[i])
		y, oky := ToFloat(cb[i])
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

// IsNumeric reports whether every non-nil cell of the named column coerces
// to a numeric value, and at least one does.
func (t *Table) IsNumeric(name string) bool {
	var seen bool
	for _, v := range t.data[name] {
		if v == nil {
			continue
		}
		if _, ok := ToFloat(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// DType returns the dtype name of the named column, inferred from its
// non-nil values: int64, float64, bool, object or string. An all-nil or
// missing column is "object".
func (t *Table) DType(name string) string {
	var sawInt, sawFloat, sawBool, sawString, sawOther bool
	for _, v := range t.data[name] {
		switch val := v.(type) {
		case nil:
		case bool:
			sawBool = true
		case json.Number:
			if _, err := val.Int64(); err == nil {
				sawInt = true
			} else {
				sawFloat = true
			}
		case float64:
			if val == float64(int64(val)) {
				sawInt = true
			} else {
				sawFloat = true
			}
		case int, int64:
			sawInt = true
		case string:
			sawString = true
		default:
			sawOther = true
		}
	}
	switch {
	case sawOther:
		return "object"
	case sawString && (sawInt || sawFloat || sawBool):
		return "object"
	case sawString:
		return "string"
	case sawBool && (sawInt || sawFloat):
		return "object"
	case sawBool:
		return "bool"
	case sawFloat:
		return "float64"
	case sawInt:
		return "int64"
	default:
		return "object"
	}
}

// ToFloat coerces a cell value to float64. Strings are parsed leniently so
// that stringified samples survive a round trip through embedding records.
func ToFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
