package sanitize

import (
	"math"
	"strings"
	"time"
)

// Aggregate results may legitimately contain NaN or Inf (averages over zero
// rows, divisions by zero baked into the dataset). Those values are not
// representable in JSON, so every output path funnels rows through here and
// replaces them with null before serialization.

// Float returns nil when the value is NaN or infinite.
func Float(v *float64) *float64 {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

// Value normalizes a single scalar for transport-safe JSON encoding.
// NaN/Inf floats, empty strings and "nan" placeholders become nil.
func Value(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil
		}
		return t
	case float32:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case string:
		if t == "" || strings.EqualFold(t, "nan") {
			return nil
		}
		return t
	case []byte:
		return Value(string(t))
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return v
	}
}

// Record sanitizes every value of a row in place and returns it.
func Record(row map[string]interface{}) map[string]interface{} {
	for k, v := range row {
		row[k] = Value(v)
	}
	return row
}

// Records sanitizes a slice of rows in place and returns it.
func Records(rows []map[string]interface{}) []map[string]interface{} {
	for _, row := range rows {
		Record(row)
	}
	return rows
}
