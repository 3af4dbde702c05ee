package analytics

import (
	"strconv"
	"strings"
	"time"
)

// Palette is the fixed cyclic color set for categorical distributions.
// Colors are assigned by rank, so identical inputs always color the same.
var Palette = []string{
	"#3b82f6", "#f97316", "#10b981", "#ec4899",
	"#f59e0b", "#8b5cf6", "#06b6d4", "#ef4444",
}

// ColorAt returns the palette color for a rank, wrapping around.
func ColorAt(rank int) string {
	return Palette[rank%len(Palette)]
}

var chartTypes = map[string]bool{
	"line":      true,
	"bar":       true,
	"pie":       true,
	"area":      true,
	"scatter":   true,
	"histogram": true,
}

// NormalizeChartType lower-cases the requested type and falls back to bar
// for anything unrecognized.
func NormalizeChartType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if !chartTypes[t] {
		return "bar"
	}
	return t
}

// CoerceNumeric converts the value column of each row to float64, dropping
// rows whose value cannot be coerced. Row order is preserved.
func CoerceNumeric(rows []map[string]interface{}, key string) []map[string]interface{} {
	out := rows[:0]
	for _, row := range rows {
		v, ok := ToFloat64(row[key])
		if !ok {
			continue
		}
		row[key] = v
		out = append(out, row)
	}
	return out
}

// ToFloat64 converts common driver scalar types to float64.
func ToFloat64(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case []byte:
		return parseFloat(string(v))
	case string:
		return parseFloat(v)
	default:
		return 0, false
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MonthLabel reformats a YYYY-MM bucket into the short human form used by
// the dashboard ("2024-01" -> "Jan 2024"). Unparseable input passes through.
func MonthLabel(month string) string {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("Jan 2006")
}
