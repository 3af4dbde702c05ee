package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestColorAt_WrapsAround(t *testing.T) {
	require.Equal(t, Palette[0], ColorAt(0))
	require.Equal(t, Palette[7], ColorAt(7))
	require.Equal(t, Palette[0], ColorAt(8))
	require.Equal(t, Palette[3], ColorAt(11))
}

func TestNormalizeChartType(t *testing.T) {
	require.Equal(t, "line", NormalizeChartType("line"))
	require.Equal(t, "pie", NormalizeChartType(" PIE "))
	require.Equal(t, "bar", NormalizeChartType("donut"))
	require.Equal(t, "bar", NormalizeChartType(""))
}

func TestCoerceNumeric_DropsUncoercibleRows(t *testing.T) {
	rows := []map[string]interface{}{
		{"x": "a", "y": "12.5"},
		{"x": "b", "y": "not a number"},
		{"x": "c", "y": int64(3)},
		{"x": "d", "y": nil},
	}
	got := CoerceNumeric(rows, "y")
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0]["x"])
	require.Equal(t, 12.5, got[0]["y"])
	require.Equal(t, "c", got[1]["x"])
	require.Equal(t, 3.0, got[1]["y"])
}

func TestToFloat64(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{1.25, 1.25, true},
		{float32(2), 2, true},
		{int(3), 3, true},
		{int32(4), 4, true},
		{int64(5), 5, true},
		{[]byte(" 6.5 "), 6.5, true},
		{"7", 7, true},
		{"abc", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := ToFloat64(c.in)
		require.Equal(t, c.ok, ok, "%v", c.in)
		if ok {
			require.Equal(t, c.want, got, "%v", c.in)
		}
	}
}

func TestMonthLabel(t *testing.T) {
	require.Equal(t, "Jan 2024", MonthLabel("2024-01"))
	require.Equal(t, "Dec 2023", MonthLabel("2023-12"))
	require.Equal(t, "garbage", MonthLabel("garbage"))
}
