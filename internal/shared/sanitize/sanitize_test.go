package sanitize

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFloat(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	ok := 42.5

	require.Nil(t, Float(nil))
	require.Nil(t, Float(&nan))
	require.Nil(t, Float(&inf))
	require.Equal(t, &ok, Float(&ok))
}

func TestValue_NonFiniteFloats(t *testing.T) {
	require.Nil(t, Value(math.NaN()))
	require.Nil(t, Value(math.Inf(1)))
	require.Nil(t, Value(math.Inf(-1)))
	require.Nil(t, Value(float32(math.NaN())))
	require.Equal(t, 3.5, Value(3.5))
}

func TestValue_StringPlaceholders(t *testing.T) {
	require.Nil(t, Value(""))
	require.Nil(t, Value("nan"))
	require.Nil(t, Value("NaN"))
	require.Equal(t, "North", Value("North"))
}

func TestValue_BytesAndTime(t *testing.T) {
	require.Equal(t, "hello", Value([]byte("hello")))
	require.Nil(t, Value([]byte("")))

	ts := time.Date(2024, 12, 6, 10, 30, 0, 0, time.UTC)
	require.Equal(t, "2024-12-06T10:30:00Z", Value(ts))
}

func TestValue_PassThrough(t *testing.T) {
	require.Nil(t, Value(nil))
	require.Equal(t, int64(7), Value(int64(7)))
	require.Equal(t, true, Value(true))
}

func TestRecords_InPlace(t *testing.T) {
	rows := []map[string]interface{}{
		{"label": "a", "value": math.NaN()},
		{"label": []byte("b"), "value": 1.5},
	}
	got := Records(rows)
	require.Nil(t, got[0]["value"])
	require.Equal(t, "b", got[1]["label"])
	require.Equal(t, 1.5, got[1]["value"])
}
