package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNilStaysNil(t *testing.T) {
	for _, dt := range Datatypes {
		t.Run(string(dt), func(t *testing.T) {
			v, err := Coerce(nil, dt, "")
			require.NoError(t, err)
			assert.Nil(t, v)
		})
	}
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected string
	}{
		{"string", "ABC", "ABC"},
		{"json number", json.Number("12.50"), "12.50"},
		{"yaml int", 7, "7"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.in, String, "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}

	_, err := Coerce(map[string]any{"a": 1}, String, "")
	require.ErrorIs(t, err, ErrNotCoercible)

	_, err = Coerce([]any{"a"}, String, "")
	require.ErrorIs(t, err, ErrNotCoercible)
}

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected int64
	}{
		{"yaml int", 1, 1},
		{"json number", json.Number("42"), 42},
		{"json number with zero fraction", json.Number("42.0"), 42},
		{"exponent", json.Number("1e3"), 1000},
		{"numeric string", " 17 ", 17},
		{"whole float", 3.0, 3},
		{"negative", json.Number("-5"), -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Coerce(tt.in, Int, "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestCoerceIntFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"fraction", json.Number("1.5")},
		{"float fraction", 2.25},
		{"word", "twelve"},
		{"empty", ""},
		{"bool", true},
		{"overflow", json.Number("9223372036854775808")},
		{"object", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.in, Int, "")
			require.ErrorIs(t, err, ErrNotCoercible)
		})
	}
}

func TestCoerceDatetime(t *testing.T) {
	want := time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)

	v, err := Coerce("2024-03-09T10:30:00Z", Datetime, "")
	require.NoError(t, err)
	assert.Equal(t, want, v)

	v, err = Coerce("2024-03-09 10:30:00", Datetime, "")
	require.NoError(t, err)
	assert.Equal(t, want, v)

	v, err = Coerce("2024-03-09", Datetime, "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), v)

	v, err = Coerce("03/09/2024", Datetime, "01/02/2006")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), v)

	_, err = Coerce("2024-03-09", Datetime, "01/02/2006")
	require.ErrorIs(t, err, ErrNotCoercible)

	_, err = Coerce(json.Number("1710000000"), Datetime, "")
	require.ErrorIs(t, err, ErrNotCoercible)

	_, err = Coerce("yesterday", Datetime, "")
	require.ErrorIs(t, err, ErrNotCoercible)
}

func TestCoerceDecimalFloatBool(t *testing.T) {
	v, err := Coerce(json.Number("1234.56"), Decimal, "")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(v.(decimal.Decimal)))

	v, err = Coerce(10, Decimal, "")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(v.(decimal.Decimal)))

	_, err = Coerce("12,50", Decimal, "")
	require.ErrorIs(t, err, ErrNotCoercible)

	v, err = Coerce(json.Number("0.25"), Float, "")
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-12)

	v, err = Coerce("true", Bool, "")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = Coerce(json.Number("1"), Bool, "")
	require.ErrorIs(t, err, ErrNotCoercible)
}

func TestParseDatatype(t *testing.T) {
	dt, err := ParseDatatype("")
	require.NoError(t, err)
	assert.Equal(t, String, dt)

	dt, err = ParseDatatype(" INT ")
	require.NoError(t, err)
	assert.Equal(t, Int, dt)

	_, err = ParseDatatype("integer")
	require.Error(t, err)
}
