package convert

// coerce.go converts loosely typed source values to column types.
//
// Source values come from two decoders:
//   - encoding/json with UseNumber: string, json.Number, bool, nil, map, slice
//   - gopkg.in/yaml.v3 into any: string, int, float64, bool, nil
//
// Go numeric kinds are accepted as well so callers can build documents by hand.

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotCoercible is wrapped by every coercion failure.
var ErrNotCoercible = errors.New("value not coercible")

// DatetimeLayouts are tried in order when a datetime column has no explicit format.
var DatetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Coerce converts v to dt. layout, when not empty, is the only Go time layout
// accepted for datetime strings.
func Coerce(v any, dt Datatype, layout string) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch dt {
	case String, "":
		return toString(v)
	case Int:
		return toInt(v)
	case Float:
		return toFloat(v)
	case Decimal:
		return toDecimal(v)
	case Bool:
		return toBool(v)
	case Datetime:
		return toDatetime(v, layout)
	default:
		return nil, fmt.Errorf("unknown datatype %q", dt)
	}
}

func notCoercible(v any, dt Datatype, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: %T %s to %s", ErrNotCoercible, v, preview(v), dt)
	}

	return fmt.Errorf("%w: %T %s to %s: %s", ErrNotCoercible, v, preview(v), dt, reason)
}

// preview renders a short quoted form of v for error messages.
func preview(v any) string {
	s := fmt.Sprint(v)
	if len(s) > 40 {
		s = s[:37] + "..."
	}

	return strconv.Quote(s)
}

func toString(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case decimal.Decimal:
		return val.String(), nil
	case time.Time:
		return val.Format(time.RFC3339Nano), nil
	}

	if i, ok := asInt64(v); ok {
		return strconv.FormatInt(i, 10), nil
	}

	return nil, notCoercible(v, String, "not a scalar")
}

func toInt(v any) (any, error) {
	if i, ok := asInt64(v); ok {
		return i, nil
	}

	switch val := v.(type) {
	case json.Number:
		return intFromText(val.String())
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, notCoercible(v, Int, "empty string")
		}

		return intFromText(s)
	case float64:
		return intFromFloat(val)
	case float32:
		return intFromFloat(float64(val))
	case decimal.Decimal:
		return intFromDecimal(val)
	}

	return nil, notCoercible(v, Int, "")
}

func intFromText(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}

	// "12.0" and "1e3" are still whole numbers.
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, notCoercible(s, Int, "not a number")
	}

	return intFromDecimal(d)
}

func intFromDecimal(d decimal.Decimal) (any, error) {
	if !d.IsInteger() {
		return nil, notCoercible(d, Int, "has a fractional part")
	}

	if d.LessThan(decimal.NewFromInt(math.MinInt64)) || d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return nil, notCoercible(d, Int, "out of int64 range")
	}

	return d.IntPart(), nil
}

func intFromFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil, notCoercible(f, Int, "has a fractional part")
	}

	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, notCoercible(f, Int, "out of int64 range")
	}

	return int64(f), nil
}

func toFloat(v any) (any, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, notCoercible(v, Float, err.Error())
		}

		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, notCoercible(v, Float, "not a number")
		}

		return f, nil
	case decimal.Decimal:
		return val.InexactFloat64(), nil
	}

	if i, ok := asInt64(v); ok {
		return float64(i), nil
	}

	return nil, notCoercible(v, Float, "")
}

func toDecimal(v any) (any, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return nil, notCoercible(v, Decimal, "not a number")
		}

		return d, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return nil, notCoercible(v, Decimal, "not a number")
		}

		return d, nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, notCoercible(v, Decimal, "not finite")
		}

		return decimal.NewFromFloat(val), nil
	case float32:
		return decimal.NewFromFloat32(val), nil
	}

	if i, ok := asInt64(v); ok {
		return decimal.NewFromInt(i), nil
	}

	return nil, notCoercible(v, Decimal, "")
}

func toBool(v any) (any, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		if err != nil {
			return nil, notCoercible(v, Bool, "not a boolean")
		}

		return b, nil
	}

	return nil, notCoercible(v, Bool, "")
}

func toDatetime(v any, layout string) (any, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case string:
		s := strings.TrimSpace(val)
		if layout != "" {
			t, err := time.Parse(layout, s)
			if err != nil {
				return nil, notCoercible(v, Datetime, "does not match layout "+strconv.Quote(layout))
			}

			return t.UTC(), nil
		}

		for _, l := range DatetimeLayouts {
			if t, err := time.Parse(l, s); err == nil {
				return t.UTC(), nil
			}
		}

		return nil, notCoercible(v, Datetime, "unrecognized timestamp")
	}

	return nil, notCoercible(v, Datetime, "")
}

// asInt64 reports v as an int64 when it is a Go integer kind that fits.
func asInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint:
		if uint64(val) <= math.MaxInt64 {
			return int64(val), true
		}
	case uint64:
		if val <= math.MaxInt64 {
			return int64(val), true
		}
	}

	return 0, false
}
