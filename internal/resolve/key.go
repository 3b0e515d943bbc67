package resolve

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// KeyText returns the canonical text of a join key. Numbers are normalised
// ("12", "12.0" and 1.2e1 give "12") and strings are used as they are, so a
// numeric key matches its quoted form. Objects, arrays and null are not keys.
func KeyText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d.String(), true
		}

		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	case float64:
		return decimal.NewFromFloat(val).String(), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	default:
		return "", false
	}
}
