// Package sink writes engine output rows to their destination: CSV files,
// JSON lines or a PostgreSQL staging table.
package sink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"stage-mapper/internal/engine"
)

// Sink receives the rows of one table. Write may be called once per
// document; Close flushes buffered output.
type Sink interface {
	Write(ctx context.Context, columns []string, rows []engine.Row) error
	Close() error
}

// FormatValue renders a coerced value as text. Nil is the empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case decimal.Decimal:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(val)
	}
}
