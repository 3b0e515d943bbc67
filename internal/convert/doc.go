// Package convert coerces values decoded from JSON source documents (and
// literals decoded from YAML mapping files) into the datatype declared for a
// staging column.
//
// Coercion is deterministic and fails closed: a value that cannot be read as
// the declared type without losing information is rejected with an error
// wrapping ErrNotCoercible. A nil value stays nil for every datatype.
//
// Result types per datatype:
//
//	string   -> string
//	int      -> int64
//	float    -> float64
//	decimal  -> decimal.Decimal
//	bool     -> bool
//	datetime -> time.Time (UTC)
package convert
