package bind

import (
	"fmt"

	"stage-mapper/internal/convert"
)

// CoercionError reports a value that cannot be converted to its column datatype.
type CoercionError struct {
	Table    string
	Column   string
	Datatype convert.Datatype
	Value    any
	Err      error
}

// Error implements error.
func (e *CoercionError) Error() string {
	return fmt.Sprintf("table %s column %s: cannot coerce to %s: %v", e.Table, e.Column, e.Datatype, e.Err)
}

// Unwrap returns the underlying conversion error.
func (e *CoercionError) Unwrap() error {
	return e.Err
}
