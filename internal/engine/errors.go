package engine

import "fmt"

// DocumentError reports a document whose output was discarded.
type DocumentError struct {
	Table string
	// State is the stage the invocation failed in.
	State State
	// RowIndex is the failing row, or -1 when no row was being bound.
	RowIndex int
	// Context identifies the elements bound in the failing row.
	Context string
	Err     error
}

// Error implements error.
func (e *DocumentError) Error() string {
	if e.RowIndex < 0 {
		return fmt.Sprintf("table %s: document failed in state %s: %v", e.Table, e.State, e.Err)
	}

	return fmt.Sprintf("table %s: row %d (%s): %v", e.Table, e.RowIndex, e.Context, e.Err)
}

// Unwrap returns the underlying error.
func (e *DocumentError) Unwrap() error {
	return e.Err
}
