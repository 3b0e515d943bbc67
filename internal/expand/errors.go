package expand

import (
	"fmt"
	"strconv"
	"strings"
)

// CorrelationAmbiguityError reports a join element with several matches when
// the join's ties policy is "error".
type CorrelationAmbiguityError struct {
	Table string
	// Left is the driving axis and LeftIndex the element that matched.
	Left      string
	LeftIndex int
	// Right is the correlated axis and Matches the matching element indexes.
	Right   string
	Matches []int
	// Key is the canonical key text.
	Key string
}

// Error implements error.
func (e *CorrelationAmbiguityError) Error() string {
	idx := make([]string, len(e.Matches))
	for i, m := range e.Matches {
		idx[i] = strconv.Itoa(m)
	}

	return fmt.Sprintf("table %s: %s[%d] key %q matches %d elements of %s (indexes %s)",
		e.Table, strings.TrimSuffix(e.Left, "[]"), e.LeftIndex, e.Key, len(e.Matches), e.Right,
		strings.Join(idx, ", "))
}
