package engine

import (
	"errors"
	"fmt"
)

//go:generate go tool stringer -type=State -linecomment -output=state_string.go

// State is the stage an engine invocation has reached. Invocations only move
// forward; Failed is reachable from every state except Done.
type State int

const (
	StateIdle           State = iota // idle
	StateAxesDiscovered              // axes_discovered
	StateRowsExpanded                // rows_expanded
	StateBinding                     // binding
	StateDone                        // done
	StateFailed                      // failed
)

// ErrInvalidTransition is returned when an invocation would move backwards.
var ErrInvalidTransition = errors.New("invalid engine state transition")

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

func checkTransition(from, to State) error {
	if from.Terminal() || to <= from {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if to != StateFailed && to != from+1 {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	return nil
}
