// Package resolve evaluates mapping paths against decoded JSON documents.
//
// A document is whatever encoding/json produces with UseNumber: map[string]any,
// []any, string, json.Number, bool and nil. Resolution never fails; anything
// that cannot be followed is Absent.
package resolve

import (
	"stage-mapper/internal/common"
	"stage-mapper/internal/mapping"
)

// Kind classifies a resolution result.
type Kind int

const (
	// Absent means the path does not lead to a value, or leads to JSON null.
	Absent Kind = iota
	// Scalar is a single value at the end of the path.
	Scalar
	// Sequence is an expanded array; see Result.Bindings.
	Sequence
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	default:
		return common.UnknownStr
	}
}

// Binding is one element of an expanded array.
type Binding struct {
	// Element is the array element.
	Element any
	// Index is the element position in the source array.
	Index int
	// Rest is the part of the path that follows the expansion marker.
	Rest mapping.FieldPath
}

// Result is the outcome of Resolve.
type Result struct {
	Kind Kind
	// Value is set for Scalar.
	Value any
	// Bindings is set for Sequence. It is empty for an empty array.
	Bindings []Binding
}

// Resolve follows path from value. It stops at the first expansion marker and
// returns one Binding per array element; resolving the rest of the path
// against each element is left to the caller.
func Resolve(value any, path mapping.FieldPath) Result {
	cur := value

	for i, seg := range path.Segments {
		obj, ok := cur.(map[string]any)
		if !ok {
			return Result{Kind: Absent}
		}

		next, ok := obj[seg.Name]
		if !ok {
			return Result{Kind: Absent}
		}

		if seg.IsSlice {
			arr, ok := next.([]any)
			if !ok {
				return Result{Kind: Absent}
			}

			rest := path.Slice(i+1, len(path.Segments))
			bindings := make([]Binding, len(arr))

			for j, el := range arr {
				bindings[j] = Binding{Element: el, Index: j, Rest: rest}
			}

			return Result{Kind: Sequence, Bindings: bindings}
		}

		cur = next
	}

	if cur == nil {
		return Result{Kind: Absent}
	}

	return Result{Kind: Scalar, Value: cur}
}
