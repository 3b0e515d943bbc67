package expand

import (
	"fmt"
	"strings"

	"stage-mapper/internal/plan"
)

// Binding is the element an axis is bound to in one row.
type Binding struct {
	// Axis is the axis name.
	Axis string
	// Element is the bound array element. It is meaningful only when Present.
	Element any
	// Index is the element position in its source array.
	Index int
	// Present is false for a null binding: the array was empty or absent, or
	// a join found no match.
	Present bool
}

// RowContext holds one binding per plan axis, indexed by Axis.Index.
type RowContext struct {
	Bindings []Binding
}

func newContext(p *plan.Plan) RowContext {
	b := make([]Binding, len(p.Axes))
	for i, a := range p.Axes {
		b[i].Axis = a.Name
	}

	return RowContext{Bindings: b}
}

// Get returns the binding of an axis.
func (c RowContext) Get(a *plan.Axis) Binding {
	return c.Bindings[a.Index]
}

func (c RowContext) clone() RowContext {
	b := make([]Binding, len(c.Bindings))
	copy(b, c.Bindings)

	return RowContext{Bindings: b}
}

// String identifies the row by the element index bound on each axis,
// e.g. "policy.vehicleList[1] policy.registrantList[null]".
func (c RowContext) String() string {
	if len(c.Bindings) == 0 {
		return "root"
	}

	parts := make([]string, len(c.Bindings))

	for i, b := range c.Bindings {
		name := strings.TrimSuffix(b.Axis, "[]")
		if b.Present {
			parts[i] = fmt.Sprintf("%s[%d]", name, b.Index)
		} else {
			parts[i] = name + "[null]"
		}
	}

	return strings.Join(parts, " ")
}
