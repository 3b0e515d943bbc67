package plan

import (
	"stage-mapper/internal/common"
	"stage-mapper/internal/diagnostic"
	"stage-mapper/internal/mapping"
)

// Plan is the result of axis discovery for one table mapping.
// It is read-only once returned by Discover.
type Plan struct {
	// Table is the target staging table name.
	Table string
	// Mapping is the compiled mapping the plan was built from.
	Mapping *mapping.TableMapping
	// Axes lists every axis in order of first appearance. Axis.Index is the
	// position in this slice.
	Axes []*Axis
	// Components are the independent groups of top-level axes, in order of
	// first appearance. Rows are the cross-product of the components.
	Components []Component
	// Bindings holds one entry per field, in column order.
	Bindings []FieldBinding
	// Diagnostics contains warnings from discovery, such as inferred joins.
	Diagnostics diagnostic.Diagnostics
}

// Axis is a distinct array-bearing path prefix referenced by the mapping.
type Axis struct {
	// Name is the full prefix, e.g. "policy.vehicleList[]".
	Name string
	// Index is the position of the axis in Plan.Axes.
	Index int
	// Path is the prefix from the document root.
	Path mapping.FieldPath
	// Rel is the prefix relative to the parent axis element, or Path for a
	// top-level axis.
	Rel mapping.FieldPath
	// Parent is the enclosing axis, nil for top-level axes.
	Parent *Axis
	// Children are the axes nested in this axis's elements.
	Children []*Axis
	// Fields are the columns bound directly to this axis.
	Fields []string
}

// IsTopLevel reports whether the axis is not nested in another axis.
func (a *Axis) IsTopLevel() bool {
	return a.Parent == nil
}

// FieldBinding ties a field to the axis its value is read from.
type FieldBinding struct {
	Field mapping.FieldSpec
	// Axis is nil for root scalars, literals and computed fields.
	Axis *Axis
	// Rest is the path below the axis element, or the full path when Axis is nil.
	Rest mapping.FieldPath
}

// JoinOrigin tells whether a join was declared or inferred.
type JoinOrigin int

const (
	// JoinDeclared comes from the mapping's joins section.
	JoinDeclared JoinOrigin = iota
	// JoinInferred was derived from a shared identifier name.
	JoinInferred
)

// String returns a human-readable origin name.
func (o JoinOrigin) String() string {
	switch o {
	case JoinDeclared:
		return "declared"
	case JoinInferred:
		return "inferred"
	default:
		return common.UnknownStr
	}
}

// Join correlates elements of two top-level axes by key equality.
type Join struct {
	// Left is the driving side.
	Left *Axis
	// Right is the correlated side.
	Right    *Axis
	LeftKey  mapping.FieldPath
	RightKey mapping.FieldPath
	Type     mapping.JoinType
	Ties     mapping.TiesPolicy
	Origin   JoinOrigin
}

// Component is a tree of top-level axes connected by joins.
type Component struct {
	// Driver is the axis with no incoming join.
	Driver *Axis
	// Joins are ordered so that every join's Left is the driver or the Right
	// of an earlier join.
	Joins []Join
}

// Axes returns the driver followed by every joined axis, in join order.
func (c Component) Axes() []*Axis {
	out := make([]*Axis, 0, len(c.Joins)+1)
	out = append(out, c.Driver)

	for _, j := range c.Joins {
		out = append(out, j.Right)
	}

	return out
}

// Axis returns the axis with the given name, or nil.
func (p *Plan) Axis(name string) *Axis {
	for _, a := range p.Axes {
		if a.Name == name {
			return a
		}
	}

	return nil
}

// Columns returns the output column names in order.
func (p *Plan) Columns() []string {
	return p.Mapping.Columns()
}

// Joins returns every join of every component.
func (p *Plan) Joins() []Join {
	var out []Join
	for _, c := range p.Components {
		out = append(out, c.Joins...)
	}

	return out
}
