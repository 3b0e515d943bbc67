package plan

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"stage-mapper/internal/diagnostic"
	"stage-mapper/internal/mapping"
)

// Discover builds the plan of a compiled table mapping. Problems with the
// declared joins are returned as a *mapping.ConfigurationError.
func Discover(tm *mapping.TableMapping) (*Plan, error) {
	if tm == nil {
		return nil, errors.New("table mapping is nil")
	}

	d := &discoverer{
		plan: &Plan{
			Table:    tm.Table,
			Mapping:  tm,
			Bindings: make([]FieldBinding, 0, len(tm.Fields)),
		},
		byName: map[string]*Axis{},
		diag:   &diagnostic.Diagnostics{},
	}

	for _, f := range tm.Fields {
		d.plan.Bindings = append(d.plan.Bindings, d.bindField(f))
	}

	d.graph = newJoinGraph(len(d.plan.Axes))

	for i := range tm.Joins {
		d.declare(i, &tm.Joins[i])
	}

	if d.diag.HasErrors() {
		return nil, &mapping.ConfigurationError{Table: tm.Table, Diagnostics: *d.diag}
	}

	if tm.Options.InferJoins {
		d.infer()
	}

	d.buildComponents()

	d.plan.Diagnostics = *d.diag

	return d.plan, nil
}

type discoverer struct {
	plan   *Plan
	byName map[string]*Axis
	graph  *joinGraph
	diag   *diagnostic.Diagnostics
}

// bindField registers the axes crossed by a path lookup and binds the field
// to the deepest one.
func (d *discoverer) bindField(f mapping.FieldSpec) FieldBinding {
	lookup, ok := f.Source.(mapping.PathLookup)
	if !ok {
		return FieldBinding{Field: f}
	}

	path := lookup.Path

	var parent *Axis

	last := -1

	for _, i := range path.Expansions() {
		prefix := path.Slice(0, i+1)
		name := prefix.String()

		axis := d.byName[name]
		if axis == nil {
			axis = &Axis{
				Name:   name,
				Index:  len(d.plan.Axes),
				Path:   prefix,
				Rel:    path.Slice(last+1, i+1),
				Parent: parent,
			}

			d.plan.Axes = append(d.plan.Axes, axis)
			d.byName[name] = axis

			if parent != nil {
				parent.Children = append(parent.Children, axis)
			}
		}

		parent = axis
		last = i
	}

	if parent == nil {
		return FieldBinding{Field: f, Rest: path}
	}

	parent.Fields = append(parent.Fields, f.Column)

	return FieldBinding{
		Field: f,
		Axis:  parent,
		Rest:  path.Slice(last+1, len(path.Segments)),
	}
}

// declare validates one declared join and adds it to the graph.
func (d *discoverer) declare(idx int, j *mapping.Join) {
	table := d.plan.Table
	label := fmt.Sprintf("joins[%d]", idx)

	lookup := func(role string, p mapping.FieldPath) *Axis {
		axis := d.byName[p.String()]

		switch {
		case axis == nil:
			d.diag.AddError("join_unknown_axis",
				fmt.Sprintf("%s.%s %s is not referenced by any field", label, role, p), table, "",
				d.axisNames()...)
		case !axis.IsTopLevel():
			d.diag.AddError("join_nested_axis",
				fmt.Sprintf("%s.%s %s is nested in %s; only top-level arrays can be joined",
					label, role, p, axis.Parent.Name), table, "")

			return nil
		}

		return axis
	}

	left := lookup("left", j.Left)
	right := lookup("right", j.Right)

	if left == nil || right == nil {
		return
	}

	if d.graph.incoming[right.Index] {
		d.diag.AddError("join_multiple_incoming",
			fmt.Sprintf("%s: %s is already the right side of another join", label, right.Name), table, "")

		return
	}

	if d.graph.connected(left.Index, right.Index) {
		d.diag.AddError("join_cycle",
			fmt.Sprintf("%s: %s and %s are already joined", label, left.Name, right.Name), table, "")

		return
	}

	d.graph.add(Join{
		Left:     left,
		Right:    right,
		LeftKey:  j.LeftKey,
		RightKey: j.RightKey,
		Type:     j.Type,
		Ties:     j.Ties,
		Origin:   JoinDeclared,
	})
}

func (d *discoverer) axisNames() []string {
	names := make([]string, 0, len(d.plan.Axes))
	for _, a := range d.plan.Axes {
		if a.IsTopLevel() {
			names = append(names, a.Name)
		}
	}

	return names
}

// buildComponents groups the top-level axes into join trees.
func (d *discoverer) buildComponents() {
	var comps []Component

	first := map[*Axis]int{}

	for _, root := range d.plan.Axes {
		if !root.IsTopLevel() || d.graph.incoming[root.Index] {
			continue
		}

		comp := Component{Driver: root}
		minIndex := root.Index

		queue := []*Axis{root}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]

			for _, j := range d.graph.joins {
				if j.Left == node {
					comp.Joins = append(comp.Joins, j)
					queue = append(queue, j.Right)
					minIndex = min(minIndex, j.Right.Index)
				}
			}
		}

		first[root] = minIndex
		comps = append(comps, comp)
	}

	slices.SortStableFunc(comps, func(a, b Component) int {
		return first[a.Driver] - first[b.Driver]
	})

	if len(comps) > 1 {
		drivers := make([]string, len(comps))
		for i, c := range comps {
			drivers[i] = c.Driver.Name
		}

		d.diag.AddInfo("cross_product",
			"independent arrays are expanded as a cross-product: "+strings.Join(drivers, " x "), d.plan.Table, "")
	}

	d.plan.Components = comps
}

// joinGraph tracks joins between top-level axes as a forest. Each axis has at
// most one incoming join, and union-find rejects joins that would close a cycle.
type joinGraph struct {
	parent   []int
	incoming map[int]bool
	joins    []Join
}

func newJoinGraph(n int) *joinGraph {
	g := &joinGraph{
		parent:   make([]int, n),
		incoming: map[int]bool{},
	}

	for i := range g.parent {
		g.parent[i] = i
	}

	return g
}

func (g *joinGraph) find(i int) int {
	for g.parent[i] != i {
		g.parent[i] = g.parent[g.parent[i]]
		i = g.parent[i]
	}

	return i
}

func (g *joinGraph) connected(a, b int) bool {
	return g.find(a) == g.find(b)
}

func (g *joinGraph) add(j Join) {
	g.parent[g.find(j.Right.Index)] = g.find(j.Left.Index)
	g.incoming[j.Right.Index] = true
	g.joins = append(g.joins, j)
}
