package plan

import (
	"fmt"

	"stage-mapper/internal/mapping"
	"stage-mapper/internal/match"
)

// identifierRef is a field path below an axis element whose leaf looks like
// an identifier.
type identifierRef struct {
	norm string
	leaf string
	path mapping.FieldPath
}

// infer correlates pairs of top-level axes that are not yet connected when
// both reference an identifier field under the same normalized name.
func (d *discoverer) infer() {
	refs := d.identifierRefs()

	for i, a := range d.plan.Axes {
		if !a.IsTopLevel() {
			continue
		}

		for _, b := range d.plan.Axes[i+1:] {
			if !b.IsTopLevel() || d.graph.connected(a.Index, b.Index) {
				continue
			}

			ra, rb, ok := sharedIdentifier(refs[a], refs[b])
			if !ok {
				continue
			}

			d.inferPair(a, b, ra, rb)
		}
	}
}

func (d *discoverer) inferPair(a, b *Axis, ra, rb identifierRef) {
	driver, other := a, b
	driverRef, otherRef := ra, rb

	// The axis carrying more of the table's fields drives; the earlier one wins a tie.
	if len(b.Fields) > len(a.Fields) {
		driver, other = b, a
		driverRef, otherRef = rb, ra
	}

	if d.graph.incoming[other.Index] {
		if d.graph.incoming[driver.Index] {
			d.diag.AddWarning("join_not_inferred",
				fmt.Sprintf("%s and %s share identifier %q but both are already joined from elsewhere; declare the join explicitly",
					driver.Name, other.Name, ra.leaf), d.plan.Table, "")

			return
		}

		driver, other = other, driver
		driverRef, otherRef = otherRef, driverRef
	}

	d.graph.add(Join{
		Left:     driver,
		Right:    other,
		LeftKey:  driverRef.path,
		RightKey: otherRef.path,
		Type:     mapping.JoinLeft,
		Ties:     mapping.TiesAll,
		Origin:   JoinInferred,
	})

	d.diag.AddWarning("inferred_join",
		fmt.Sprintf("correlating %s with %s on %s = %s from the shared identifier name; declare it under joins",
			driver.Name, other.Name, driverRef.path, otherRef.path), d.plan.Table, "")
}

// identifierRefs collects, per top-level axis, the identifier-like paths its
// fields read, in column order.
func (d *discoverer) identifierRefs() map[*Axis][]identifierRef {
	out := map[*Axis][]identifierRef{}

	for _, fb := range d.plan.Bindings {
		if fb.Axis == nil || !fb.Axis.IsTopLevel() || fb.Rest.IsEmpty() {
			continue
		}

		leaf := fb.Rest.Leaf()
		if !match.IsIdentifier(leaf) {
			continue
		}

		out[fb.Axis] = append(out[fb.Axis], identifierRef{
			norm: match.NormalizeIdent(leaf),
			leaf: leaf,
			path: fb.Rest,
		})
	}

	return out
}

// sharedIdentifier returns the first identifier of a, in column order, that b
// also references.
func sharedIdentifier(a, b []identifierRef) (identifierRef, identifierRef, bool) {
	for _, ra := range a {
		for _, rb := range b {
			if ra.norm == rb.norm {
				return ra, rb, true
			}
		}
	}

	return identifierRef{}, identifierRef{}, false
}
