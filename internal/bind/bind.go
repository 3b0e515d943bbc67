// Package bind resolves one field for one row context and coerces the result
// to the column datatype.
package bind

import (
	"fmt"
	"time"

	"stage-mapper/internal/convert"
	"stage-mapper/internal/expand"
	"stage-mapper/internal/mapping"
	"stage-mapper/internal/plan"
	"stage-mapper/internal/resolve"
)

// Binder binds fields of one table within one engine invocation.
type Binder struct {
	// Table names the table in errors.
	Table string
	// Now is the value of current_timestamp(), captured once per invocation
	// and already truncated to the table's precision.
	Now time.Time
}

// Bind returns the coerced value of fb for the row ctx of doc. A path that
// leads nowhere, or an axis with a null binding, yields nil.
func (b *Binder) Bind(fb plan.FieldBinding, ctx expand.RowContext, doc any) (any, error) {
	spec := fb.Field

	switch src := spec.Source.(type) {
	case mapping.Literal:
		return src.Value, nil

	case mapping.Computed:
		return b.computed(spec, src)

	case mapping.PathLookup:
		raw := lookup(fb, ctx, doc)

		v, err := convert.Coerce(raw, spec.Datatype, spec.Format)
		if err != nil {
			return nil, &CoercionError{
				Table:    b.Table,
				Column:   spec.Column,
				Datatype: spec.Datatype,
				Value:    raw,
				Err:      err,
			}
		}

		return v, nil

	default:
		return nil, fmt.Errorf("column %s: unsupported source %T", spec.Column, spec.Source)
	}
}

func (b *Binder) computed(spec mapping.FieldSpec, src mapping.Computed) (any, error) {
	switch src.Func {
	case mapping.FuncCurrentTimestamp:
		if spec.Datatype == convert.String {
			return b.Now.Format(time.RFC3339Nano), nil
		}

		return b.Now, nil
	default:
		return nil, fmt.Errorf("column %s: unknown computed function %s", spec.Column, src.Func)
	}
}

func lookup(fb plan.FieldBinding, ctx expand.RowContext, doc any) any {
	from := doc

	if fb.Axis != nil {
		bound := ctx.Get(fb.Axis)
		if !bound.Present {
			return nil
		}

		from = bound.Element
	}

	res := resolve.Resolve(from, fb.Rest)
	if res.Kind != resolve.Scalar {
		return nil
	}

	return res.Value
}
