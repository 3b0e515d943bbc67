package expand

import (
	"log/slog"

	"stage-mapper/internal/mapping"
	"stage-mapper/internal/plan"
	"stage-mapper/internal/resolve"
)

// Expander turns a document into row contexts. The zero value is ready to use
// and logs nothing.
type Expander struct {
	// Logger receives a warning for every join resolved with ties "first".
	Logger *slog.Logger
}

// Expand returns the row contexts of doc under p, in output order.
func (e *Expander) Expand(doc any, p *plan.Plan) ([]RowContext, error) {
	rows := []RowContext{newContext(p)}

	for _, comp := range p.Components {
		part, err := e.expandComponent(doc, p, comp)
		if err != nil {
			return nil, err
		}

		rows = cross(rows, part)
	}

	return rows, nil
}

func (e *Expander) expandComponent(doc any, p *plan.Plan, comp plan.Component) ([]RowContext, error) {
	elems := elements(doc, comp.Driver.Path)
	if len(elems) == 0 {
		return emptyAxis(p), nil
	}

	var rows []RowContext
	for _, el := range elems {
		rows = append(rows, expandAxis(p, comp.Driver, el)...)
	}

	for _, j := range comp.Joins {
		var err error

		rows, err = e.join(doc, p, j, rows)
		if err != nil {
			return nil, err
		}
	}

	return rows, nil
}

// expandAxis binds one element of axis and crosses it with the element's
// child axes.
func expandAxis(p *plan.Plan, axis *plan.Axis, el resolve.Binding) []RowContext {
	base := newContext(p)
	base.Bindings[axis.Index] = Binding{
		Axis:    axis.Name,
		Element: el.Element,
		Index:   el.Index,
		Present: true,
	}

	rows := []RowContext{base}

	for _, child := range axis.Children {
		elems := elements(el.Element, child.Rel)

		var sub []RowContext

		if len(elems) == 0 {
			sub = emptyAxis(p)
		}

		for _, ce := range elems {
			sub = append(sub, expandAxis(p, child, ce)...)
		}

		rows = cross(rows, sub)
	}

	return rows
}

// join extends each row with the matching elements of j.Right.
func (e *Expander) join(doc any, p *plan.Plan, j plan.Join, rows []RowContext) ([]RowContext, error) {
	right := elements(doc, j.Right.Path)

	index := map[string][]int{}

	for i, rb := range right {
		if k, ok := keyOf(rb.Element, j.RightKey); ok {
			index[k] = append(index[k], i)
		}
	}

	out := make([]RowContext, 0, len(rows))

	for _, row := range rows {
		left := row.Get(j.Left)

		var (
			key     string
			matches []int
		)

		if left.Present {
			if k, ok := keyOf(left.Element, j.LeftKey); ok {
				key = k
				matches = index[k]
			}
		}

		if len(matches) == 0 {
			if j.Type == mapping.JoinInner {
				continue
			}

			out = append(out, row)

			continue
		}

		if len(matches) > 1 {
			switch j.Ties {
			case mapping.TiesError:
				positions := make([]int, len(matches))
				for i, m := range matches {
					positions[i] = right[m].Index
				}

				return nil, &CorrelationAmbiguityError{
					Table:     p.Table,
					Left:      j.Left.Name,
					LeftIndex: left.Index,
					Right:     j.Right.Name,
					Matches:   positions,
					Key:       key,
				}
			case mapping.TiesFirst:
				e.logger().Warn("join key matches several elements, keeping the first",
					"table", p.Table,
					"left", j.Left.Name,
					"left_index", left.Index,
					"right", j.Right.Name,
					"key", key,
					"matches", len(matches))

				matches = matches[:1]
			case mapping.TiesAll:
			}
		}

		for _, m := range matches {
			for _, sub := range expandAxis(p, j.Right, right[m]) {
				c := row.clone()
				merge(&c, sub)
				out = append(out, c)
			}
		}
	}

	return out, nil
}

func (e *Expander) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return e.Logger
}

// emptyAxis is what an absent or empty array contributes under the table's
// empty_axis policy: nothing, or one row of null bindings.
func emptyAxis(p *plan.Plan) []RowContext {
	if p.Mapping.Options.EmptyAxis == mapping.EmptyAxisNull {
		return []RowContext{newContext(p)}
	}

	return nil
}

// elements resolves an axis path that ends with an expansion marker.
func elements(v any, path mapping.FieldPath) []resolve.Binding {
	res := resolve.Resolve(v, path)
	if res.Kind != resolve.Sequence {
		return nil
	}

	return res.Bindings
}

func keyOf(el any, path mapping.FieldPath) (string, bool) {
	res := resolve.Resolve(el, path)
	if res.Kind != resolve.Scalar {
		return "", false
	}

	return resolve.KeyText(res.Value)
}

// cross returns every combination of a and b, with a varying slowest.
func cross(a, b []RowContext) []RowContext {
	out := make([]RowContext, 0, len(a)*len(b))

	for _, ra := range a {
		for _, rb := range b {
			c := ra.clone()
			merge(&c, rb)
			out = append(out, c)
		}
	}

	return out
}

// merge copies the present bindings of src into dst.
func merge(dst *RowContext, src RowContext) {
	for i, b := range src.Bindings {
		if b.Present {
			dst.Bindings[i] = b
		}
	}
}
