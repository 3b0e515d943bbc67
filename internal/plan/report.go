package plan

import (
	"fmt"
	"strings"
)

// Report is a summary of a plan, printed by the check command as text,
// JSON or YAML.
type Report struct {
	Table      string       `json:"table"`
	Columns    []string     `json:"columns"`
	Scalars    []string     `json:"scalars,omitempty"`
	Axes       []AxisReport `json:"axes,omitempty"`
	Joins      []JoinReport `json:"joins,omitempty"`
	Components [][]string   `json:"components,omitempty"`
	Warnings   []string     `json:"warnings,omitempty"`
	Infos      []string     `json:"infos,omitempty"`
}

// AxisReport describes one axis.
type AxisReport struct {
	Name   string   `json:"name"`
	Parent string   `json:"parent,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// JoinReport describes one join.
type JoinReport struct {
	Left     string `json:"left"`
	Right    string `json:"right"`
	LeftKey  string `json:"left_key"`
	RightKey string `json:"right_key"`
	Type     string `json:"type"`
	Ties     string `json:"ties"`
	Origin   string `json:"origin"`
}

// GenerateReport summarizes a plan.
func GenerateReport(p *Plan) *Report {
	r := &Report{
		Table:   p.Table,
		Columns: p.Columns(),
	}

	for _, fb := range p.Bindings {
		if fb.Axis == nil {
			r.Scalars = append(r.Scalars, fb.Field.Column)
		}
	}

	for _, a := range p.Axes {
		ar := AxisReport{Name: a.Name, Fields: a.Fields}
		if a.Parent != nil {
			ar.Parent = a.Parent.Name
		}

		r.Axes = append(r.Axes, ar)
	}

	for _, c := range p.Components {
		names := make([]string, 0, len(c.Joins)+1)
		for _, a := range c.Axes() {
			names = append(names, a.Name)
		}

		r.Components = append(r.Components, names)

		for _, j := range c.Joins {
			r.Joins = append(r.Joins, JoinReport{
				Left:     j.Left.Name,
				Right:    j.Right.Name,
				LeftKey:  j.LeftKey.String(),
				RightKey: j.RightKey.String(),
				Type:     string(j.Type),
				Ties:     string(j.Ties),
				Origin:   j.Origin.String(),
			})
		}
	}

	for _, w := range p.Diagnostics.Warnings {
		r.Warnings = append(r.Warnings, w.String())
	}

	for _, i := range p.Diagnostics.Infos {
		r.Infos = append(r.Infos, i.String())
	}

	return r
}

// FormatReport formats a report as text.
func FormatReport(r *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n=== %s ===\n", r.Table)
	fmt.Fprintf(&sb, "Columns: %d, Scalar: %d, Axes: %d, Joins: %d\n",
		len(r.Columns), len(r.Scalars), len(r.Axes), len(r.Joins))

	if len(r.Axes) > 0 {
		sb.WriteString("\nAxes:\n")

		for _, a := range r.Axes {
			indent := "  "
			if a.Parent != "" {
				indent = "    "
			}

			fmt.Fprintf(&sb, "%s%s [%s]\n", indent, a.Name, strings.Join(a.Fields, ", "))
		}
	}

	if len(r.Joins) > 0 {
		sb.WriteString("\nJoins:\n")

		for _, j := range r.Joins {
			fmt.Fprintf(&sb, "  %s.%s = %s.%s (%s, ties %s, %s)\n",
				j.Left, j.LeftKey, j.Right, j.RightKey, j.Type, j.Ties, j.Origin)
		}
	}

	if len(r.Components) > 1 {
		sb.WriteString("\nIndependent components (cross-product):\n")

		for i, c := range r.Components {
			fmt.Fprintf(&sb, "  %d. %s\n", i+1, strings.Join(c, " -> "))
		}
	}

	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "\n⚠ %s\n", w)
	}

	if len(r.Warnings) == 0 {
		sb.WriteString("\n✓ No warnings.\n")
	}

	return sb.String()
}
