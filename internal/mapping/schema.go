package mapping

import (
	"strings"

	"stage-mapper/internal/common"
	"stage-mapper/internal/convert"
)

// MappingFile represents the root of a YAML mapping file.
// A file holds either a single table definition at the root or a list under "tables".
type MappingFile struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Tables is the list of table definitions in file order.
	Tables []TableDef `yaml:"tables"`
}

// TableDef is one table definition exactly as written in YAML.
type TableDef struct {
	// Table is the target staging table name.
	Table string `yaml:"table_name"`

	// Options tune row expansion for this table.
	Options OptionsDef `yaml:"options,omitempty"`

	// Joins declare correlated arrays explicitly.
	Joins []JoinDef `yaml:"joins,omitempty"`

	// Fields are the target columns in declaration order.
	Fields FieldDefs `yaml:"fields"`
}

// OptionsDef holds the optional per-table settings as written in YAML.
type OptionsDef struct {
	// EmptyAxis is "drop" (default) or "null".
	EmptyAxis string `yaml:"empty_axis,omitempty"`

	// InferJoins enables join inference from identifier names. Defaults to true.
	InferJoins *bool `yaml:"infer_joins,omitempty"`

	// TimestampPrecision is a Go duration ("1s", "1ms"). Defaults to 1µs.
	TimestampPrecision string `yaml:"timestamp_precision,omitempty"`
}

// JoinDef declares that two arrays describe the same entities and are matched on a key.
type JoinDef struct {
	// Left is the driving array path, e.g. "policy.vehicleList[]".
	Left string `yaml:"left"`
	// Right is the correlated array path, e.g. "policy.registrantList[]".
	Right string `yaml:"right"`
	// On is the key path shared by both element shapes.
	On string `yaml:"on,omitempty"`
	// LeftKey overrides On for the left elements.
	LeftKey string `yaml:"left_key,omitempty"`
	// RightKey overrides On for the right elements.
	RightKey string `yaml:"right_key,omitempty"`
	// Type is "left" (default) or "inner".
	Type string `yaml:"type,omitempty"`
	// Ties is "all" (default), "first" or "error".
	Ties string `yaml:"ties,omitempty"`
}

// FieldDefs is the ordered "fields" mapping of a table definition.
type FieldDefs []FieldDef

// FieldDef is one column definition exactly as written in YAML.
// HasPath and HasValue record key presence, so "value: null" is a literal null
// and not a missing source.
type FieldDef struct {
	Column   string
	JSONPath string
	HasPath  bool
	Value    any
	HasValue bool
	Datatype string
	Format   string
	// Unknown lists keys that are not part of the field schema.
	Unknown []string
	// Line is the 1-based line of the column key in the source file.
	Line int
}

// Columns returns the column names in declaration order.
func (f FieldDefs) Columns() []string {
	out := make([]string, len(f))
	for i, fd := range f {
		out[i] = fd.Column
	}

	return out
}

// TableMapping is a compiled, validated table definition.
// It is immutable once returned by Compile.
type TableMapping struct {
	// Table is the target staging table name.
	Table string
	// Fields are the compiled columns in output order.
	Fields []FieldSpec
	// Joins are the explicitly declared correlations.
	Joins []Join
	// Options are the resolved per-table settings.
	Options Options
}

// Columns returns the output column names in order.
func (tm *TableMapping) Columns() []string {
	out := make([]string, len(tm.Fields))
	for i, f := range tm.Fields {
		out[i] = f.Column
	}

	return out
}

// FieldSpec is one compiled column.
type FieldSpec struct {
	// Column is the target column name.
	Column string
	// Datatype is the declared column type.
	Datatype convert.Datatype
	// Format is an optional Go time layout for datetime columns.
	Format string
	// Source is the single value source of this column.
	Source Source
}

// Join is a compiled join declaration.
type Join struct {
	Left     FieldPath
	Right    FieldPath
	LeftKey  FieldPath
	RightKey FieldPath
	Type     JoinType
	Ties     TiesPolicy
}

// PathSegment represents a parsed segment of a path expression.
type PathSegment struct {
	// Name is the object key.
	Name string

	// IsSlice marks an array expansion after the key lookup (e.g., "vehicleList[]").
	IsSlice bool
}

// FieldPath represents a parsed path like "policy.vehicleList[].vin".
type FieldPath struct {
	Segments []PathSegment
}

// String returns the path as a string.
func (p FieldPath) String() string {
	var sb strings.Builder

	for i, seg := range p.Segments {
		if i > 0 {
			sb.WriteString(".")
		}

		sb.WriteString(seg.Name)

		if seg.IsSlice {
			sb.WriteString("[]")
		}
	}

	return sb.String()
}

// IsEmpty returns true if the path has no segments.
func (p FieldPath) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Leaf returns the last segment's key, or "" for an empty path.
func (p FieldPath) Leaf() string {
	if seg, ok := common.Last(p.Segments); ok {
		return seg.Name
	}

	return ""
}

// Expansions returns the segment indexes that carry an expansion marker.
func (p FieldPath) Expansions() []int {
	var out []int

	for i, seg := range p.Segments {
		if seg.IsSlice {
			out = append(out, i)
		}
	}

	return out
}

// HasExpansion reports whether any segment expands an array.
func (p FieldPath) HasExpansion() bool {
	for _, seg := range p.Segments {
		if seg.IsSlice {
			return true
		}
	}

	return false
}

// Slice returns the sub-path of segments [from, to).
func (p FieldPath) Slice(from, to int) FieldPath {
	return FieldPath{Segments: p.Segments[from:to:to]}
}

// Equals returns true if two paths are equal.
func (p FieldPath) Equals(other FieldPath) bool {
	if len(p.Segments) != len(other.Segments) {
		return false
	}

	for i, seg := range p.Segments {
		if seg != other.Segments[i] {
			return false
		}
	}

	return true
}
