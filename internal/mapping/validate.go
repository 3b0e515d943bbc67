package mapping

import (
	"errors"
	"fmt"
	"time"

	"stage-mapper/internal/convert"
	"stage-mapper/internal/diagnostic"
	"stage-mapper/internal/match"
)

var fieldKeys = []string{"json_path", "value", "datatype", "format"}

// Compile validates a table definition and returns its compiled form.
// Every problem is collected; the returned error is a *ConfigurationError.
func Compile(def *TableDef) (*TableMapping, error) {
	diag := &diagnostic.Diagnostics{}
	if def == nil {
		diag.AddError("table_is_nil", "table definition is nil", "", "")
		return nil, newConfigurationError("", diag)
	}

	table := def.Table
	if table == "" {
		diag.AddError("missing_table_name", "table definition must specify table_name", "", "")
	}

	opts := compileOptions(diag, table, def.Options)

	if len(def.Fields) == 0 {
		diag.AddError("no_fields", "table definition must declare at least one field", table, "")
	}

	seen := make(map[string]int, len(def.Fields))
	fields := make([]FieldSpec, 0, len(def.Fields))

	for i := range def.Fields {
		fd := &def.Fields[i]

		if prev, ok := seen[fd.Column]; ok {
			diag.AddError("duplicate_column",
				fmt.Sprintf("column declared twice (lines %d and %d)", prev, fd.Line), table, fd.Column)

			continue
		}

		seen[fd.Column] = fd.Line

		if spec, ok := compileField(diag, table, fd); ok {
			fields = append(fields, spec)
		}
	}

	joins := make([]Join, 0, len(def.Joins))

	for i := range def.Joins {
		if j, ok := compileJoin(diag, table, i, &def.Joins[i]); ok {
			joins = append(joins, j)
		}
	}

	if err := newConfigurationError(table, diag); err != nil {
		return nil, err
	}

	return &TableMapping{
		Table:   table,
		Fields:  fields,
		Joins:   joins,
		Options: opts,
	}, nil
}

// CompileFile compiles every table of a mapping file. Table names must be
// unique. The diagnostics of every table are merged into one
// *ConfigurationError.
func CompileFile(mf *MappingFile) ([]*TableMapping, error) {
	if mf == nil {
		return nil, errors.New("mapping file is nil")
	}

	var out []*TableMapping

	diag := &diagnostic.Diagnostics{}
	seen := map[string]bool{}

	for i := range mf.Tables {
		name := mf.Tables[i].Table
		if name != "" && seen[name] {
			diag.AddError("duplicate_table", "table declared twice in one mapping file", name, "")
			continue
		}

		seen[name] = true

		tm, err := Compile(&mf.Tables[i])
		if err != nil {
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				return nil, err
			}

			diag.Merge(ce.Diagnostics)

			continue
		}

		out = append(out, tm)
	}

	table := ""
	if len(mf.Tables) == 1 {
		table = mf.Tables[0].Table
	}

	if err := newConfigurationError(table, diag); err != nil {
		return nil, err
	}

	return out, nil
}

func compileOptions(diag *diagnostic.Diagnostics, table string, def OptionsDef) Options {
	opts := Options{
		EmptyAxis:          EmptyAxisDrop,
		InferJoins:         true,
		TimestampPrecision: DefaultTimestampPrecision,
	}

	ea, err := parseEmptyAxis(def.EmptyAxis)
	if err != nil {
		diag.AddError("invalid_option", err.Error(), table, "")
	} else {
		opts.EmptyAxis = ea
	}

	if def.InferJoins != nil {
		opts.InferJoins = *def.InferJoins
	}

	if def.TimestampPrecision != "" {
		d, err := time.ParseDuration(def.TimestampPrecision)

		switch {
		case err != nil:
			diag.AddError("invalid_option", fmt.Sprintf("invalid timestamp_precision: %v", err), table, "")
		case d <= 0:
			diag.AddError("invalid_option", "timestamp_precision must be positive", table, "")
		default:
			opts.TimestampPrecision = d
		}
	}

	return opts
}

// compileField turns one FieldDef into a FieldSpec with exactly one source.
func compileField(diag *diagnostic.Diagnostics, table string, fd *FieldDef) (FieldSpec, bool) {
	ok := true
	col := fd.Column

	if col == "" {
		diag.AddError("empty_column", fmt.Sprintf("field on line %d has an empty column name", fd.Line), table, "")
		ok = false
	}

	for _, k := range fd.Unknown {
		diag.AddError("unknown_field_key", fmt.Sprintf("unknown key %q", k), table, col,
			match.Suggest(k, fieldKeys, 3)...)

		ok = false
	}

	dt, err := convert.ParseDatatype(fd.Datatype)
	dtOK := err == nil

	if !dtOK {
		diag.AddError("unknown_datatype", err.Error(), table, col, match.Suggest(fd.Datatype, convert.Names(), 3)...)
		ok = false
	}

	if dtOK && fd.Format != "" && dt != convert.Datetime {
		diag.AddError("format_without_datetime", "format is only valid for datetime fields", table, col)
		ok = false
	}

	spec := FieldSpec{Column: col, Datatype: dt, Format: fd.Format}

	switch {
	case fd.HasPath && fd.HasValue:
		diag.AddError("conflicting_source", "field must specify exactly one of json_path or value", table, col)
		return spec, false

	case !fd.HasPath && !fd.HasValue:
		diag.AddError("missing_source", "field must specify json_path or value", table, col)
		return spec, false

	case fd.HasPath:
		fp, err := ParsePath(fd.JSONPath)
		if err != nil {
			diag.AddError("invalid_path", err.Error(), table, col)
			return spec, false
		}

		spec.Source = PathLookup{Path: fp}

	case !dtOK:
		return spec, false

	default:
		src, good := compileValue(diag, table, col, dt, fd)
		if !good {
			return spec, false
		}

		spec.Source = src
	}

	return spec, ok
}

// compileValue classifies a "value" as Computed or Literal and coerces literals.
func compileValue(diag *diagnostic.Diagnostics, table, col string, dt convert.Datatype, fd *FieldDef) (Source, bool) {
	if s, isString := fd.Value.(string); isString {
		if name, isCall := parseCall(s); isCall {
			fn, known := knownFunc(name)
			if !known {
				names := make([]string, len(ComputedFuncs))
				for i, f := range ComputedFuncs {
					names[i] = string(f) + "()"
				}

				diag.AddError("unknown_function", fmt.Sprintf("unknown computed function %q", s), table, col,
					match.Suggest(name, names, 4)...)

				return nil, false
			}

			if dt != convert.Datetime && dt != convert.String {
				diag.AddError("computed_datatype",
					fmt.Sprintf("%s() produces a timestamp; datatype %s is not allowed", fn, dt), table, col)

				return nil, false
			}

			return Computed{Func: fn}, true
		}
	}

	v, err := convert.Coerce(fd.Value, dt, fd.Format)
	if err != nil {
		diag.AddError("literal_not_coercible", err.Error(), table, col)
		return nil, false
	}

	return Literal{Value: v}, true
}

func compileJoin(diag *diagnostic.Diagnostics, table string, idx int, def *JoinDef) (Join, bool) {
	label := fmt.Sprintf("joins[%d]", idx)
	ok := true

	axisPath := func(role, s string) FieldPath {
		fp, err := ParsePath(s)
		if err != nil {
			diag.AddError("invalid_join", fmt.Sprintf("%s.%s: %v", label, role, err), table, "")
			ok = false

			return fp
		}

		if last := fp.Segments[len(fp.Segments)-1]; !last.IsSlice {
			diag.AddError("join_not_array", fmt.Sprintf("%s.%s %q must end with []", label, role, s), table, "")
			ok = false
		}

		return fp
	}

	keyPath := func(role, s string) FieldPath {
		if s == "" {
			diag.AddError("missing_join_key", fmt.Sprintf("%s needs on or %s", label, role), table, "")
			ok = false

			return FieldPath{}
		}

		fp, err := ParsePath(s)
		if err != nil {
			diag.AddError("invalid_join", fmt.Sprintf("%s.%s: %v", label, role, err), table, "")
			ok = false

			return fp
		}

		if fp.HasExpansion() {
			diag.AddError("join_key_expands", fmt.Sprintf("%s.%s %q must not expand an array", label, role, s), table, "")
			ok = false
		}

		return fp
	}

	j := Join{
		Left:     axisPath("left", def.Left),
		Right:    axisPath("right", def.Right),
		LeftKey:  keyPath("left_key", firstNonEmpty(def.LeftKey, def.On)),
		RightKey: keyPath("right_key", firstNonEmpty(def.RightKey, def.On)),
	}

	jt, err := parseJoinType(def.Type)
	if err != nil {
		diag.AddError("invalid_join", fmt.Sprintf("%s: %v", label, err), table, "")
		ok = false
	}

	ties, err := parseTies(def.Ties)
	if err != nil {
		diag.AddError("invalid_join", fmt.Sprintf("%s: %v", label, err), table, "")
		ok = false
	}

	j.Type, j.Ties = jt, ties

	if ok && j.Left.Equals(j.Right) {
		diag.AddError("self_join", fmt.Sprintf("%s joins %s to itself", label, j.Left), table, "")
		ok = false
	}

	return j, ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
