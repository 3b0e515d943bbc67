package mapping

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stage-mapper/internal/diagnostic"
)

func compileYAML(t *testing.T, yaml string) (*TableMapping, error) {
	t.Helper()

	mf, err := Parse([]byte(yaml))
	require.NoError(t, err)
	require.Len(t, mf.Tables, 1)

	return Compile(&mf.Tables[0])
}

func diagnosticsOf(t *testing.T, err error) *diagnostic.Diagnostics {
	t.Helper()

	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)

	return &ce.Diagnostics
}

func TestCompileNil(t *testing.T) {
	_, err := Compile(nil)
	require.Error(t, err)
	assert.Equal(t, []string{"table_is_nil"}, diagnosticsOf(t, err).Codes())
}

func TestCompileCollectsEveryProblem(t *testing.T) {
	_, err := compileYAML(t, `
table_name: T
fields:
  A:
    json_path: a.b
    value: 1
  B:
  C:
    json_path: "a..b"
`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	codes := diagnosticsOf(t, err).Codes()
	assert.ElementsMatch(t, []string{"conflicting_source", "missing_source", "invalid_path"}, codes)
}

func TestCompileDuplicateColumn(t *testing.T) {
	_, err := Compile(&TableDef{
		Table: "T",
		Fields: FieldDefs{
			{Column: "A", JSONPath: "a", HasPath: true, Line: 3},
			{Column: "A", JSONPath: "b", HasPath: true, Line: 5},
		},
	})
	require.Error(t, err)

	diag := diagnosticsOf(t, err)
	assert.Equal(t, []string{"duplicate_column"}, diag.Codes())
	assert.Contains(t, diag.Errors[0].Message, "lines 3 and 5")
}

func TestCompileMissingTableName(t *testing.T) {
	_, err := Compile(&TableDef{})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"missing_table_name", "no_fields"}, diagnosticsOf(t, err).Codes())
}

func TestCompileSuggestions(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		code       string
		suggestion string
	}{
		{
			name:       "misspelled key",
			field:      "{jsonpath: a.b}",
			code:       "unknown_field_key",
			suggestion: "json_path",
		},
		{
			name:       "misspelled datatype",
			field:      "{json_path: a.b, datatype: decimel}",
			code:       "unknown_datatype",
			suggestion: "decimal",
		},
		{
			name:       "misspelled function",
			field:      "{value: current_timestmp(), datatype: datetime}",
			code:       "unknown_function",
			suggestion: "current_timestamp()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileYAML(t, "table_name: T\nfields:\n  A: "+tt.field+"\n")
			require.Error(t, err)

			diag := diagnosticsOf(t, err)
			require.NotEmpty(t, diag.Errors)

			d := diag.Errors[0]
			assert.Equal(t, tt.code, d.Code)
			assert.Equal(t, "A", d.Column)
			assert.Contains(t, d.Suggestions, tt.suggestion)
			assert.Contains(t, err.Error(), "did you mean")
		})
	}
}

func TestCompileLiterals(t *testing.T) {
	tm, err := compileYAML(t, `
table_name: T
fields:
  FLAG:  {value: 1, datatype: int}
  TEXT:  {value: 42}
  RATE:  {value: "12.50", datatype: decimal}
  NOTE:  {value: null, datatype: int}
  DAY:   {value: "2024-03-01", datatype: datetime}
  ACTIVE: {value: "true", datatype: bool}
  CALL:  {value: "not a call", datatype: string}
`)
	require.NoError(t, err)

	values := make(map[string]any, len(tm.Fields))
	for _, f := range tm.Fields {
		lit, ok := f.Source.(Literal)
		require.True(t, ok, "column %s", f.Column)

		values[f.Column] = lit.Value
	}

	assert.Equal(t, int64(1), values["FLAG"])
	assert.Equal(t, "42", values["TEXT"])
	assert.True(t, decimal.RequireFromString("12.5").Equal(values["RATE"].(decimal.Decimal)))
	assert.Nil(t, values["NOTE"])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), values["DAY"])
	assert.Equal(t, true, values["ACTIVE"])
	assert.Equal(t, "not a call", values["CALL"])
}

func TestCompileLiteralNotCoercible(t *testing.T) {
	_, err := compileYAML(t, "table_name: T\nfields:\n  N: {value: abc, datatype: int}\n")
	require.Error(t, err)
	assert.Equal(t, []string{"literal_not_coercible"}, diagnosticsOf(t, err).Codes())
}

func TestCompileComputed(t *testing.T) {
	t.Run("case and spacing are ignored", func(t *testing.T) {
		tm, err := compileYAML(t, "table_name: T\nfields:\n  TS: {value: \"CURRENT_TIMESTAMP( )\", datatype: datetime}\n")
		require.NoError(t, err)

		comp, ok := tm.Fields[0].Source.(Computed)
		require.True(t, ok)
		assert.Equal(t, FuncCurrentTimestamp, comp.Func)
		assert.Equal(t, SourceComputed, comp.Kind())
	})

	t.Run("string datatype is allowed", func(t *testing.T) {
		_, err := compileYAML(t, "table_name: T\nfields:\n  TS: {value: current_timestamp()}\n")
		require.NoError(t, err)
	})

	t.Run("numeric datatype is rejected", func(t *testing.T) {
		_, err := compileYAML(t, "table_name: T\nfields:\n  TS: {value: current_timestamp(), datatype: int}\n")
		require.Error(t, err)
		assert.Equal(t, []string{"computed_datatype"}, diagnosticsOf(t, err).Codes())
	})
}

func TestCompileFormat(t *testing.T) {
	_, err := compileYAML(t, "table_name: T\nfields:\n  A: {json_path: a, format: \"2006-01-02\"}\n")
	require.Error(t, err)
	assert.Equal(t, []string{"format_without_datetime"}, diagnosticsOf(t, err).Codes())

	tm, err := compileYAML(t, "table_name: T\nfields:\n  A: {json_path: a, datatype: datetime, format: \"02/01/2006\"}\n")
	require.NoError(t, err)
	assert.Equal(t, "02/01/2006", tm.Fields[0].Format)
}

func TestCompileOptions(t *testing.T) {
	tm, err := compileYAML(t, `
table_name: T
options:
  empty_axis: "null"
  infer_joins: false
  timestamp_precision: 1ms
fields:
  A: {json_path: a}
`)
	require.NoError(t, err)
	assert.Equal(t, Options{
		EmptyAxis:          EmptyAxisNull,
		InferJoins:         false,
		TimestampPrecision: time.Millisecond,
	}, tm.Options)

	_, err = compileYAML(t, `
table_name: T
options:
  empty_axis: skip
  timestamp_precision: -1s
fields:
  A: {json_path: a}
`)
	require.Error(t, err)
	assert.Equal(t, []string{"invalid_option", "invalid_option"}, diagnosticsOf(t, err).Codes())
}

func TestCompileJoins(t *testing.T) {
	tm, err := compileYAML(t, `
table_name: T
joins:
  - left: policy.vehicleList[]
    right: policy.registrantList[]
    left_key: registrantId
    right_key: id
    type: inner
    ties: first
  - left: policy.vehicleList[]
    right: policy.driverList[]
    on: driverId
fields:
  VIN: {json_path: "policy.vehicleList[].vin"}
`)
	require.NoError(t, err)
	require.Len(t, tm.Joins, 2)

	j := tm.Joins[0]
	assert.Equal(t, "policy.vehicleList[]", j.Left.String())
	assert.Equal(t, "policy.registrantList[]", j.Right.String())
	assert.Equal(t, "registrantId", j.LeftKey.String())
	assert.Equal(t, "id", j.RightKey.String())
	assert.Equal(t, JoinInner, j.Type)
	assert.Equal(t, TiesFirst, j.Ties)

	// "on" fills both keys; type and ties take their defaults.
	j = tm.Joins[1]
	assert.Equal(t, "driverId", j.LeftKey.String())
	assert.Equal(t, "driverId", j.RightKey.String())
	assert.Equal(t, JoinLeft, j.Type)
	assert.Equal(t, TiesAll, j.Ties)
}

func TestCompileJoinErrors(t *testing.T) {
	tests := []struct {
		name string
		join string
		code string
	}{
		{"left is not an array", `{left: policy.vehicle, right: "policy.registrantList[]", on: id}`, "join_not_array"},
		{"no key", `{left: "a[]", right: "b[]"}`, "missing_join_key"},
		{"key expands", `{left: "a[]", right: "b[]", on: "ids[]"}`, "join_key_expands"},
		{"self join", `{left: "a[]", right: "a[]", on: id}`, "self_join"},
		{"bad type", `{left: "a[]", right: "b[]", on: id, type: outer}`, "invalid_join"},
		{"bad path", `{left: "a..b[]", right: "b[]", on: id}`, "invalid_join"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileYAML(t, "table_name: T\njoins:\n  - "+tt.join+"\nfields:\n  A: {json_path: a}\n")
			require.Error(t, err)
			assert.Contains(t, diagnosticsOf(t, err).Codes(), tt.code)
		})
	}
}

func TestCompileFileDuplicateTable(t *testing.T) {
	mf, err := Parse([]byte(`
tables:
  - table_name: T
    fields: {A: {json_path: a}}
  - table_name: T
    fields: {B: {json_path: b}}
`))
	require.NoError(t, err)

	_, err = CompileFile(mf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate_table")
}

func TestCompileFileMergesTables(t *testing.T) {
	mf, err := Parse([]byte(`
tables:
  - table_name: A
    fields: {X: {json_path: "x..y"}}
  - table_name: B
    fields: {Y: {value: abc, datatype: int}}
  - table_name: C
    fields: {Z: {json_path: z}}
`))
	require.NoError(t, err)

	_, err = CompileFile(mf)
	require.Error(t, err)

	diag := diagnosticsOf(t, err)
	assert.Equal(t, []string{"invalid_path", "literal_not_coercible"}, diag.Codes())
	assert.Equal(t, "A", diag.Errors[0].Table)
	assert.Equal(t, "B", diag.Errors[1].Table)
}
