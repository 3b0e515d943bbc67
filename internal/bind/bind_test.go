package bind

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stage-mapper/internal/convert"
	"stage-mapper/internal/expand"
	"stage-mapper/internal/mapping"
	"stage-mapper/internal/plan"
	"stage-mapper/internal/resolve"
)

const doc = `{
  "policy": {
    "policyNumber": "P-1",
    "vehicleList": [
      {"vin": "V1", "year": 2019, "bought": "2020-05-01"},
      {"vin": "V2", "year": "20x9", "tags": ["a"]}
    ]
  }
}`

const mappingYAML = `
table_name: STG_VEHICLE
fields:
  POLICY_NO: {json_path: policy.policyNumber}
  VIN:       {json_path: "policy.vehicleList[].vin"}
  YEAR:      {json_path: "policy.vehicleList[].year", datatype: int}
  BOUGHT:    {json_path: "policy.vehicleList[].bought", datatype: datetime}
  TAGS:      {json_path: "policy.vehicleList[].tags"}
  MISSING:   {json_path: "policy.vehicleList[].nothing", datatype: int}
  FLAG:      {value: 1, datatype: int}
  LOAD_TS:   {value: current_timestamp(), datatype: datetime}
  LOAD_TEXT: {value: current_timestamp()}
`

type fixture struct {
	plan *plan.Plan
	doc  any
	rows []expand.RowContext
}

func setup(t *testing.T) fixture {
	t.Helper()

	tables, err := mapping.Load([]byte(mappingYAML))
	require.NoError(t, err)

	p, err := plan.Discover(tables[0])
	require.NoError(t, err)

	d, err := resolve.DecodeBytes([]byte(doc))
	require.NoError(t, err)

	rows, err := (&expand.Expander{}).Expand(d, p)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	return fixture{plan: p, doc: d, rows: rows}
}

func (f fixture) binding(t *testing.T, column string) plan.FieldBinding {
	t.Helper()

	for _, fb := range f.plan.Bindings {
		if fb.Field.Column == column {
			return fb
		}
	}

	require.Failf(t, "no binding", "column %s", column)

	return plan.FieldBinding{}
}

func TestBindPathLookup(t *testing.T) {
	f := setup(t)
	b := &Binder{Table: "STG_VEHICLE"}

	tests := []struct {
		column string
		row    int
		want   any
	}{
		{"POLICY_NO", 0, "P-1"},
		{"POLICY_NO", 1, "P-1"},
		{"VIN", 0, "V1"},
		{"VIN", 1, "V2"},
		{"YEAR", 0, int64(2019)},
		{"BOUGHT", 0, time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"BOUGHT", 1, nil},
		{"MISSING", 0, nil},
		{"TAGS", 0, nil},
	}

	for _, tt := range tests {
		got, err := b.Bind(f.binding(t, tt.column), f.rows[tt.row], f.doc)
		require.NoError(t, err, "%s row %d", tt.column, tt.row)
		assert.Equal(t, tt.want, got, "%s row %d", tt.column, tt.row)
	}
}

func TestBindNullBinding(t *testing.T) {
	f := setup(t)
	b := &Binder{Table: "STG_VEHICLE"}

	ctx := f.rows[0]
	ctx.Bindings = []expand.Binding{{Axis: "policy.vehicleList[]"}}

	got, err := b.Bind(f.binding(t, "VIN"), ctx, f.doc)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBindLiteralAndComputed(t *testing.T) {
	f := setup(t)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	b := &Binder{Table: "STG_VEHICLE", Now: now}

	for _, row := range f.rows {
		v, err := b.Bind(f.binding(t, "FLAG"), row, f.doc)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		ts, err := b.Bind(f.binding(t, "LOAD_TS"), row, f.doc)
		require.NoError(t, err)
		assert.Equal(t, now, ts)

		text, err := b.Bind(f.binding(t, "LOAD_TEXT"), row, f.doc)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-02T03:04:05Z", text)
	}
}

func TestBindCoercionError(t *testing.T) {
	f := setup(t)
	b := &Binder{Table: "STG_VEHICLE"}

	_, err := b.Bind(f.binding(t, "YEAR"), f.rows[1], f.doc)
	require.Error(t, err)

	var ce *CoercionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "STG_VEHICLE", ce.Table)
	assert.Equal(t, "YEAR", ce.Column)
	assert.Equal(t, convert.Int, ce.Datatype)
	assert.Equal(t, "20x9", ce.Value)
	assert.True(t, errors.Is(err, convert.ErrNotCoercible))

	// An array still unexpanded at the end of a path is not a scalar.
	_, err = b.Bind(f.binding(t, "TAGS"), f.rows[1], f.doc)
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "TAGS", ce.Column)
}
