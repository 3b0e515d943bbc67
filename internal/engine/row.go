package engine

import (
	"bytes"
	"encoding/json"
)

// Cell is one column value of an output row.
type Cell struct {
	Column string
	Value  any
}

// Row is an output row. Cells follow the mapping's column order.
type Row []Cell

// Values returns the cell values in column order.
func (r Row) Values() []any {
	out := make([]any, len(r))
	for i, c := range r {
		out[i] = c.Value
	}

	return out
}

// Get returns the value of a column.
func (r Row) Get(column string) (any, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}

	return nil, false
}

// MarshalJSON encodes the row as a JSON object whose keys keep column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(c.Column)
		if err != nil {
			return nil, err
		}

		val, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
