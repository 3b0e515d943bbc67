package sink

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stage-mapper/internal/engine"
)

var columns = []string{"VIN", "YEAR", "PRICE", "LOADED", "NOTE"}

func sampleRows() []engine.Row {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	return []engine.Row{
		{
			{Column: "VIN", Value: "V1"},
			{Column: "YEAR", Value: int64(2020)},
			{Column: "PRICE", Value: decimal.RequireFromString("12.50")},
			{Column: "LOADED", Value: ts},
			{Column: "NOTE", Value: nil},
		},
		{
			{Column: "VIN", Value: "V,2"},
			{Column: "YEAR", Value: nil},
			{Column: "PRICE", Value: nil},
			{Column: "LOADED", Value: ts},
			{Column: "NOTE", Value: true},
		},
	}
}

func TestFormatValue(t *testing.T) {
	assert.Empty(t, FormatValue(nil))
	assert.Equal(t, "1.5", FormatValue(1.5))
	assert.Equal(t, "false", FormatValue(false))
	assert.Equal(t, "7", FormatValue(int64(7)))
	assert.Equal(t, "3", FormatValue(3))
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer

	s := NewCSV(&buf, columns)
	require.NoError(t, s.Write(context.Background(), columns, sampleRows()))
	require.NoError(t, s.Write(context.Background(), columns, sampleRows()[:1]))
	require.NoError(t, s.Close())

	assert.Equal(t,
		"VIN,YEAR,PRICE,LOADED,NOTE\n"+
			"V1,2020,12.5,2024-06-01T12:00:00Z,\n"+
			"\"V,2\",,,2024-06-01T12:00:00Z,true\n"+
			"V1,2020,12.5,2024-06-01T12:00:00Z,\n",
		buf.String())

	err := s.Write(context.Background(), []string{"OTHER"}, nil)
	require.Error(t, err)
}

type failingFile struct {
	closed bool
}

func (f *failingFile) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func (f *failingFile) Close() error {
	f.closed = true
	return nil
}

func TestCSVHeaderWithoutRows(t *testing.T) {
	var buf bytes.Buffer

	s := NewCSV(&buf, columns)
	require.NoError(t, s.Close())
	assert.Equal(t, "VIN,YEAR,PRICE,LOADED,NOTE\n", buf.String())
}

func TestCSVCloseAlwaysClosesWriter(t *testing.T) {
	f := &failingFile{}

	s := NewCSV(f, columns)
	err := s.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, f.closed)
}

func TestJSONLines(t *testing.T) {
	var buf bytes.Buffer

	s := NewJSONLines(&buf)
	require.NoError(t, s.Write(context.Background(), columns, sampleRows()))
	require.NoError(t, s.Close())

	assert.Equal(t,
		`{"VIN":"V1","YEAR":2020,"PRICE":"12.5","LOADED":"2024-06-01T12:00:00Z","NOTE":null}`+"\n"+
			`{"VIN":"V,2","YEAR":null,"PRICE":null,"LOADED":"2024-06-01T12:00:00Z","NOTE":true}`+"\n",
		buf.String())
}

type fakeCopier struct {
	table   pgx.Identifier
	columns []string
	rows    [][]any
	err     error
}

func (f *fakeCopier) CopyFrom(_ context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}

	f.table = table
	f.columns = columns

	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}

		f.rows = append(f.rows, values)
	}

	return int64(len(f.rows)), src.Err()
}

func TestPostgres(t *testing.T) {
	db := &fakeCopier{}

	s := NewPostgres(db, "stage.STG_VEHICLE")
	require.NoError(t, s.Write(context.Background(), columns, sampleRows()))
	require.NoError(t, s.Write(context.Background(), columns, nil))
	require.NoError(t, s.Close())

	assert.Equal(t, pgx.Identifier{"stage", "STG_VEHICLE"}, db.table)
	assert.Equal(t, columns, db.columns)
	require.Len(t, db.rows, 2)
	assert.Equal(t, "V1", db.rows[0][0])
	assert.Nil(t, db.rows[1][1])
	assert.Equal(t, int64(2), s.Copied)
}

func TestPostgresError(t *testing.T) {
	s := NewPostgres(&fakeCopier{err: errors.New("relation does not exist")}, "STG_VEHICLE")

	err := s.Write(context.Background(), columns, sampleRows())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `copy into "STG_VEHICLE"`)
	assert.Zero(t, s.Copied)
}
