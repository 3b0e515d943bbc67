package sink

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"stage-mapper/internal/engine"
)

// CSV writes a header line followed by one record per row.
type CSV struct {
	w       *csv.Writer
	closer  io.Closer
	columns []string
	header  bool
}

// NewCSV writes to w with the given header. The header is written even
// when no row ever arrives. If w is an io.Closer, Close closes it.
func NewCSV(w io.Writer, columns []string) *CSV {
	c := &CSV{w: csv.NewWriter(w), columns: slices.Clone(columns)}
	if closer, ok := w.(io.Closer); ok {
		c.closer = closer
	}

	return c
}

// Write implements Sink. columns must match the header.
func (c *CSV) Write(_ context.Context, columns []string, rows []engine.Row) error {
	if !slices.Equal(c.columns, columns) {
		return fmt.Errorf("csv columns changed from %v to %v", c.columns, columns)
	}

	if err := c.writeHeader(); err != nil {
		return err
	}

	record := make([]string, len(columns))

	for _, row := range rows {
		for i, cell := range row {
			record[i] = FormatValue(cell.Value)
		}

		if err := c.w.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	c.w.Flush()

	return c.w.Error()
}

func (c *CSV) writeHeader() error {
	if c.header {
		return nil
	}

	c.header = true

	if err := c.w.Write(c.columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	return nil
}

// Close implements Sink. The underlying writer is closed even when flushing fails.
func (c *CSV) Close() error {
	err := c.writeHeader()

	c.w.Flush()
	err = errors.Join(err, c.w.Error())

	if c.closer != nil {
		err = errors.Join(err, c.closer.Close())
	}

	return err
}
