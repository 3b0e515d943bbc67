package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"stage-mapper/internal/engine"
)

// JSONLines writes one JSON object per row, keys in column order.
type JSONLines struct {
	enc    *json.Encoder
	closer io.Closer
}

// NewJSONLines writes to w. If w is an io.Closer, Close closes it.
func NewJSONLines(w io.Writer) *JSONLines {
	j := &JSONLines{enc: json.NewEncoder(w)}
	if closer, ok := w.(io.Closer); ok {
		j.closer = closer
	}

	return j
}

// Write implements Sink.
func (j *JSONLines) Write(_ context.Context, _ []string, rows []engine.Row) error {
	for _, row := range rows {
		if err := j.enc.Encode(row); err != nil {
			return fmt.Errorf("write json line: %w", err)
		}
	}

	return nil
}

// Close implements Sink.
func (j *JSONLines) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}

	return nil
}
