package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/nao1215/devspec/internal/model"
)

// SimpleWriter outputs a plain text table for terminal display.
type SimpleWriter struct {
	baseWriter

	// showURL adds the source page URL as the last column.
	showURL bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithURL adds a url column to the table.
func WithURL(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showURL = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders devices as a table followed by a count line.
func (w *SimpleWriter) Write(devices []model.DeviceInfo) (int, error) {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	header := w.columns()
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	table.Header(cells...)

	for _, d := range devices {
		row := d.Row()
		if w.showURL {
			row = append(row, d.URL)
		}
		if err := table.Append(row); err != nil {
			return 0, fmt.Errorf("failed to add table row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return 0, fmt.Errorf("failed to render table: %w", err)
	}
	fmt.Fprintf(&buf, "%d devices\n", len(devices))

	return w.output.Write(buf.Bytes())
}

func (w *SimpleWriter) columns() []string {
	cols := append([]string{}, model.DeviceColumns...)
	if w.showURL {
		cols = append(cols, "url")
	}
	return cols
}
