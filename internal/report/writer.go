package report

import (
	"io"

	"github.com/nao1215/devspec/internal/model"
)

// Writer renders a device list.
type Writer interface {
	// Write outputs devices to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(devices []model.DeviceInfo) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
