package report

import (
	"io"

	"github.com/reconforge/netrecon/internal/model"
)

// Writer renders one scan report to its configured destination.
type Writer interface {
	// Write outputs the report. It returns the number of bytes written
	// and any error encountered.
	Write(report *model.ReconReport) (int, error)
}

// baseWriter carries the output destination shared by all writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter writing to output.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// MultiWriter fans one report out to several writers, for example a
// terminal summary plus a JSON file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to every given Writer.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all writers, stopping on the first error.
func (m *MultiWriter) Write(report *model.ReconReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
