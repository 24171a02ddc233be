package report

import (
	"io"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// Writer defines the interface for report output.
// Implementations write processing results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs a single per-file report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.SpectrumReport) (int, error)

	// WriteBatch outputs a full batch of reports, in input order, with a
	// summary distinguishing clear, cloud, and error outcomes.
	WriteBatch(reports []*model.SpectrumReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.SpectrumReport) (int, error) {
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

// WriteBatch outputs the batch to all configured Writers.
func (m *MultiWriter) WriteBatch(reports []*model.SpectrumReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteBatch(reports)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// batchCounts tallies report statuses for batch summaries.
type batchCounts struct {
	clear int
	cloud int
	errs  int
}

// countStatuses classifies every report in the batch.
func countStatuses(reports []*model.SpectrumReport) batchCounts {
	var c batchCounts
	for _, r := range reports {
		switch r.Status() {
		case model.StatusError:
			c.errs++
		case model.StatusCloud:
			c.cloud++
		default:
			c.clear++
		}
	}
	return c
}
