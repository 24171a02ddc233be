package report

import (
	"encoding/json"
	"io"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs one per-file report in JSON format.
func (w *JSONWriter) Write(report *model.SpectrumReport) (int, error) {
	return w.writeJSON(report)
}

// WriteBatch outputs the batch wrapped with summary counts.
func (w *JSONWriter) WriteBatch(reports []*model.SpectrumReport) (int, error) {
	counts := countStatuses(reports)

	return w.writeJSON(&BatchReport{
		FileCount:  len(reports),
		CloudCount: counts.cloud,
		ClearCount: counts.clear,
		ErrorCount: counts.errs,
		Reports:    reports,
	})
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// BatchReport wraps a batch of per-file reports with summary counts.
//
// Design decision: We wrap the reports rather than emitting a bare array
// because consumers of the machine-readable output need the batch-level
// tallies without re-deriving them, and the wrapper leaves room for
// output-specific fields without polluting the core data structures.
type BatchReport struct {
	// FileCount is the number of reports in the batch.
	FileCount int `json:"file_count"`

	// CloudCount is the number of files with a detected cloud.
	CloudCount int `json:"cloud_count"`

	// ClearCount is the number of files processed with no detection.
	ClearCount int `json:"clear_count"`

	// ErrorCount is the number of files that failed processing.
	ErrorCount int `json:"error_count"`

	// Reports holds the per-file reports, in input order.
	Reports []*model.SpectrumReport `json:"reports"`
}
