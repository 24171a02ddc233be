package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with one block per file
// and a batch summary that keeps the three outcomes (clear, cloud, error)
// visually distinct.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output, such as the exact
	// sample the detector inspected.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
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

// Write outputs one per-file report in human-readable format.
func (w *SimpleWriter) Write(report *model.SpectrumReport) (int, error) {
	var sb strings.Builder
	w.writeReport(&sb, report)
	return w.output.Write([]byte(sb.String()))
}

// WriteBatch outputs every report followed by a batch summary.
func (w *SimpleWriter) WriteBatch(reports []*model.SpectrumReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     MARS ATMOSPHERE ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	for _, r := range reports {
		w.writeReport(&sb, r)
	}

	w.writeSummary(&sb, reports)

	return w.output.Write([]byte(sb.String()))
}

// writeReport renders one file's outcome.
func (w *SimpleWriter) writeReport(sb *strings.Builder, report *model.SpectrumReport) {
	sb.WriteString(fmt.Sprintf("Processing %s...\n", report.SourceFile))

	switch report.Status() {
	case model.StatusError:
		if report.TimedOut {
			sb.WriteString(fmt.Sprintf("  ERROR: processing timed out: %s\n", report.ErrorMessage))
		} else {
			sb.WriteString(fmt.Sprintf("  ERROR: %s\n", report.ErrorMessage))
		}

	case model.StatusCloud:
		sb.WriteString("  Noctilucent cloud detected\n")
		if report.Radius != nil {
			if report.Radius.Undefined {
				sb.WriteString("  Particle radius: undefined (zero short-reference absorption)\n")
			} else {
				sb.WriteString(fmt.Sprintf("  Particle radius: %.2f µm\n", report.Radius.Radius))
			}
		}

	default:
		sb.WriteString("  No cloud detected\n")
	}

	if w.verbose && report.Detection != nil {
		sb.WriteString(fmt.Sprintf("  Inspected sample %d (%.4g µm, absorption %.4g, threshold %.4g)\n",
			report.Detection.Index,
			report.Detection.Wavelength,
			report.Detection.Absorption,
			report.Detection.Threshold,
		))
	}
	if w.verbose && report.SampleCount > 0 {
		sb.WriteString(fmt.Sprintf("  Spectrum: %d samples, %.4g-%.4g µm\n",
			report.SampleCount, report.WavelengthMin, report.WavelengthMax))
	}

	sb.WriteString("\n")
}

// writeSummary renders the outcome tallies for the batch.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, reports []*model.SpectrumReport) {
	counts := countStatuses(reports)

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Files processed: %d\n", len(reports)))
	sb.WriteString(fmt.Sprintf("  Clouds detected:   %d\n", counts.cloud))
	sb.WriteString(fmt.Sprintf("  No cloud detected: %d\n", counts.clear))
	sb.WriteString(fmt.Sprintf("  Errors:            %d\n", counts.errs))
}
