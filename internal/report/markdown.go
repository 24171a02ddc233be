package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs one per-file report in Markdown format.
func (w *MarkdownWriter) Write(report *model.SpectrumReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Spectrum Analysis Report")
	md.PlainText("")
	w.writeReportTable(md, report)
	w.writeDetectionDetail(md, report)

	return len(md.String()), md.Build()
}

// WriteBatch outputs the batch with a summary section and one section per file.
func (w *MarkdownWriter) WriteBatch(reports []*model.SpectrumReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Mars Atmosphere Analysis")
	md.PlainText("")

	w.writeBatchSummary(md, reports)

	md.H2("Results")
	md.PlainText("")

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			"`" + r.SourceFile + "`",
			w.statusText(r),
			w.radiusText(r),
			strconv.Itoa(r.SampleCount),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source File", "Result", "Particle Radius", "Samples"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, r := range reports {
		md.H3("`" + r.SourceFile + "`")
		md.PlainText("")
		w.writeReportTable(md, r)
		w.writeDetectionDetail(md, r)
	}

	return len(md.String()), md.Build()
}

// writeBatchSummary writes the outcome tallies and a mermaid pie chart.
func (w *MarkdownWriter) writeBatchSummary(md *markdown.Markdown, reports []*model.SpectrumReport) {
	counts := countStatuses(reports)

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"☁️ Cloud detected", strconv.Itoa(counts.cloud)},
			{"✅ No cloud", strconv.Itoa(counts.clear)},
			{"❌ Error", strconv.Itoa(counts.errs)},
			{"**Total**", "**" + strconv.Itoa(len(reports)) + "**"},
		},
	})
	md.PlainText("")

	if len(reports) > 1 {
		w.writePieChart(md, counts)
	}

	if counts.errs > 0 {
		md.Warning(strconv.Itoa(counts.errs) + " file(s) failed to process. See the per-file sections below.")
		md.PlainText("")
	}
}

// writePieChart writes a mermaid pie chart for the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts batchCounts) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Batch Outcome Distribution"),
		piechart.WithShowData(true),
	)

	if counts.cloud > 0 {
		chart.LabelAndIntValue("Cloud detected", uint64(counts.cloud))
	}
	if counts.clear > 0 {
		chart.LabelAndIntValue("No cloud", uint64(counts.clear))
	}
	if counts.errs > 0 {
		chart.LabelAndIntValue("Error", uint64(counts.errs))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeReportTable writes the per-file properties table.
func (w *MarkdownWriter) writeReportTable(md *markdown.Markdown, report *model.SpectrumReport) {
	rows := [][]string{
		{"Source File", "`" + report.SourceFile + "`"},
		{"Processed", report.DateProcessed.Format("2006-01-02 15:04:05 MST")},
		{"Result", w.statusText(report)},
	}

	if report.SampleCount > 0 {
		rows = append(rows,
			[]string{"Samples", strconv.Itoa(report.SampleCount)},
			[]string{"Wavelength Range", formatFloat(report.WavelengthMin) + " – " + formatFloat(report.WavelengthMax) + " µm"},
		)
	}
	if report.CloudDetected() {
		rows = append(rows, []string{"Particle Radius", w.radiusText(report)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDetectionDetail writes the inspected-sample audit table.
func (w *MarkdownWriter) writeDetectionDetail(md *markdown.Markdown, report *model.SpectrumReport) {
	if report.Detection == nil {
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Detection Parameter", "Value"},
		Rows: [][]string{
			{"Target Wavelength", formatFloat(report.Detection.TargetWavelength) + " µm"},
			{"Inspected Sample", "index " + strconv.Itoa(report.Detection.Index) + " (" + formatFloat(report.Detection.Wavelength) + " µm)"},
			{"Absorption", formatFloat(report.Detection.Absorption)},
			{"Threshold", formatFloat(report.Detection.Threshold)},
		},
	})
	md.PlainText("")
}

// statusText returns the decorated outcome text for a report.
func (w *MarkdownWriter) statusText(report *model.SpectrumReport) string {
	switch report.Status() {
	case model.StatusError:
		if report.TimedOut {
			return "❌ Timed out - " + report.ErrorMessage
		}
		return "❌ Error - " + report.ErrorMessage
	case model.StatusCloud:
		return "☁️ Cloud detected"
	default:
		return "✅ No cloud"
	}
}

// radiusText renders the radius cell, or an em-dash placeholder when no
// estimate applies.
func (w *MarkdownWriter) radiusText(report *model.SpectrumReport) string {
	if report.Radius == nil {
		return "–"
	}
	return report.Radius.String()
}

// formatFloat renders a float compactly for table cells.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
