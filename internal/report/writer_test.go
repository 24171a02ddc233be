package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// cloudReport builds a report with a detected cloud and a defined radius.
func cloudReport() *model.SpectrumReport {
	report := model.NewSpectrumReport("orbit_0042.csv")
	report.SampleCount = 5
	report.WavelengthMin = 1.0
	report.WavelengthMax = 3.0
	report.Detection = &model.DetectionResult{
		Detected:         true,
		Index:            2,
		Wavelength:       1.65,
		Absorption:       0.07,
		TargetWavelength: 1.65,
		Threshold:        0.05,
	}
	report.Radius = &model.RadiusEstimate{Radius: 25.2}
	return report
}

// clearReport builds a report with no detection.
func clearReport() *model.SpectrumReport {
	report := model.NewSpectrumReport("orbit_0043.csv")
	report.SampleCount = 5
	report.Detection = &model.DetectionResult{
		Detected:         false,
		Index:            2,
		Wavelength:       1.65,
		Absorption:       0.01,
		TargetWavelength: 1.65,
		Threshold:        0.05,
	}
	return report
}

// errorReport builds a report for a failed file.
func errorReport() *model.SpectrumReport {
	report := model.NewSpectrumReport("missing.csv")
	report.SetError(errors.New("spectrum file not found: missing.csv"))
	return report
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("cloud report shows radius to two decimals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(cloudReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Processing orbit_0042.csv") {
			t.Error("expected processing announcement")
		}
		if !strings.Contains(output, "Noctilucent cloud detected") {
			t.Error("expected detection line")
		}
		if !strings.Contains(output, "25.20 µm") {
			t.Errorf("expected radius formatted to two decimals, got:\n%s", output)
		}
	})

	t.Run("clear report omits radius", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(clearReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No cloud detected") {
			t.Error("expected clear line")
		}
		if strings.Contains(output, "radius") {
			t.Error("clear report must not mention a radius")
		}
	})

	t.Run("undefined radius is rendered as undefined", func(t *testing.T) {
		t.Parallel()

		report := cloudReport()
		report.Radius = &model.RadiusEstimate{Undefined: true}

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		if _, err := w.Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "undefined") {
			t.Errorf("expected undefined sentinel in output, got:\n%s", output)
		}
		if strings.Contains(output, "0.00 µm") {
			t.Error("undefined radius must not be rendered as 0.00 µm")
		}
	})

	t.Run("error report shows error line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(errorReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "ERROR:") {
			t.Error("expected error marker")
		}
		if !strings.Contains(output, "spectrum file not found") {
			t.Error("expected error message")
		}
	})

	t.Run("verbose output includes inspected sample", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(cloudReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Inspected sample 2") {
			t.Error("expected inspected sample detail in verbose output")
		}
	})

	t.Run("batch summary distinguishes the three outcomes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		reports := []*model.SpectrumReport{cloudReport(), clearReport(), errorReport()}
		if _, err := w.WriteBatch(reports); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Files processed: 3") {
			t.Error("expected batch total")
		}
		if !strings.Contains(output, "Clouds detected:   1") {
			t.Error("expected cloud count")
		}
		if !strings.Contains(output, "No cloud detected: 1") {
			t.Error("expected clear count")
		}
		if !strings.Contains(output, "Errors:            1") {
			t.Error("expected error count")
		}
	})
}

// TestJSONWriter tests the machine-readable writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("single report round trips", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(cloudReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.SpectrumReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.SourceFile != "orbit_0042.csv" {
			t.Errorf("SourceFile = %q", decoded.SourceFile)
		}
		if decoded.Radius == nil || decoded.Radius.Radius != 25.2 {
			t.Errorf("Radius = %+v, expected 25.2", decoded.Radius)
		}
	})

	t.Run("batch carries summary counts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		reports := []*model.SpectrumReport{cloudReport(), clearReport(), errorReport()}
		if _, err := w.WriteBatch(reports); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded BatchReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.FileCount != 3 || decoded.CloudCount != 1 || decoded.ClearCount != 1 || decoded.ErrorCount != 1 {
			t.Errorf("counts = %+v", decoded)
		}
		if len(decoded.Reports) != 3 {
			t.Errorf("expected 3 reports, got %d", len(decoded.Reports))
		}
		// Input order preserved
		if decoded.Reports[0].SourceFile != "orbit_0042.csv" {
			t.Errorf("first report = %q", decoded.Reports[0].SourceFile)
		}
	})

	t.Run("error message is serialized", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(errorReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "spectrum file not found") {
			t.Error("expected error message in JSON output")
		}
	})
}

// TestMarkdownWriter tests the markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("single report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(cloudReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Spectrum Analysis Report") {
			t.Error("expected report title")
		}
		if !strings.Contains(output, "orbit_0042.csv") {
			t.Error("expected source file")
		}
		if !strings.Contains(output, "25.20 µm") {
			t.Error("expected radius in table")
		}
	})

	t.Run("batch includes summary table and pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		reports := []*model.SpectrumReport{cloudReport(), clearReport(), errorReport()}
		if _, err := w.WriteBatch(reports); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Summary") {
			t.Error("expected summary section")
		}
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid pie chart for multi-file batch")
		}
		if !strings.Contains(output, "missing.csv") {
			t.Error("expected failed file in results")
		}
	})
}

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

	n, err := mw.Write(cloudReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != text.Len()+jsonBuf.Len() {
		t.Errorf("total bytes = %d, expected %d", n, text.Len()+jsonBuf.Len())
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("expected both writers to receive output")
	}
}
