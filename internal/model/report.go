package model

import "time"

// Report status values returned by SpectrumReport.Status.
const (
	// StatusError indicates the file could not be processed.
	StatusError = "error"

	// StatusCloud indicates a water-ice signature was detected.
	StatusCloud = "cloud"

	// StatusClear indicates the file was processed and no cloud was found.
	StatusClear = "clear"
)

// SpectrumReport is the per-file processing result.
// It accumulates data as the file moves through the pipeline steps and is
// the unit of output (text/JSON/markdown) and of database storage.
//
// Design decision: We use a single struct rather than separate
// load/detect/estimate results to simplify serialization and database
// storage, mirroring how each input flows through the pipeline as one
// accumulating record.
type SpectrumReport struct {
	// SourceFile is the path of the spectrometer CSV this report describes.
	SourceFile string `json:"source_file"`

	// DateProcessed is the timestamp when processing started.
	DateProcessed time.Time `json:"date_processed"`

	// SampleCount is the number of wavelength/absorption pairs loaded.
	SampleCount int `json:"sample_count,omitempty"`

	// WavelengthMin and WavelengthMax bound the sampled range in µm.
	WavelengthMin float64 `json:"wavelength_min,omitempty"`
	WavelengthMax float64 `json:"wavelength_max,omitempty"`

	// Detection holds the ice-band detection outcome.
	// Nil if the file failed before detection ran.
	Detection *DetectionResult `json:"detection,omitempty"`

	// Radius holds the particle radius estimate.
	// Only present when a cloud was detected.
	Radius *RadiusEstimate `json:"radius_estimate,omitempty"`

	// Spectrum is the loaded measurement, carried between pipeline steps.
	// Excluded from JSON: reports must stay small enough to store per run.
	Spectrum *Spectrum `json:"-"`

	// PerformedSteps lists the pipeline steps that ran for this file.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut is true if processing hit the per-file deadline.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error contains any error that occurred during processing.
	// Only set if processing failed or partially failed.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewSpectrumReport creates a new report for the given source file.
func NewSpectrumReport(sourceFile string) *SpectrumReport {
	return &SpectrumReport{
		SourceFile:    sourceFile,
		DateProcessed: time.Now(),
	}
}

// SetSpectrum attaches the loaded spectrum and fills in the sample
// statistics derived from it.
func (r *SpectrumReport) SetSpectrum(s *Spectrum) {
	r.Spectrum = s
	r.SampleCount = s.Len()
	r.WavelengthMin = s.Min()
	r.WavelengthMax = s.Max()
}

// SetError records a processing error on the report, keeping the wrapped
// error for errors.Is checks and its message for serialization.
func (r *SpectrumReport) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// CloudDetected reports whether a water-ice signature was found.
// Returns false when detection never ran.
func (r *SpectrumReport) CloudDetected() bool {
	return r.Detection != nil && r.Detection.Detected
}

// Status classifies the report as StatusError, StatusCloud, or StatusClear.
// The batch summary uses this to keep the three outcomes visually distinct.
func (r *SpectrumReport) Status() string {
	if r.Error != nil || r.ErrorMessage != "" {
		return StatusError
	}
	if r.CloudDetected() {
		return StatusCloud
	}
	return StatusClear
}
