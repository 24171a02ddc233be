package analysis

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/config"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// ErrNilSpectrum is returned when detection or estimation is invoked
// without a loaded spectrum.
var ErrNilSpectrum = errors.New("no spectrum provided")

// Detector checks a spectrum for the water-ice absorption signature.
// A Detector is immutable after construction and safe for concurrent use.
type Detector struct {
	// target is the ice-band wavelength to inspect, in µm.
	target float64

	// threshold is the absorption value the ice-band sample must strictly
	// exceed.
	threshold float64

	// logger for structured logging.
	logger *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithTargetWavelength sets the ice-band wavelength in µm.
func WithTargetWavelength(target float64) DetectorOption {
	return func(d *Detector) {
		d.target = target
	}
}

// WithThreshold sets the detection threshold.
func WithThreshold(threshold float64) DetectorOption {
	return func(d *Detector) {
		d.threshold = threshold
	}
}

// WithDetectorLogger sets a custom logger for the detector.
func WithDetectorLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector with the given options.
// Defaults are the published ice-band wavelength (1.65 µm) and the
// calibration-run threshold (0.05).
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		target:    config.DefaultIceBand,
		threshold: config.DefaultThreshold,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Detect evaluates the spectrum against the ice-band threshold.
//
// The sample nearest the target wavelength is selected (no interpolation;
// ties keep the lower index) and the result is true iff its absorption
// strictly exceeds the threshold. Detect never modifies the spectrum, so
// repeated calls on the same spectrum yield identical results.
func (d *Detector) Detect(spectrum *model.Spectrum) (*model.DetectionResult, error) {
	if spectrum == nil {
		return nil, ErrNilSpectrum
	}
	if spectrum.Len() == 0 {
		// Spectra built through model.NewSpectrum cannot be empty, but the
		// zero value can be. Indexing into it would panic.
		return nil, fmt.Errorf("%w: cannot detect", model.ErrEmptySpectrum)
	}

	idx := spectrum.NearestIndex(d.target)
	result := &model.DetectionResult{
		Detected:         spectrum.Absorption[idx] > d.threshold,
		Index:            idx,
		Wavelength:       spectrum.Wavelengths[idx],
		Absorption:       spectrum.Absorption[idx],
		TargetWavelength: d.target,
		Threshold:        d.threshold,
	}

	d.logger.Debug("ice band evaluated",
		"target_um", d.target,
		"sample_um", result.Wavelength,
		"absorption", result.Absorption,
		"threshold", d.threshold,
		"detected", result.Detected,
	)

	return result, nil
}
