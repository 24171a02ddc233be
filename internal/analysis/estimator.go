package analysis

import (
	"fmt"
	"log/slog"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/config"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// Estimator derives an effective particle radius from the ratio of
// absorption at two reference wavelengths.
// An Estimator is immutable after construction and safe for concurrent use.
type Estimator struct {
	// shortRef and longRef are the reference wavelengths in µm.
	shortRef float64
	longRef  float64

	// slope and offset are the empirical fit constants k and c of
	// radius = k * (abs_long / abs_short) + c, in µm.
	slope  float64
	offset float64

	// logger for structured logging.
	logger *slog.Logger
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithReferences sets the short and long reference wavelengths in µm.
func WithReferences(short, long float64) EstimatorOption {
	return func(e *Estimator) {
		e.shortRef = short
		e.longRef = long
	}
}

// WithFit sets the empirical fit constants k (slope) and c (offset).
func WithFit(slope, offset float64) EstimatorOption {
	return func(e *Estimator) {
		e.slope = slope
		e.offset = offset
	}
}

// WithEstimatorLogger sets a custom logger for the estimator.
func WithEstimatorLogger(logger *slog.Logger) EstimatorOption {
	return func(e *Estimator) {
		e.logger = logger
	}
}

// NewEstimator creates an Estimator with the given options.
// Defaults are the Rostova et al. fit: references 1.5/2.0 µm, k=12.5, c=0.2.
func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		shortRef: config.DefaultShortReference,
		longRef:  config.DefaultLongReference,
		slope:    config.DefaultRadiusSlope,
		offset:   config.DefaultRadiusOffset,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Estimate computes the effective particle radius for the spectrum.
//
// The samples nearest the two reference wavelengths are located
// independently with the same nearest-neighbor rule the detector uses.
// When the short-reference absorption is exactly zero the ratio is
// undefined; the result carries the Undefined flag instead of an error.
// That is a deliberate saturating policy: a zero reference reading is a
// property of the measurement, not a failure of the pipeline.
func (e *Estimator) Estimate(spectrum *model.Spectrum) (*model.RadiusEstimate, error) {
	if spectrum == nil {
		return nil, ErrNilSpectrum
	}
	if spectrum.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot estimate radius", model.ErrEmptySpectrum)
	}

	shortIdx := spectrum.NearestIndex(e.shortRef)
	longIdx := spectrum.NearestIndex(e.longRef)

	result := &model.RadiusEstimate{
		ShortIndex:      shortIdx,
		LongIndex:       longIdx,
		ShortWavelength: spectrum.Wavelengths[shortIdx],
		LongWavelength:  spectrum.Wavelengths[longIdx],
		ShortAbsorption: spectrum.Absorption[shortIdx],
		LongAbsorption:  spectrum.Absorption[longIdx],
	}

	if result.ShortAbsorption == 0 {
		result.Undefined = true

		e.logger.Debug("radius undefined, short-reference absorption is zero",
			"short_um", result.ShortWavelength,
			"long_um", result.LongWavelength,
		)

		return result, nil
	}

	result.Radius = e.slope*(result.LongAbsorption/result.ShortAbsorption) + e.offset

	e.logger.Debug("radius estimated",
		"short_um", result.ShortWavelength,
		"long_um", result.LongWavelength,
		"ratio", result.LongAbsorption/result.ShortAbsorption,
		"radius_um", result.Radius,
	)

	return result, nil
}
