package pipeline

import (
	"context"
	"log/slog"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/analysis"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/config"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/loader"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// LoadStep reads the source file into the report.
// This step is the only one touching the filesystem; everything after it
// is pure computation on the loaded spectrum.
type LoadStep struct {
	// loader turns paths into spectra. Injected so tests can use fixtures.
	loader loader.Loader

	// logger for structured logging.
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a load step backed by the given loader.
func NewLoadStep(l loader.Loader, opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		loader: l,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do executes the load step.
func (s *LoadStep) Do(ctx context.Context, report *model.SpectrumReport) error {
	spectrum, err := s.loader.Load(ctx, report.SourceFile)
	if err != nil {
		return err
	}

	report.SetSpectrum(spectrum)

	s.logger.Debug("spectrum attached",
		"source", report.SourceFile,
		"samples", report.SampleCount,
	)

	return nil
}

// DetectStep checks the loaded spectrum for the water-ice signature.
type DetectStep struct {
	// detector carries the ice-band wavelength and threshold.
	detector *analysis.Detector

	// logger for structured logging.
	logger *slog.Logger
}

// DetectStepOption configures a DetectStep.
type DetectStepOption func(*DetectStep)

// WithDetectLogger sets a custom logger for the detect step.
func WithDetectLogger(logger *slog.Logger) DetectStepOption {
	return func(s *DetectStep) {
		s.logger = logger
	}
}

// NewDetectStep creates a detection step using the given detector.
func NewDetectStep(detector *analysis.Detector, opts ...DetectStepOption) *DetectStep {
	s := &DetectStep{
		detector: detector,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do executes the detection step.
func (s *DetectStep) Do(_ context.Context, report *model.SpectrumReport) error {
	result, err := s.detector.Detect(report.Spectrum)
	if err != nil {
		return err
	}

	report.Detection = result

	s.logger.Info("ice band checked",
		"source", report.SourceFile,
		"detected", result.Detected,
	)

	return nil
}

// EstimateStep derives the particle radius for detected clouds.
type EstimateStep struct {
	// estimator carries the reference wavelengths and fit constants.
	estimator *analysis.Estimator

	// logger for structured logging.
	logger *slog.Logger
}

// EstimateStepOption configures an EstimateStep.
type EstimateStepOption func(*EstimateStep)

// WithEstimateLogger sets a custom logger for the estimate step.
func WithEstimateLogger(logger *slog.Logger) EstimateStepOption {
	return func(s *EstimateStep) {
		s.logger = logger
	}
}

// NewEstimateStep creates an estimation step using the given estimator.
func NewEstimateStep(estimator *analysis.Estimator, opts ...EstimateStepOption) *EstimateStep {
	s := &EstimateStep{
		estimator: estimator,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *EstimateStep) Name() string {
	return "estimate"
}

// Do executes the estimation step.
// Radius estimation only applies to detected clouds; for clear spectra the
// step is a recorded no-op so the report omits the radius entirely.
func (s *EstimateStep) Do(_ context.Context, report *model.SpectrumReport) error {
	if !report.CloudDetected() {
		s.logger.Debug("skipping radius estimate, no cloud detected",
			"source", report.SourceFile,
		)
		return nil
	}

	estimate, err := s.estimator.Estimate(report.Spectrum)
	if err != nil {
		return err
	}

	report.Radius = estimate

	s.logger.Info("particle radius estimated",
		"source", report.SourceFile,
		"radius", estimate.String(),
	)

	return nil
}

// DefaultPipelineOption configures the calibration of a default pipeline.
type DefaultPipelineOption func(*defaultPipelineConfig)

// defaultPipelineConfig collects the knobs for DefaultPipeline.
type defaultPipelineConfig struct {
	calibration config.Calibration
	maxSamples  int
	logger      *slog.Logger
}

// WithPipelineCalibration sets the calibration constants for detection and
// estimation.
func WithPipelineCalibration(cal config.Calibration) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		c.calibration = cal
	}
}

// WithPipelineMaxSamples caps the rows read per file.
func WithPipelineMaxSamples(n int) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		c.maxSamples = n
	}
}

// WithPipelineLogger sets the logger shared by all default steps.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *defaultPipelineConfig) {
		c.logger = logger
	}
}

// DefaultPipeline assembles the standard load → detect → estimate pipeline.
func DefaultPipeline(opts ...DefaultPipelineOption) *Pipeline {
	cfg := &defaultPipelineConfig{
		calibration: config.Calibration{
			IceBand:        config.DefaultIceBand,
			Threshold:      config.DefaultThreshold,
			ShortReference: config.DefaultShortReference,
			LongReference:  config.DefaultLongReference,
			Slope:          config.DefaultRadiusSlope,
			Offset:         config.DefaultRadiusOffset,
		},
		maxSamples: config.DefaultMaxSamples,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	csvLoader := loader.NewCSVLoader(
		loader.WithMaxSamples(cfg.maxSamples),
		loader.WithLoaderLogger(cfg.logger),
	)

	detector := analysis.NewDetector(
		analysis.WithTargetWavelength(cfg.calibration.IceBand),
		analysis.WithThreshold(cfg.calibration.Threshold),
		analysis.WithDetectorLogger(cfg.logger),
	)

	estimator := analysis.NewEstimator(
		analysis.WithReferences(cfg.calibration.ShortReference, cfg.calibration.LongReference),
		analysis.WithFit(cfg.calibration.Slope, cfg.calibration.Offset),
		analysis.WithEstimatorLogger(cfg.logger),
	)

	p := New(WithLogger(cfg.logger))
	p.AddSteps(
		NewLoadStep(csvLoader, WithLoadLogger(cfg.logger)),
		NewDetectStep(detector, WithDetectLogger(cfg.logger)),
		NewEstimateStep(estimator, WithEstimateLogger(cfg.logger)),
	)

	return p
}
