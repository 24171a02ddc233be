package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no spectrometer file is specified.
	// This occurs when neither positional arguments nor --manifest
	// provide any paths.
	ErrNoInput = errors.New("no input files specified: provide CSV paths or use --manifest")

	// ErrInvalidWavelength is returned when a target or reference
	// wavelength is zero or negative. Wavelengths are physical quantities
	// in micrometers and must be positive.
	ErrInvalidWavelength = errors.New("invalid wavelength: must be positive")

	// ErrEqualReferences is returned when the short and long reference
	// wavelengths coincide. The absorption ratio would always be 1 and
	// the radius estimate meaningless.
	ErrEqualReferences = errors.New("invalid references: short and long reference wavelengths must differ")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no concurrent workers, effectively
	// stopping processing.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidTimeout is returned when the per-file timeout is not
	// positive. A zero deadline would fail every file immediately.
	ErrInvalidTimeout = errors.New("invalid file timeout: must be positive")

	// ErrInvalidMaxSamples is returned when the sample cap is negative.
	// Use 0 to apply the default cap.
	ErrInvalidMaxSamples = errors.New("invalid max samples: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
