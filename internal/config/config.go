package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The calibration constants come from the radiative-transfer fits published
// by Rostova et al.; the operational defaults are chosen for typical orbiter
// CSV exports.
const (
	// DefaultIceBand is the water-ice absorption band the detector inspects,
	// in micrometers. 1.65 µm is the characteristic near-infrared water-ice
	// feature for Mars mesospheric clouds.
	DefaultIceBand = 1.65

	// DefaultThreshold is the absorption value the ice-band sample must
	// strictly exceed for a cloud to be flagged. Derived from the noise
	// floor of the synthetic calibration runs; expect recalibration per
	// instrument.
	DefaultThreshold = 0.05

	// DefaultShortReference is the short reference wavelength for radius
	// estimation, in micrometers.
	DefaultShortReference = 1.5

	// DefaultLongReference is the long reference wavelength for radius
	// estimation, in micrometers. The 2.0/1.5 µm absorption ratio
	// correlates with particle size because larger particles exhibit
	// different scattering and absorption efficiency.
	DefaultLongReference = 2.0

	// DefaultRadiusSlope is the empirical slope k of the linear radius fit
	// radius = k * ratio + c, in micrometers. Fit parameter from an
	// external radiative-transfer model; exposed so it can be recalibrated
	// without code changes.
	DefaultRadiusSlope = 12.5

	// DefaultRadiusOffset is the empirical offset c of the linear radius
	// fit, in micrometers.
	DefaultRadiusOffset = 0.2

	// DefaultBatchSize of 8 concurrent files balances throughput with
	// memory usage. Each in-flight file holds its full spectrum in memory,
	// so very large exports may warrant a lower value.
	DefaultBatchSize = 8

	// DefaultFileTimeout is the per-file processing deadline. Parsing and
	// analysis are local and fast; 30 seconds only trips on pathological
	// inputs (e.g. a multi-gigabyte file on slow storage).
	DefaultFileTimeout = 30 * time.Second

	// DefaultMaxSamples caps the number of rows read from a single CSV.
	// One million samples is far beyond any real instrument export and
	// bounds memory on corrupt or adversarial files.
	DefaultMaxSamples = 1_000_000

	// AppName is the application name used for XDG directory paths.
	AppName = "marsatmo"
)

// Config holds all configuration options for a marsatmo run.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CalibrationConfig, ReportConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// Targets is the list of spectrometer CSV paths to process, in input
	// order. The final report sequence preserves this order.
	Targets []string

	// ManifestPath optionally names a text file listing one CSV path per
	// line. Paths from the manifest are appended after positional targets.
	ManifestPath string

	// IceBand is the target wavelength for cloud detection in µm.
	IceBand float64

	// Threshold is the detection threshold applied at the ice band.
	Threshold float64

	// ShortReference and LongReference are the radius-estimation reference
	// wavelengths in µm.
	ShortReference float64
	LongReference  float64

	// RadiusSlope and RadiusOffset are the empirical fit constants k and c.
	RadiusSlope  float64
	RadiusOffset float64

	// BatchSize is the number of files processed concurrently.
	BatchSize int

	// FileTimeout is the per-file processing deadline.
	FileTimeout time.Duration

	// MaxSamples caps the rows read per file. Zero means use the default.
	MaxSamples int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the calibration config file.
	// If empty, the tool searches for .marsatmo in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Calibrations holds dataset-specific calibration overrides loaded
	// from the config file.
	Calibrations *File

	// JSONReport enables JSON report output instead of human-readable text.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for reports.
	// When set, reports are written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for the SQLite results database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to persist reports for later comparison.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because most defaults are non-zero (wavelengths, fit
// constants, timeouts). This also serves as documentation of the defaults.
func NewConfig() *Config {
	return &Config{
		IceBand:        DefaultIceBand,
		Threshold:      DefaultThreshold,
		ShortReference: DefaultShortReference,
		LongReference:  DefaultLongReference,
		RadiusSlope:    DefaultRadiusSlope,
		RadiusOffset:   DefaultRadiusOffset,
		BatchSize:      DefaultBatchSize,
		FileTimeout:    DefaultFileTimeout,
		MaxSamples:     DefaultMaxSamples,
	}
}

// XDGDataDir returns the XDG data directory for marsatmo.
// On Linux: ~/.local/share/marsatmo
// On macOS: ~/Library/Application Support/marsatmo
// On Windows: %LOCALAPPDATA%\marsatmo
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for marsatmo.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any processing begins.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one file to process
	if len(c.Targets) == 0 {
		return ErrNoInput
	}

	// Wavelengths must be physical
	if c.IceBand <= 0 || c.ShortReference <= 0 || c.LongReference <= 0 {
		return ErrInvalidWavelength
	}

	// The two reference wavelengths must differ or the ratio is trivially 1
	if c.ShortReference == c.LongReference {
		return ErrEqualReferences
	}

	// BatchSize must be positive; zero would mean no processing
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// FileTimeout must be positive; a zero deadline fails every file
	if c.FileTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// MaxSamples must be non-negative; zero means use the default
	if c.MaxSamples < 0 {
		return ErrInvalidMaxSamples
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// EffectiveCalibration resolves the calibration constants for one source
// file: CLI-level values overridden by any dataset entry from the config
// file that matches the file name.
func (c *Config) EffectiveCalibration(path string) Calibration {
	cal := Calibration{
		IceBand:        c.IceBand,
		Threshold:      c.Threshold,
		ShortReference: c.ShortReference,
		LongReference:  c.LongReference,
		Slope:          c.RadiusSlope,
		Offset:         c.RadiusOffset,
	}

	if c.Calibrations == nil {
		return cal
	}

	return c.Calibrations.Merge(cal, path)
}
