package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/config"
	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// Loader is the capability of turning a file path into a Spectrum.
// The CSV implementation below is the production loader; tests substitute
// fixture implementations so analysis logic can be exercised without disk.
type Loader interface {
	// Load reads and validates the spectrum at path.
	// It returns ErrNotFound when the path does not resolve to readable
	// data and a *DataFormatError when the content is malformed.
	Load(ctx context.Context, path string) (*model.Spectrum, error)
}

// CSVLoader reads two-column spectrometer CSV exports.
type CSVLoader struct {
	// maxSamples caps the number of data rows read from one file.
	maxSamples int

	// logger for structured logging.
	logger *slog.Logger
}

// CSVLoaderOption configures a CSVLoader.
type CSVLoaderOption func(*CSVLoader)

// WithMaxSamples caps the number of data rows read per file.
// Rows beyond the cap make the file malformed rather than silently
// truncated: a spectrum cut mid-file would bias the nearest-sample lookup.
func WithMaxSamples(n int) CSVLoaderOption {
	return func(l *CSVLoader) {
		if n > 0 {
			l.maxSamples = n
		}
	}
}

// WithLoaderLogger sets a custom logger for the loader.
func WithLoaderLogger(logger *slog.Logger) CSVLoaderOption {
	return func(l *CSVLoader) {
		l.logger = logger
	}
}

// NewCSVLoader creates a loader for two-column spectrometer CSV files.
func NewCSVLoader(opts ...CSVLoaderOption) *CSVLoader {
	l := &CSVLoader{
		maxSamples: config.DefaultMaxSamples,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads the spectrum at path.
//
// The file must contain one header row naming a wavelength column and an
// absorption column (case-insensitive; unit suffixes like "wavelength (um)"
// are accepted), followed by numeric rows in ascending wavelength order.
func (l *CSVLoader) Load(ctx context.Context, path string) (*model.Spectrum, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // User-provided data path is intentional
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	spectrum, err := l.parse(ctx, path, f)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("spectrum loaded",
		"path", path,
		"samples", spectrum.Len(),
		"min_um", spectrum.Min(),
		"max_um", spectrum.Max(),
	)

	return spectrum, nil
}

// parse reads the CSV body. Split out from Load so tests can parse from
// in-memory readers.
func (l *CSVLoader) parse(ctx context.Context, path string, r io.Reader) (*model.Spectrum, error) {
	// Instrument software (notably Excel re-exports) prepends byte-order
	// marks and sometimes emits UTF-16. BOMOverride switches decoders
	// based on the BOM and falls back to plain UTF-8.
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DataFormatError{Path: path, Reason: "file is empty"}
	}
	if err != nil {
		return nil, &DataFormatError{Path: path, Line: 1, Reason: "cannot read header row", Err: err}
	}
	if err := validateHeader(path, header); err != nil {
		return nil, err
	}

	var wavelengths, absorption []float64
	line := 1

	for {
		// Honor cancellation on very large files
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &DataFormatError{
					Path:   path,
					Line:   line,
					Reason: "row does not have exactly two columns",
					Err:    err,
				}
			}
			return nil, &DataFormatError{Path: path, Line: line, Reason: "cannot read row", Err: err}
		}

		w, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			return nil, &DataFormatError{
				Path:   path,
				Line:   line,
				Reason: fmt.Sprintf("wavelength %q is not numeric", record[0]),
				Err:    err,
			}
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, &DataFormatError{
				Path:   path,
				Line:   line,
				Reason: fmt.Sprintf("absorption %q is not numeric", record[1]),
				Err:    err,
			}
		}

		wavelengths = append(wavelengths, w)
		absorption = append(absorption, a)

		if len(wavelengths) > l.maxSamples {
			return nil, &DataFormatError{
				Path:   path,
				Line:   line,
				Reason: fmt.Sprintf("more than %d samples", l.maxSamples),
			}
		}
	}

	if len(wavelengths) == 0 {
		return nil, &DataFormatError{Path: path, Reason: "no data rows after header"}
	}

	spectrum, err := model.NewSpectrum(wavelengths, absorption)
	if err != nil {
		// Constructor invariants (ascending order etc.) map to format errors:
		// the file exists and is CSV, but the columns are not a valid spectrum.
		return nil, &DataFormatError{Path: path, Reason: err.Error(), Err: err}
	}

	return spectrum, nil
}

// validateHeader checks that the header names a wavelength and an
// absorption column, in that order.
func validateHeader(path string, header []string) error {
	if len(header) != 2 {
		return &DataFormatError{Path: path, Line: 1, Reason: "header must have exactly two columns"}
	}

	if !headerMatches(header[0], "wavelength") {
		return &DataFormatError{
			Path:   path,
			Line:   1,
			Reason: fmt.Sprintf("first column is %q, expected wavelength", header[0]),
		}
	}
	if !headerMatches(header[1], "absorption") {
		return &DataFormatError{
			Path:   path,
			Line:   1,
			Reason: fmt.Sprintf("second column is %q, expected absorption", header[1]),
		}
	}

	return nil
}

// headerMatches reports whether a header cell names the expected column.
// Matching is case-insensitive and ignores unit annotations, so
// "Wavelength (um)" and "ABSORPTION" both match.
func headerMatches(cell, expected string) bool {
	cell = strings.ToLower(strings.TrimSpace(cell))
	return cell == expected || strings.HasPrefix(cell, expected+" ") || strings.HasPrefix(cell, expected+"(")
}
