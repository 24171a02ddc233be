package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeFixture writes a CSV fixture and returns its path.
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestCSVLoaderLoad tests loading well-formed spectrum files.
func TestCSVLoaderLoad(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		content string
		samples int
	}{
		{
			name:    "plain file",
			content: "wavelength,absorption\n1.0,0.01\n1.65,0.07\n2.0,0.02\n",
			samples: 3,
		},
		{
			name:    "header with units and mixed case",
			content: "Wavelength (um),Absorption (unitless)\n1.5,0.1\n2.0,0.2\n",
			samples: 2,
		},
		{
			name:    "utf-8 BOM from instrument export",
			content: "\xef\xbb\xbfwavelength,absorption\n1.0,0.05\n",
			samples: 1,
		},
		{
			name:    "whitespace around values",
			content: "wavelength, absorption\n 1.0, 0.01\n 2.0, 0.02\n",
			samples: 2,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeFixture(t, "spectrum.csv", tc.content)
			l := NewCSVLoader()

			s, err := l.Load(context.Background(), path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Len() != tc.samples {
				t.Errorf("Len() = %d, expected %d", s.Len(), tc.samples)
			}
		})
	}
}

// TestCSVLoaderNotFound tests the missing-file error path.
func TestCSVLoaderNotFound(t *testing.T) {
	t.Parallel()

	l := NewCSVLoader()
	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestCSVLoaderFormatErrors tests that malformed files yield DataFormatError
// with a useful position.
func TestCSVLoaderFormatErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  string
		wantLine int
	}{
		{
			name:     "empty file",
			content:  "",
			wantLine: 0,
		},
		{
			name:     "header only",
			content:  "wavelength,absorption\n",
			wantLine: 0,
		},
		{
			name:     "wrong header name",
			content:  "frequency,absorption\n1.0,0.1\n",
			wantLine: 1,
		},
		{
			name:     "swapped columns",
			content:  "absorption,wavelength\n0.1,1.0\n",
			wantLine: 1,
		},
		{
			name:     "non-numeric wavelength",
			content:  "wavelength,absorption\nabc,0.1\n",
			wantLine: 2,
		},
		{
			name:     "non-numeric absorption",
			content:  "wavelength,absorption\n1.0,n/a\n",
			wantLine: 2,
		},
		{
			name:     "three columns",
			content:  "wavelength,absorption\n1.0,0.1,0.2\n",
			wantLine: 2,
		},
		{
			name:     "descending wavelengths",
			content:  "wavelength,absorption\n2.0,0.1\n1.0,0.2\n",
			wantLine: 0,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeFixture(t, "bad.csv", tc.content)
			l := NewCSVLoader()

			_, err := l.Load(context.Background(), path)

			var formatErr *DataFormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected *DataFormatError, got %v", err)
			}
			if formatErr.Path != path {
				t.Errorf("Path = %q, expected %q", formatErr.Path, path)
			}
			if formatErr.Line != tc.wantLine {
				t.Errorf("Line = %d, expected %d (error: %v)", formatErr.Line, tc.wantLine, err)
			}
		})
	}
}

// TestCSVLoaderMaxSamples tests the sample cap.
func TestCSVLoaderMaxSamples(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "big.csv", "wavelength,absorption\n1.0,0.1\n2.0,0.2\n3.0,0.3\n")
	l := NewCSVLoader(WithMaxSamples(2))

	_, err := l.Load(context.Background(), path)

	var formatErr *DataFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected *DataFormatError, got %v", err)
	}
}

// TestCSVLoaderCancelledContext tests that a cancelled context aborts the load.
func TestCSVLoaderCancelledContext(t *testing.T) {
	t.Parallel()

	path := writeFixture(t, "spectrum.csv", "wavelength,absorption\n1.0,0.1\n")
	l := NewCSVLoader()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := l.Load(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
