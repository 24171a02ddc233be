package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/thmotdod1e/mars-atmo-analysis/internal/model"
)

// TestEstimatorEstimate tests the empirical radius formula.
func TestEstimatorEstimate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		wavelengths []float64
		absorption  []float64
		opts        []EstimatorOption
		wantRadius  float64
	}{
		{
			name:        "reference values from the published fit",
			wavelengths: []float64{1.5, 2.0},
			absorption:  []float64{0.1, 0.2},
			// 12.5 * (0.2 / 0.1) + 0.2
			wantRadius: 25.2,
		},
		{
			name:        "references off the sampled grid use nearest samples",
			wavelengths: []float64{1.45, 1.98},
			absorption:  []float64{0.2, 0.1},
			// 12.5 * (0.1 / 0.2) + 0.2
			wantRadius: 6.45,
		},
		{
			name:        "custom fit constants",
			wavelengths: []float64{1.5, 2.0},
			absorption:  []float64{0.1, 0.1},
			opts:        []EstimatorOption{WithFit(10.0, 1.0)},
			wantRadius:  11.0,
		},
		{
			name:        "custom reference wavelengths",
			wavelengths: []float64{1.0, 3.0},
			absorption:  []float64{0.5, 0.25},
			opts:        []EstimatorOption{WithReferences(1.0, 3.0)},
			// 12.5 * (0.25 / 0.5) + 0.2
			wantRadius: 6.45,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := mustSpectrum(t, tc.wavelengths, tc.absorption)
			e := NewEstimator(tc.opts...)

			result, err := e.Estimate(s)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Undefined {
				t.Fatal("expected a defined radius")
			}
			if math.Abs(result.Radius-tc.wantRadius) > 1e-9 {
				t.Errorf("Radius = %v, expected %v", result.Radius, tc.wantRadius)
			}
		})
	}
}

// TestEstimatorUndefinedSentinel tests the saturating zero-denominator policy.
func TestEstimatorUndefinedSentinel(t *testing.T) {
	t.Parallel()

	s := mustSpectrum(t, []float64{1.5, 2.0}, []float64{0.0, 0.2})
	e := NewEstimator()

	result, err := e.Estimate(s)
	if err != nil {
		t.Fatalf("zero short-reference absorption must not be an error, got %v", err)
	}
	if !result.Undefined {
		t.Error("expected Undefined sentinel")
	}
	if result.Radius != 0 {
		t.Errorf("Radius = %v, expected 0 for the sentinel", result.Radius)
	}
}

// TestEstimatorRecordsSamples tests that the result carries both reference
// samples for auditability.
func TestEstimatorRecordsSamples(t *testing.T) {
	t.Parallel()

	s := mustSpectrum(t, []float64{1.0, 1.5, 1.65, 2.0, 3.0}, []float64{0.9, 0.1, 0.5, 0.2, 0.9})
	e := NewEstimator()

	result, err := e.Estimate(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ShortIndex != 1 || result.LongIndex != 3 {
		t.Errorf("indices = %d/%d, expected 1/3", result.ShortIndex, result.LongIndex)
	}
	if result.ShortAbsorption != 0.1 || result.LongAbsorption != 0.2 {
		t.Errorf("absorptions = %v/%v, expected 0.1/0.2", result.ShortAbsorption, result.LongAbsorption)
	}
}

// TestEstimatorIdempotent tests repeated estimation on the same spectrum.
func TestEstimatorIdempotent(t *testing.T) {
	t.Parallel()

	s := mustSpectrum(t, []float64{1.5, 2.0}, []float64{0.1, 0.2})
	e := NewEstimator()

	first, err := e.Estimate(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Estimate(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *first != *second {
		t.Errorf("estimation not idempotent: %+v vs %+v", first, second)
	}
}

// TestEstimatorInvalidInput tests the empty and nil spectrum error paths.
func TestEstimatorInvalidInput(t *testing.T) {
	t.Parallel()

	e := NewEstimator()

	t.Run("nil spectrum", func(t *testing.T) {
		t.Parallel()
		if _, err := e.Estimate(nil); !errors.Is(err, ErrNilSpectrum) {
			t.Errorf("expected ErrNilSpectrum, got %v", err)
		}
	})

	t.Run("zero-value spectrum", func(t *testing.T) {
		t.Parallel()
		if _, err := e.Estimate(&model.Spectrum{}); !errors.Is(err, model.ErrEmptySpectrum) {
			t.Errorf("expected ErrEmptySpectrum, got %v", err)
		}
	})
}
