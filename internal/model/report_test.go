package model

import (
	"errors"
	"testing"
)

// TestSpectrumReportStatus tests the three-way status classification.
func TestSpectrumReportStatus(t *testing.T) {
	t.Parallel()

	t.Run("error takes precedence", func(t *testing.T) {
		t.Parallel()

		r := NewSpectrumReport("bad.csv")
		r.SetError(errors.New("boom"))
		r.Detection = &DetectionResult{Detected: true}

		if r.Status() != StatusError {
			t.Errorf("Status() = %q, expected %q", r.Status(), StatusError)
		}
	})

	t.Run("cloud detected", func(t *testing.T) {
		t.Parallel()

		r := NewSpectrumReport("cloud.csv")
		r.Detection = &DetectionResult{Detected: true}

		if r.Status() != StatusCloud {
			t.Errorf("Status() = %q, expected %q", r.Status(), StatusCloud)
		}
		if !r.CloudDetected() {
			t.Error("expected CloudDetected() to be true")
		}
	})

	t.Run("clear when detection ran and found nothing", func(t *testing.T) {
		t.Parallel()

		r := NewSpectrumReport("clear.csv")
		r.Detection = &DetectionResult{Detected: false}

		if r.Status() != StatusClear {
			t.Errorf("Status() = %q, expected %q", r.Status(), StatusClear)
		}
	})

	t.Run("clear when detection never ran", func(t *testing.T) {
		t.Parallel()

		r := NewSpectrumReport("pending.csv")
		if r.CloudDetected() {
			t.Error("expected CloudDetected() to be false before detection")
		}
	})
}

// TestSetSpectrum tests that sample statistics are derived from the spectrum.
func TestSetSpectrum(t *testing.T) {
	t.Parallel()

	s, err := NewSpectrum([]float64{1.0, 1.65, 2.5}, []float64{0.01, 0.07, 0.02})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := NewSpectrumReport("orbit_4412.csv")
	r.SetSpectrum(s)

	if r.SampleCount != 3 {
		t.Errorf("SampleCount = %d, expected 3", r.SampleCount)
	}
	if r.WavelengthMin != 1.0 || r.WavelengthMax != 2.5 {
		t.Errorf("range = [%v, %v], expected [1.0, 2.5]", r.WavelengthMin, r.WavelengthMax)
	}
}

// TestRadiusEstimateString tests human-readable radius formatting.
func TestRadiusEstimateString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		estimate RadiusEstimate
		expected string
	}{
		{"defined radius", RadiusEstimate{Radius: 25.2}, "25.20 µm"},
		{"rounding", RadiusEstimate{Radius: 1.005}, "1.00 µm"},
		{"undefined sentinel", RadiusEstimate{Radius: 0, Undefined: true}, "undefined"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.estimate.String(); got != tc.expected {
				t.Errorf("String() = %q, expected %q", got, tc.expected)
			}
		})
	}
}

// TestSetError tests error recording for serialization.
func TestSetError(t *testing.T) {
	t.Parallel()

	r := NewSpectrumReport("x.csv")
	sentinel := errors.New("file vanished")
	r.SetError(sentinel)

	if !errors.Is(r.Error, sentinel) {
		t.Error("expected wrapped error to be preserved")
	}
	if r.ErrorMessage != "file vanished" {
		t.Errorf("ErrorMessage = %q, expected %q", r.ErrorMessage, "file vanished")
	}
}
