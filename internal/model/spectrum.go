package model

import (
	"errors"
	"fmt"
	"math"
)

// Spectrum validation errors.
// These are returned by NewSpectrum and can be checked with errors.Is.
var (
	// ErrEmptySpectrum is returned when a spectrum has no samples.
	// Detection and estimation require at least one sample to index into.
	ErrEmptySpectrum = errors.New("spectrum contains no samples")

	// ErrLengthMismatch is returned when the wavelength and absorption
	// columns have different lengths.
	ErrLengthMismatch = errors.New("wavelength and absorption columns differ in length")

	// ErrNotAscending is returned when wavelengths are not strictly increasing.
	// Spectrometer exports are sorted by wavelength; anything else indicates
	// a corrupt or truncated file.
	ErrNotAscending = errors.New("wavelengths are not strictly increasing")
)

// Spectrum is a single spectrometer measurement: absorption sampled at a
// set of strictly increasing wavelengths.
//
// Invariants (enforced by NewSpectrum):
//   - len(Wavelengths) == len(Absorption)
//   - len(Wavelengths) >= 1
//   - Wavelengths strictly increasing
//
// A Spectrum is immutable after creation. Callers must not modify the
// slices; the constructor copies its inputs so that loader buffers can be
// reused safely.
type Spectrum struct {
	// Wavelengths holds the sample wavelengths in micrometers, ascending.
	Wavelengths []float64 `json:"wavelengths"`

	// Absorption holds the unitless absorption value for each wavelength.
	Absorption []float64 `json:"absorption"`
}

// NewSpectrum creates a validated Spectrum from wavelength and absorption
// columns. The slices are copied, so the caller keeps ownership of its
// buffers.
func NewSpectrum(wavelengths, absorption []float64) (*Spectrum, error) {
	if len(wavelengths) != len(absorption) {
		return nil, fmt.Errorf("%w: %d wavelengths, %d absorption values",
			ErrLengthMismatch, len(wavelengths), len(absorption))
	}
	if len(wavelengths) == 0 {
		return nil, ErrEmptySpectrum
	}

	for i := 1; i < len(wavelengths); i++ {
		if wavelengths[i] <= wavelengths[i-1] {
			return nil, fmt.Errorf("%w: sample %d (%g µm) follows %g µm",
				ErrNotAscending, i, wavelengths[i], wavelengths[i-1])
		}
	}

	s := &Spectrum{
		Wavelengths: make([]float64, len(wavelengths)),
		Absorption:  make([]float64, len(absorption)),
	}
	copy(s.Wavelengths, wavelengths)
	copy(s.Absorption, absorption)

	return s, nil
}

// Len returns the number of samples in the spectrum.
func (s *Spectrum) Len() int {
	return len(s.Wavelengths)
}

// Min returns the lowest sampled wavelength in micrometers.
func (s *Spectrum) Min() float64 {
	return s.Wavelengths[0]
}

// Max returns the highest sampled wavelength in micrometers.
func (s *Spectrum) Max() float64 {
	return s.Wavelengths[len(s.Wavelengths)-1]
}

// NearestIndex returns the index of the sample whose wavelength is closest
// to target. When two samples are equally distant (possible only for
// adjacent samples, since wavelengths are strictly increasing), the lower
// index wins. This matches argmin-first-occurrence semantics.
//
// Design decision: We use a linear scan rather than binary search. Spectra
// from the orbiter instruments carry hundreds to a few thousand samples,
// and the scan is branch-predictable; the simpler code is not a measurable
// cost at this scale.
func (s *Spectrum) NearestIndex(target float64) int {
	best := 0
	bestDist := math.Abs(s.Wavelengths[0] - target)

	for i := 1; i < len(s.Wavelengths); i++ {
		d := math.Abs(s.Wavelengths[i] - target)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}

	return best
}
