package model

import "fmt"

// RadiusEstimate is the effective cloud particle radius derived from the
// ratio of absorption at two reference wavelengths.
//
// Design decision: The legacy processing script returned 0.0 when the
// short-reference absorption was exactly zero, which is indistinguishable
// from a valid tiny-particle estimate. We carry an explicit Undefined flag
// instead; the numeric field stays 0.0 in that case for compatibility with
// existing consumers, but every writer renders the flag, not the number.
type RadiusEstimate struct {
	// Radius is the estimated effective particle radius in micrometers.
	// Meaningless when Undefined is true.
	Radius float64 `json:"radius_um"` //nolint:tagliatelle // unit suffix is intentional

	// Undefined is true when the short-reference absorption was exactly
	// zero. This is a deliberate saturating policy, not an error: the
	// ratio is undefined, and the pipeline continues normally.
	Undefined bool `json:"undefined"`

	// ShortIndex and LongIndex are the sample indices used for the two
	// reference wavelengths.
	ShortIndex int `json:"short_index"`
	LongIndex  int `json:"long_index"`

	// ShortWavelength and LongWavelength are the actual sampled
	// wavelengths nearest the configured references, in µm.
	ShortWavelength float64 `json:"short_wavelength"`
	LongWavelength  float64 `json:"long_wavelength"`

	// ShortAbsorption and LongAbsorption are the absorption values the
	// ratio was computed from.
	ShortAbsorption float64 `json:"short_absorption"`
	LongAbsorption  float64 `json:"long_absorption"`
}

// String renders the estimate for human-readable output, formatted to two
// decimal places with the micrometer unit, or "undefined" for the sentinel.
func (e *RadiusEstimate) String() string {
	if e.Undefined {
		return "undefined"
	}
	return fmt.Sprintf("%.2f µm", e.Radius)
}
