package model

// DetectionResult is the outcome of checking one spectrum for the water-ice
// absorption signature.
//
// Besides the boolean verdict, the result records exactly which sample was
// inspected and which parameters were in effect. This makes a stored report
// auditable: a reviewer can confirm the decision without re-reading the
// source file.
type DetectionResult struct {
	// Detected is true if the absorption at the ice band strictly exceeds
	// the threshold.
	Detected bool `json:"detected"`

	// Index is the index of the sample nearest to the target wavelength.
	Index int `json:"index"`

	// Wavelength is the actual wavelength of the inspected sample in µm.
	// Measured grids rarely land exactly on the target wavelength.
	Wavelength float64 `json:"wavelength"`

	// Absorption is the absorption value that was compared to the threshold.
	Absorption float64 `json:"absorption"`

	// TargetWavelength is the ice-band wavelength the detector looked for, in µm.
	TargetWavelength float64 `json:"target_wavelength"`

	// Threshold is the detection threshold that was applied.
	Threshold float64 `json:"threshold"`
}
