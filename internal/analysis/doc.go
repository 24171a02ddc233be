// Package analysis implements the per-spectrum science: water-ice cloud
// detection and particle radius estimation.
//
// Both operations are pure given their inputs. The detector thresholds the
// absorption sample nearest the 1.65 µm ice band; the estimator applies the
// linear empirical fit radius = k * (abs_long / abs_short) + c to the
// samples nearest two reference wavelengths. All constants are injected as
// configuration so they can be recalibrated without code changes.
package analysis
