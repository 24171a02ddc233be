// Package model defines the core data structures used throughout marsatmo.
//
// This package contains the following main types:
//   - Spectrum: An immutable spectrometer measurement (wavelength/absorption pairs)
//   - DetectionResult: The outcome of a water-ice signature check
//   - RadiusEstimate: A derived particle radius with an explicit undefined sentinel
//   - SpectrumReport: The per-file processing result
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (loader, analysis, pipeline, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
