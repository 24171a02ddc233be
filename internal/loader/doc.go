// Package loader reads spectrometer measurements from disk.
//
// The expected on-disk format is a CSV file with one header row and two
// numeric columns: wavelength (µm, ascending) and absorption (unitless).
// Instrument export software is inconsistent about encodings, so the
// reader tolerates UTF-8/UTF-16 byte-order marks.
//
// The Loader interface exists so that tests (and future ingest paths,
// e.g. archive fetchers) can substitute fixture data without touching the
// detection and estimation logic.
package loader
