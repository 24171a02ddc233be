// Package config provides configuration structures and utilities for marsatmo.
// It defines the processing options for spectrometer batches, the empirical
// calibration constants used by detection and radius estimation, and report
// generation preferences.
package config
