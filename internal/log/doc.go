// Package log provides logging utilities for marsatmo, built on top of
// the standard slog package.
//
// Spectrometer processing regularly logs values derived from very large
// arrays (a debug line can otherwise carry a 100k-sample spectrum). The
// TruncatingHandler caps oversized attribute values so that debug logs
// stay readable and log storage stays bounded, while leaving normal-sized
// attributes untouched.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	slog.SetDefault(logger)
//
//	logger.Debug("spectrum loaded",
//	    "path", "orbit_4412.csv",
//	    "preview", fmt.Sprint(spectrum.Absorption), // capped if oversized
//	)
package log
