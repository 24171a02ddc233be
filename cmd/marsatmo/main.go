// Package main provides the entry point for the marsatmo CLI.
//
// marsatmo processes Mars-orbiter spectrometer CSV exports: for each file
// it detects a water-ice (noctilucent cloud) signature at the 1.65 µm
// absorption band and, when a cloud is present, estimates the effective
// particle radius from the 2.0/1.5 µm absorption ratio.
//
// Usage:
//
//	marsatmo process <spectrum.csv> [more.csv ...]
//	marsatmo process --manifest <file>
//
// See --help for all available options.
package main

// main is the entry point for marsatmo.
func main() {
	Execute()
}
