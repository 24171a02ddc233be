package config

import (
	"path/filepath"
	"sort"
)

// Calibration holds the empirical constants for one dataset.
// Zero values mean "inherit": when used as an override, only non-zero
// fields replace the base calibration. A literal zero threshold is
// therefore not expressible per dataset; use the top-level flag for that.
type Calibration struct {
	// IceBand is the detection target wavelength in µm.
	IceBand float64 `yaml:"iceBand,omitempty"`

	// Threshold is the detection threshold at the ice band.
	Threshold float64 `yaml:"threshold,omitempty"`

	// ShortReference and LongReference are the radius-estimation
	// reference wavelengths in µm.
	ShortReference float64 `yaml:"shortReference,omitempty"`
	LongReference  float64 `yaml:"longReference,omitempty"`

	// Slope and Offset are the empirical fit constants k and c of
	// radius = k * ratio + c, in µm.
	Slope  float64 `yaml:"slope,omitempty"`
	Offset float64 `yaml:"offset,omitempty"`
}

// File represents the structure of the .marsatmo configuration file.
type File struct {
	// Datasets maps file names or glob patterns to calibration overrides.
	// Patterns are matched against the base name of each input path using
	// filepath.Match syntax; an exact name match wins over a glob.
	Datasets map[string]Calibration `yaml:"datasets,omitempty"`

	// Defaults contains calibration values applied to all datasets unless
	// overridden by a matching Datasets entry.
	Defaults Calibration `yaml:"defaults,omitempty"`
}

// Merge resolves the calibration for a source file path: base values,
// overridden by the file's Defaults, overridden by the most specific
// matching Datasets entry. An exact name match wins over globs; among
// matching globs the longest pattern wins, with ties broken
// lexicographically, so overlapping patterns resolve the same way on
// every run.
func (f *File) Merge(base Calibration, path string) Calibration {
	result := overlay(base, f.Defaults)

	name := filepath.Base(path)

	// Exact name match wins over globs
	if cal, ok := f.Datasets[name]; ok {
		return overlay(result, cal)
	}

	if pattern, ok := f.matchPattern(name); ok {
		return overlay(result, f.Datasets[pattern])
	}

	return result
}

// matchPattern returns the winning glob pattern for name: the longest
// matching pattern, lexicographically smallest on equal length.
func (f *File) matchPattern(name string) (string, bool) {
	matches := make([]string, 0, len(f.Datasets))
	for pattern := range f.Datasets {
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			matches = append(matches, pattern)
		}
	}
	if len(matches) == 0 {
		return "", false
	}

	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) > len(matches[j])
		}
		return matches[i] < matches[j]
	})

	return matches[0], true
}

// overlay returns base with the non-zero fields of override applied.
func overlay(base, override Calibration) Calibration {
	result := base

	if override.IceBand != 0 {
		result.IceBand = override.IceBand
	}
	if override.Threshold != 0 {
		result.Threshold = override.Threshold
	}
	if override.ShortReference != 0 {
		result.ShortReference = override.ShortReference
	}
	if override.LongReference != 0 {
		result.LongReference = override.LongReference
	}
	if override.Slope != 0 {
		result.Slope = override.Slope
	}
	if override.Offset != 0 {
		result.Offset = override.Offset
	}

	return result
}
