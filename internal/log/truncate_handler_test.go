package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"
)

// newTestLogger returns a debug-level logger capturing output in buf.
func newTestLogger(buf *bytes.Buffer, opts ...TruncatingHandlerOption) *slog.Logger {
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewTruncatingHandler(inner, opts...))
}

// TestTruncatingHandlerCapsLongStrings tests that oversized string
// attributes are capped and annotated.
func TestTruncatingHandlerCapsLongStrings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, WithMaxValueLen(16))

	logger.Info("spectrum loaded", "preview", strings.Repeat("0.123 ", 100))

	out := buf.String()
	if !strings.Contains(out, "truncated") {
		t.Errorf("expected truncation annotation in output: %s", out)
	}
	if strings.Contains(out, strings.Repeat("0.123 ", 100)) {
		t.Error("full oversized value leaked into output")
	}
}

// TestTruncatingHandlerPassesShortValues tests that normal attributes are
// untouched.
func TestTruncatingHandlerPassesShortValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("detection", "path", "orbit_4412.csv", "samples", 100, "detected", true)

	out := buf.String()
	for _, want := range []string{"orbit_4412.csv", "samples=100", "detected=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output: %s", want, out)
		}
	}
	if strings.Contains(out, "truncated") {
		t.Errorf("short values must not be truncated: %s", out)
	}
}

// TestTruncatingHandlerCapsAnyValues tests capping of slice attributes,
// the original motivation for the handler.
func TestTruncatingHandlerCapsAnyValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, WithMaxValueLen(32))

	big := make([]float64, 1000)
	for i := range big {
		big[i] = float64(i) * 0.001
	}
	logger.Debug("raw absorption", "values", big)

	out := buf.String()
	if !strings.Contains(out, "truncated") {
		t.Errorf("expected slice value to be truncated: %s", out)
	}
}

// TestTruncatingHandlerWithAttrs tests that capping survives WithAttrs and
// WithGroup chaining.
func TestTruncatingHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, WithMaxValueLen(8)).
		With("dataset", strings.Repeat("x", 100)).
		WithGroup("run")

	logger.Info("start", "note", strings.Repeat("y", 100))

	out := buf.String()
	if strings.Count(out, "truncated") != 2 {
		t.Errorf("expected both attributes truncated: %s", out)
	}
}

// TestTruncateRuneBoundary tests that the cut never splits a multi-byte
// rune, so capped values stay valid UTF-8.
func TestTruncateRuneBoundary(t *testing.T) {
	t.Parallel()

	// "µ" is two bytes; sweep the cap across the whole string so every
	// possible cut point is exercised, including mid-rune ones.
	s := "radius 25.2 µm — µ-scale"
	for max := 1; max < len(s); max++ {
		got := truncate(s, max)
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%q, %d) = %q is not valid UTF-8", s, max, got)
		}
		if len(got) == 0 {
			t.Fatalf("truncate(%q, %d) returned empty string", s, max)
		}
	}

	t.Run("cut inside µ backs up to the boundary", func(t *testing.T) {
		t.Parallel()

		// Byte 13 is the continuation byte of "µ" (bytes 12-13)
		got := truncate(s, 13)
		if !strings.HasPrefix(got, "radius 25.2 ...") {
			t.Errorf("expected cut before µ, got %q", got)
		}
	})
}

// TestNewLoggerLevels tests the verbose switch.
func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	t.Run("verbose enables debug", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, true)
		logger.Debug("step detail")

		if !strings.Contains(buf.String(), "step detail") {
			t.Error("expected debug record in verbose mode")
		}
	})

	t.Run("quiet suppresses info", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := NewLogger(&buf, false)
		logger.Info("step detail")

		if buf.Len() != 0 {
			t.Errorf("expected no output below warn level, got: %s", buf.String())
		}
	})
}
