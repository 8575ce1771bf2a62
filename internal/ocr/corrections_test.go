package ocr

import (
	"strings"
	"testing"
)

func TestCorrectionsApply(t *testing.T) {
	c := DefaultCorrections()

	cases := []struct {
		in   string
		want string
	}{
		{"Ievel: 4O", "1evel: 40"},
		{"l23", "123"},
		{"S5B", "558"},
		{"2O,Z1", "20,21"},
		{"123", "123"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := c.Apply(tc.in); got != tc.want {
			t.Errorf("Apply(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCorrectionsIdempotent(t *testing.T) {
	// Every correction maps to a digit, and no digit is itself corrected,
	// so a second pass must change nothing.
	c := DefaultCorrections()

	inputs := []string{"OIlSbBgGzZTA", "4O7", "already 123 clean"}
	for _, in := range inputs {
		once := c.Apply(in)
		twice := c.Apply(once)
		if once != twice {
			t.Errorf("Apply not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestCorrectionsMerge(t *testing.T) {
	c := DefaultCorrections().Merge(map[string]string{"X": "7", "O": "9"})

	if got := c.Apply("X"); got != "7" {
		t.Errorf("merged correction X = %q, want 7", got)
	}
	if got := c.Apply("O"); got != "9" {
		t.Errorf("override correction O = %q, want 9", got)
	}
	if got := c.Apply("I"); got != "1" {
		t.Errorf("existing correction I = %q, want 1", got)
	}
}

func TestWhitelistCoversCorrectableGlyphs(t *testing.T) {
	c := DefaultCorrections()
	wl := c.Whitelist()

	for _, digit := range "0123456789" {
		if !strings.ContainsRune(wl, digit) {
			t.Errorf("whitelist misses digit %c", digit)
		}
	}
	for glyph := range c {
		if !strings.ContainsRune(wl, glyph) {
			t.Errorf("whitelist misses correctable glyph %c", glyph)
		}
	}
}
