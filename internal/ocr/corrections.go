package ocr

import "strings"

// Corrections maps glyphs Tesseract habitually confuses for digits to the
// digit they actually are on the MU font. Static data, not logic: applying
// the table twice is a no-op because every value is a digit and no digit is
// a key.
type Corrections map[rune]rune

func DefaultCorrections() Corrections {
	return Corrections{
		'O': '0', 'o': '0', 'Q': '0', 'D': '0',
		'I': '1', 'l': '1', '|': '1', 'i': '1',
		'S': '5', 's': '5',
		'B': '8', 'b': '6', 'G': '6', 'g': '9',
		'Z': '2', 'z': '2',
		'T': '7',
		'A': '4',
	}
}

// Merge overlays the configured overrides on top of the defaults. Only the
// first rune of each side of an override is considered.
func (c Corrections) Merge(overrides map[string]string) Corrections {
	merged := make(Corrections, len(c)+len(overrides))
	for k, v := range c {
		merged[k] = v
	}
	for k, v := range overrides {
		if k == "" || v == "" {
			continue
		}
		merged[[]rune(k)[0]] = []rune(v)[0]
	}
	return merged
}

// Apply substitutes every confusable glyph with its digit.
func (c Corrections) Apply(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if fixed, ok := c[r]; ok {
			r = fixed
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Whitelist returns the Tesseract character whitelist covering digits plus
// every confusable glyph the table can repair.
func (c Corrections) Whitelist() string {
	var b strings.Builder
	b.WriteString("0123456789")
	for k := range c {
		b.WriteRune(k)
	}
	return b.String()
}
