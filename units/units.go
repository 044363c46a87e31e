// Package units converts CSS-style measurements into WordprocessingML native
// units: twips (1/1440 inch) for page, paragraph and table geometry,
// half-points for font sizes and 1/240 line units for line spacing.
//
// All functions are total - unparseable input yields ok == false, never an
// error or a panic. Callers are expected to fall back to defaults.
package units

import (
	"math"
	"strconv"
	"strings"
)

const (
	// TwipsPerPixel assumes CSS reference pixel: 1px = 1/96 inch, 1440/96 = 15.
	TwipsPerPixel = 15

	// PointsPerPixel is the fixed CSS px -> pt ratio (72/96).
	PointsPerPixel = 0.75

	// SingleLine is the "single spacing" baseline of the w:spacing line unit.
	SingleLine = 240

	// DefaultFontPoints is the effective font size assumed when converting
	// absolute line heights and nothing better is known.
	DefaultFontPoints = 11.0
)

// PxToTwips converts a length in display pixels to twips, rounding to the
// nearest integer and clamping negatives to zero.
func PxToTwips(px float64) int {
	if px < 0 {
		return 0
	}
	return int(math.Round(px * TwipsPerPixel))
}

// PxToPoints converts a length in display pixels to whole points, truncating
// the fraction (150px is 112pt, not 113) and clamping negatives to zero.
func PxToPoints(px float64) int {
	if px < 0 {
		return 0
	}
	return int(px * PointsPerPixel)
}

// CSSSizeToHalfPoints converts a CSS font-size value ("12pt", "16px") to
// half-points. Any other unit is unsupported.
func CSSSizeToHalfPoints(size string) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(size))
	switch {
	case strings.HasSuffix(s, "pt"):
		pt, err := strconv.ParseFloat(strings.TrimSuffix(s, "pt"), 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(pt * 2)), true
	case strings.HasSuffix(s, "px"):
		px, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(px * PointsPerPixel * 2)), true
	}
	return 0, false
}

// CSSLineHeightToLine converts a CSS line-height value to the w:spacing line
// unit where 240 means single spacing. Accepted forms are a bare multiplier
// ("1.5"), a percentage ("150%") and absolute "Npt"/"Npx" lengths. Absolute
// lengths are divided by the effective font size in points derived from
// fallbackHalfPoints (or DefaultFontPoints when zero).
func CSSLineHeightToLine(lineHeight string, fallbackHalfPoints int) (int, bool) {
	s := strings.ToLower(strings.TrimSpace(lineHeight))
	if s == "" {
		return 0, false
	}

	if strings.HasSuffix(s, "%") {
		pct, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(pct / 100 * SingleLine)), true
	}

	if !strings.HasSuffix(s, "px") && !strings.HasSuffix(s, "pt") {
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(num * SingleLine)), true
	}

	var linePt float64
	switch {
	case strings.HasSuffix(s, "pt"):
		pt, err := strconv.ParseFloat(strings.TrimSuffix(s, "pt"), 64)
		if err != nil {
			return 0, false
		}
		linePt = pt
	case strings.HasSuffix(s, "px"):
		px, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64)
		if err != nil {
			return 0, false
		}
		linePt = px * PointsPerPixel
	}

	fontPt := DefaultFontPoints
	if fallbackHalfPoints > 0 {
		fontPt = float64(fallbackHalfPoints) / 2
	}
	return int(math.Round(linePt / fontPt * SingleLine)), true
}

// ColorToHex normalizes a CSS color to the upper-case hex form
// WordprocessingML expects, without the leading '#'. Values that are not
// hash-prefixed are upper-cased and passed through as is.
func ColorToHex(c string) (string, bool) {
	s := strings.TrimSpace(c)
	if s == "" {
		return "", false
	}
	s = strings.TrimPrefix(s, "#")
	return strings.ToUpper(s), true
}

// NormalizeFontFamily takes the first entry of a CSS font-family list and
// strips quoting, e.g. `"Times New Roman", serif` -> `Times New Roman`.
func NormalizeFontFamily(family string) (string, bool) {
	first, _, _ := strings.Cut(family, ",")
	first = strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '"' || r == '\'' {
			return -1
		}
		return r
	}, first))
	if first == "" {
		return "", false
	}
	return first, true
}
