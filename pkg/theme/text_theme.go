package theme

import (
	"strings"

	"github.com/go-drift/widgetkit/pkg/rendering"
)

// TextTheme maps semantic text styles to point sizes.
type TextTheme struct {
	LargeTitle  float64
	Title       float64
	Title2      float64
	Title3      float64
	Headline    float64
	Subheadline float64
	Body        float64
	Callout     float64
	Footnote    float64
	Caption     float64
	Caption2    float64
}

// DefaultTextTheme returns the system type ramp.
func DefaultTextTheme() TextTheme {
	return TextTheme{
		LargeTitle:  34,
		Title:       28,
		Title2:      22,
		Title3:      20,
		Headline:    17,
		Subheadline: 15,
		Body:        16,
		Callout:     16,
		Footnote:    13,
		Caption:     12,
		Caption2:    11,
	}
}

// SizeOf returns the size for a semantic style name, or false.
func (t TextTheme) SizeOf(style string) (float64, bool) {
	switch strings.ToLower(style) {
	case "largetitle":
		return t.LargeTitle, true
	case "title", "title1":
		return t.Title, true
	case "title2":
		return t.Title2, true
	case "title3":
		return t.Title3, true
	case "headline":
		return t.Headline, true
	case "subheadline":
		return t.Subheadline, true
	case "body":
		return t.Body, true
	case "callout":
		return t.Callout, true
	case "footnote":
		return t.Footnote, true
	case "caption":
		return t.Caption, true
	case "caption2":
		return t.Caption2, true
	}
	return 0, false
}

// FontSize picks the explicit size when positive, then the semantic
// style, then def.
func (t TextTheme) FontSize(explicit *float64, style string, def float64) float64 {
	if explicit != nil && *explicit > 0 {
		return *explicit
	}
	if s, ok := t.SizeOf(style); ok {
		return s
	}
	return def
}

// ParseFontWeight maps a weight name or number to a FontWeight.
// Unknown values are regular.
func ParseFontWeight(s string) rendering.FontWeight {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ultralight", "100":
		return rendering.FontWeightUltraLight
	case "thin", "200":
		return rendering.FontWeightThin
	case "light", "300":
		return rendering.FontWeightLight
	case "medium", "500":
		return rendering.FontWeightMedium
	case "semibold", "600":
		return rendering.FontWeightSemibold
	case "bold", "700":
		return rendering.FontWeightBold
	case "heavy", "800":
		return rendering.FontWeightHeavy
	case "black", "900":
		return rendering.FontWeightBlack
	default:
		return rendering.FontWeightNormal
	}
}
