package theme

import (
	"strings"

	"github.com/go-drift/widgetkit/pkg/rendering"
)

// Brightness is the ambient light/dark mode.
type Brightness int

const (
	BrightnessLight Brightness = iota
	BrightnessDark
)

func (b Brightness) String() string {
	if b == BrightnessDark {
		return "dark"
	}
	return "light"
}

// ColorScheme is the semantic palette for one brightness.
type ColorScheme struct {
	Label            rendering.Color
	SecondaryLabel   rendering.Color
	Separator        rendering.Color
	SystemBackground rendering.Color
	Accent           rendering.Color
	Red              rendering.Color
	Green            rendering.Color
	Orange           rendering.Color
	Purple           rendering.Color

	// ProgressTrack is the unfilled part of progress bars and gauges.
	ProgressTrack rendering.Color
	// Tint is the default fill for charts, progress and gauges.
	Tint rendering.Color
	// Inactive colors unchecked checkboxes and placeholder glyphs.
	Inactive rendering.Color
}

// LightColorScheme returns the light palette.
func LightColorScheme() ColorScheme {
	return ColorScheme{
		Label:            0xFF111111,
		SecondaryLabel:   0xFF555555,
		Separator:        0xFFD1D1D6,
		SystemBackground: 0xFFFFFFFF,
		Accent:           0xFF2563EB,
		Red:              0xFFDC2626,
		Green:            0xFF16A34A,
		Orange:           0xFFEA580C,
		Purple:           0xFF7C3AED,
		ProgressTrack:    0xFFE5E7EB,
		Tint:             0xFF4FC3F7,
		Inactive:         0xFF888888,
	}
}

// DarkColorScheme returns the dark palette.
func DarkColorScheme() ColorScheme {
	return ColorScheme{
		Label:            0xFFF2F2F7,
		SecondaryLabel:   0xFFC7C7CC,
		Separator:        0xFF3A3A3C,
		SystemBackground: 0xFF1C1C1E,
		Accent:           0xFF89B4FA,
		Red:              0xFFF87171,
		Green:            0xFF86EFAC,
		Orange:           0xFFFBBF24,
		Purple:           0xFFC4B5FD,
		ProgressTrack:    0xFF2E2E35,
		Tint:             0xFF4FC3F7,
		Inactive:         0xFF888888,
	}
}

// Semantic looks up a semantic token, case-insensitively.
func (s ColorScheme) Semantic(token string) (rendering.Color, bool) {
	switch strings.ToLower(token) {
	case "label":
		return s.Label, true
	case "secondarylabel":
		return s.SecondaryLabel, true
	case "separator":
		return s.Separator, true
	case "systembackground":
		return s.SystemBackground, true
	case "accent", "systemblue":
		return s.Accent, true
	case "systemred":
		return s.Red, true
	case "systemgreen":
		return s.Green, true
	case "systemorange":
		return s.Orange, true
	case "systempurple":
		return s.Purple, true
	}
	return 0, false
}

// ThemeData is the ambient rendering context for one pass.
type ThemeData struct {
	ColorScheme ColorScheme
	TextTheme   TextTheme
	Brightness  Brightness
}

// DefaultLightTheme returns the default light theme.
func DefaultLightTheme() *ThemeData {
	return &ThemeData{
		ColorScheme: LightColorScheme(),
		TextTheme:   DefaultTextTheme(),
		Brightness:  BrightnessLight,
	}
}

// DefaultDarkTheme returns the default dark theme.
func DefaultDarkTheme() *ThemeData {
	return &ThemeData{
		ColorScheme: DarkColorScheme(),
		TextTheme:   DefaultTextTheme(),
		Brightness:  BrightnessDark,
	}
}

// For returns the default theme for the given mode.
func For(dark bool) *ThemeData {
	if dark {
		return DefaultDarkTheme()
	}
	return DefaultLightTheme()
}

// Dark reports whether the theme is in dark mode.
func (t *ThemeData) Dark() bool { return t.Brightness == BrightnessDark }
