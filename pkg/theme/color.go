package theme

import (
	"strconv"
	"strings"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
)

var namedColors = map[string]rendering.Color{
	"white":       0xFFFFFFFF,
	"black":       0xFF000000,
	"red":         0xFFE53935,
	"green":       0xFF43A047,
	"blue":        0xFF1E88E5,
	"gray":        0xFF888888,
	"grey":        0xFF888888,
	"clear":       0x00000000,
	"transparent": 0x00000000,
}

// ParseHex parses #RGB, #RRGGBB and #RRGGBBAA.
func ParseHex(s string) (rendering.Color, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return 0, false
	}
	h := s[1:]
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return 0, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, false
	}
	r, g, b, a := uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v)
	return rendering.RGBA(r, g, b, a), true
}

// Named looks up the small fixed named-color table.
func Named(s string) (rendering.Color, bool) {
	c, ok := namedColors[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// ResolveString resolves a literal: semantic token, then hex, then named.
func (t *ThemeData) ResolveString(s string) (rendering.Color, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if c, ok := t.ColorScheme.Semantic(s); ok {
		return c, true
	}
	if c, ok := ParseHex(s); ok {
		return c, true
	}
	return Named(s)
}

// Resolve resolves a color value against the theme's brightness. An
// adaptive pair picks its branch, falling back to the other branch when
// the picked one is empty.
func (t *ThemeData) Resolve(v *element.ColorValue) (rendering.Color, bool) {
	if v == nil {
		return 0, false
	}
	s := v.Pick(t.Dark())
	if s == "" && v.IsAdaptive() {
		s = v.Pick(!t.Dark())
	}
	return t.ResolveString(s)
}

// ResolveOr resolves v, returning def when it does not resolve.
func (t *ThemeData) ResolveOr(v *element.ColorValue, def rendering.Color) rendering.Color {
	if c, ok := t.Resolve(v); ok {
		return c
	}
	return def
}

// ResolveColor resolves a color value for the given mode using the
// default palette.
func ResolveColor(v element.ColorValue, dark bool) (rendering.Color, bool) {
	return For(dark).Resolve(&v)
}
