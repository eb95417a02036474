package rendering

import "fmt"

// maxByte is the maximum value of a byte, used for color normalization.
const maxByte = 255.0

// Color is stored as ARGB (0xAARRGGBB).
type Color uint32

// RGBA constructs a Color from red, green, blue, alpha bytes.
func RGBA(r, g, b, a uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGB constructs an opaque Color from red, green, blue bytes.
func RGB(r, g, b uint8) Color {
	return RGBA(r, g, b, 0xFF)
}

// Components returns the red, green, blue and alpha bytes.
func (c Color) Components() (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// RGBAF returns normalized color components (0.0 to 1.0).
func (c Color) RGBAF() (r, g, b, a float64) {
	return float64(uint8(c>>16)) / maxByte,
		float64(uint8(c>>8)) / maxByte,
		float64(uint8(c)) / maxByte,
		float64(uint8(c>>24)) / maxByte
}

// Alpha returns the alpha byte.
func (c Color) Alpha() uint8 {
	return uint8(c >> 24)
}

// WithAlpha returns a copy of the color with the given alpha (0-255).
func (c Color) WithAlpha(a uint8) Color {
	return Color(uint32(a)<<24 | uint32(c)&0x00FFFFFF)
}

// ScaleAlpha multiplies the alpha channel by f, clamped to [0, 1].
func (c Color) ScaleAlpha(f float64) Color {
	if f >= 1 {
		return c
	}
	if f <= 0 {
		return c.WithAlpha(0)
	}
	return c.WithAlpha(uint8(float64(c.Alpha())*f + 0.5))
}

// Hex formats the color as #RRGGBB, ignoring alpha.
func (c Color) Hex() string {
	r, g, b, _ := c.Components()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// String returns the color as 0xAARRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// Common colors.
var (
	ColorTransparent = Color(0x00000000)
	ColorBlack       = Color(0xFF000000)
	ColorWhite       = Color(0xFFFFFFFF)
	ColorRed         = Color(0xFFFF0000)
	ColorGreen       = Color(0xFF00FF00)
	ColorBlue        = Color(0xFF0000FF)
)
