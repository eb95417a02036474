package rendering

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// GradientType describes the gradient variant.
type GradientType int

const (
	// GradientTypeNone indicates no gradient is applied.
	GradientTypeNone GradientType = iota
	// GradientTypeLinear indicates a linear gradient.
	GradientTypeLinear
	// GradientTypeRadial indicates a radial gradient.
	GradientTypeRadial
	// GradientTypeSweep indicates an angular gradient around a center.
	GradientTypeSweep
)

// String returns a human-readable representation of the gradient type.
func (t GradientType) String() string {
	switch t {
	case GradientTypeNone:
		return "none"
	case GradientTypeLinear:
		return "linear"
	case GradientTypeRadial:
		return "radial"
	case GradientTypeSweep:
		return "sweep"
	default:
		return fmt.Sprintf("GradientType(%d)", int(t))
	}
}

// GradientStop defines a color stop within a gradient.
type GradientStop struct {
	Position float64
	Color    Color
}

// EvenStops spreads colors evenly over [0, 1].
func EvenStops(colors []Color) []GradientStop {
	if len(colors) == 0 {
		return nil
	}
	if len(colors) == 1 {
		return []GradientStop{{Position: 0, Color: colors[0]}, {Position: 1, Color: colors[0]}}
	}
	stops := make([]GradientStop, len(colors))
	last := float64(len(colors) - 1)
	for i, c := range colors {
		stops[i] = GradientStop{Position: float64(i) / last, Color: c}
	}
	return stops
}

// LinearGradient defines a gradient between two points.
type LinearGradient struct {
	Start Offset
	End   Offset
	Stops []GradientStop
}

// RadialGradient defines a gradient from a center point.
type RadialGradient struct {
	Center Offset
	Radius float64
	Stops  []GradientStop
}

// SweepGradient sweeps its stops clockwise around Center starting at 12 o'clock.
type SweepGradient struct {
	Center Offset
	Stops  []GradientStop
}

// Gradient describes a linear, radial or sweep gradient.
type Gradient struct {
	Type   GradientType
	Linear LinearGradient
	Radial RadialGradient
	Sweep  SweepGradient
}

// NewLinearGradient constructs a linear gradient definition.
func NewLinearGradient(start, end Offset, stops []GradientStop) *Gradient {
	return &Gradient{
		Type: GradientTypeLinear,
		Linear: LinearGradient{
			Start: start,
			End:   end,
			Stops: cloneGradientStops(stops),
		},
	}
}

// NewRadialGradient constructs a radial gradient definition.
func NewRadialGradient(center Offset, radius float64, stops []GradientStop) *Gradient {
	return &Gradient{
		Type: GradientTypeRadial,
		Radial: RadialGradient{
			Center: center,
			Radius: radius,
			Stops:  cloneGradientStops(stops),
		},
	}
}

// NewSweepGradient constructs an angular gradient definition.
func NewSweepGradient(center Offset, stops []GradientStop) *Gradient {
	return &Gradient{
		Type:  GradientTypeSweep,
		Sweep: SweepGradient{Center: center, Stops: cloneGradientStops(stops)},
	}
}

// Stops returns the gradient stops for the configured type.
func (g *Gradient) Stops() []GradientStop {
	if g == nil {
		return nil
	}
	switch g.Type {
	case GradientTypeLinear:
		return g.Linear.Stops
	case GradientTypeRadial:
		return g.Radial.Stops
	case GradientTypeSweep:
		return g.Sweep.Stops
	default:
		return nil
	}
}

// IsValid reports whether the gradient has usable stops.
func (g *Gradient) IsValid() bool {
	if g == nil {
		return false
	}
	stops := g.Stops()
	if len(stops) < 2 {
		return false
	}
	if g.Type == GradientTypeRadial && g.Radial.Radius <= 0 {
		return false
	}
	for _, stop := range stops {
		if stop.Position < 0 || stop.Position > 1 {
			return false
		}
	}
	return g.Type == GradientTypeLinear || g.Type == GradientTypeRadial || g.Type == GradientTypeSweep
}

func cloneGradientStops(stops []GradientStop) []GradientStop {
	if len(stops) == 0 {
		return nil
	}
	clone := make([]GradientStop, len(stops))
	copy(clone, stops)
	return clone
}

// ColorAtPoint returns the gradient color at p in the same coordinate space
// the gradient was defined in.
func (g *Gradient) ColorAtPoint(p Offset) Color {
	if !g.IsValid() {
		return ColorTransparent
	}
	var t float64
	switch g.Type {
	case GradientTypeLinear:
		s, e := g.Linear.Start, g.Linear.End
		dx, dy := e.X-s.X, e.Y-s.Y
		lenSq := dx*dx + dy*dy
		if lenSq > 0 {
			t = ((p.X-s.X)*dx + (p.Y-s.Y)*dy) / lenSq
		}
	case GradientTypeRadial:
		t = math.Hypot(p.X-g.Radial.Center.X, p.Y-g.Radial.Center.Y) / g.Radial.Radius
	case GradientTypeSweep:
		a := math.Atan2(p.Y-g.Sweep.Center.Y, p.X-g.Sweep.Center.X) + math.Pi/2
		if a < 0 {
			a += 2 * math.Pi
		}
		t = a / (2 * math.Pi)
	}
	return g.ColorAt(t)
}

// ColorAt interpolates the stops at t, clamped to [0, 1]. Channels blend in
// RGB space and alpha blends linearly.
func (g *Gradient) ColorAt(t float64) Color {
	stops := g.Stops()
	if len(stops) == 0 {
		return ColorTransparent
	}
	if t <= stops[0].Position {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Position {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Position {
			continue
		}
		span := b.Position - a.Position
		if span <= 0 {
			return b.Color
		}
		return blend(a.Color, b.Color, (t-a.Position)/span)
	}
	return last.Color
}

func blend(a, b Color, t float64) Color {
	ar, ag, ab, aa := a.RGBAF()
	br, bg, bb, ba := b.RGBAF()
	mixed := colorful.Color{R: ar, G: ag, B: ab}.BlendRgb(colorful.Color{R: br, G: bg, B: bb}, t).Clamped()
	r, gg, bl := mixed.RGB255()
	alpha := aa + (ba-aa)*t
	return RGBA(r, gg, bl, uint8(math.Round(alpha*maxByte)))
}

// Bounds returns the rectangle needed to fully render the gradient,
// expanded from widgetRect as needed. The result is the union of widgetRect
// and the gradient's natural bounds, ensuring it never shrinks widgetRect.
func (g *Gradient) Bounds(widgetRect Rect) Rect {
	if g == nil || !g.IsValid() {
		return widgetRect
	}
	var gradientRect Rect
	switch g.Type {
	case GradientTypeRadial:
		c, r := g.Radial.Center, g.Radial.Radius
		gradientRect = RectFromLTWH(c.X-r, c.Y-r, r*2, r*2)
	case GradientTypeLinear:
		s, e := g.Linear.Start, g.Linear.End
		gradientRect = Rect{
			Left:   math.Min(s.X, e.X),
			Top:    math.Min(s.Y, e.Y),
			Right:  math.Max(s.X, e.X),
			Bottom: math.Max(s.Y, e.Y),
		}
	default:
		return widgetRect
	}
	return widgetRect.Union(gradientRect)
}
