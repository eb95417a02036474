package draw

import (
	"math"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

const (
	// DefaultBarThickness is the height of a linear progress track.
	DefaultBarThickness = 6
	// DefaultRingSize is the side of a circular gauge.
	DefaultRingSize = 72
	// DefaultProgressRingSize is the side of a circular progress view.
	DefaultProgressRingSize = 44
)

// DrawLinearBar draws a rounded track filled proportionally to fraction.
func DrawLinearBar(c rendering.Canvas, rect rendering.Rect, fraction float64, track, tint rendering.Color) {
	radius := rendering.CircularRadius(math.Max(rect.Height()/2, 0))
	c.DrawRRect(rendering.RRectFromRectAndRadius(rect, radius), rendering.FillPaint(track))
	w := rect.Width() * clamp01(fraction)
	if w <= 0 {
		return
	}
	filled := rendering.Rect{Left: rect.Left, Top: rect.Top, Right: rect.Left + w, Bottom: rect.Bottom}
	c.DrawRRect(rendering.RRectFromRectAndRadius(filled, radius), rendering.FillPaint(tint))
}

// RingStroke returns the stroke width of a ring of the given side.
func RingStroke(side float64) float64 { return math.Max(side*0.12, 2) }

// DrawRing draws a full track circle and a round-capped arc sweeping
// 360*fraction degrees clockwise from 12 o'clock.
func DrawRing(c rendering.Canvas, rect rendering.Rect, fraction float64, track, tint rendering.Color) {
	side := math.Min(rect.Width(), rect.Height())
	stroke := RingStroke(side)
	inner := side - stroke - 2
	if inner <= 0 {
		return
	}
	oval := rendering.RectFromCenter(rect.Center(), inner, inner)
	tp := rendering.StrokePaint(track, stroke)
	tp.StrokeCap = rendering.CapRound
	c.DrawArc(oval, -90, 360, false, tp)
	if sweep := SweepDegrees(fraction); sweep > 0 {
		pp := rendering.StrokePaint(tint, stroke)
		pp.StrokeCap = rendering.CapRound
		c.DrawArc(oval, -90, sweep, false, pp)
	}
}

// DrawMeter draws a progress or gauge element's visual into body.
func DrawMeter(c rendering.Canvas, body rendering.Rect, e element.Element, th *theme.ThemeData) {
	var tintVal *element.ColorValue
	switch n := e.(type) {
	case *element.Progress:
		tintVal = n.Tint
	case *element.Gauge:
		tintVal = n.Tint
	default:
		return
	}
	tint := th.ResolveOr(tintVal, th.ColorScheme.Tint)
	track := th.ColorScheme.ProgressTrack
	if IsCircular(e) {
		DrawRing(c, body, FractionOf(e), track, tint)
		return
	}
	DrawLinearBar(c, body, FractionOf(e), track, tint)
}
