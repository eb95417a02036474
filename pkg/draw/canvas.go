package draw

import (
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

const defaultCanvasExtent = 100

// LogicalSize returns the canvas's declared size, defaulting each
// non-positive extent to 100.
func LogicalSize(el *element.Canvas) rendering.Size {
	w, h := el.Width, el.Height
	if w <= 0 {
		w = defaultCanvasExtent
	}
	if h <= 0 {
		h = defaultCanvasExtent
	}
	return rendering.Size{Width: w, Height: h}
}

// FitCanvas returns the frame size for a canvas given the available space.
// A flex-filling canvas grows to the largest size with its aspect ratio;
// otherwise it keeps its logical size, shrunk uniformly when it does not fit.
func FitCanvas(logical, avail rendering.Size, fill bool) rendering.Size {
	s := math.Min(avail.Width/logical.Width, avail.Height/logical.Height)
	if !fill {
		s = math.Min(s, 1)
	}
	if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		s = 0
	}
	return rendering.Size{Width: logical.Width * s, Height: logical.Height * s}
}

// Transform maps logical canvas coordinates into a frame.
type Transform struct {
	S      float64
	Origin rendering.Offset
}

// NewTransform computes the uniform scale s = min(frameW/logicalW,
// frameH/logicalH) and centers the scaled canvas in frame.
func NewTransform(logical rendering.Size, frame rendering.Rect) Transform {
	s := math.Min(frame.Width()/logical.Width, frame.Height()/logical.Height)
	if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		s = 0
	}
	return Transform{
		S: s,
		Origin: rendering.Offset{
			X: frame.Left + (frame.Width()-logical.Width*s)/2,
			Y: frame.Top + (frame.Height()-logical.Height*s)/2,
		},
	}
}

// Point maps a logical point.
func (t Transform) Point(x, y float64) rendering.Offset {
	return rendering.Offset{X: t.Origin.X + x*t.S, Y: t.Origin.Y + y*t.S}
}

// Len scales a logical length.
func (t Transform) Len(v float64) float64 { return v * t.S }

// DrawCanvas replays a canvas element's commands into frame. Commands that
// cannot be drawn are skipped.
func DrawCanvas(c rendering.Canvas, frame rendering.Rect, el *element.Canvas, th *theme.ThemeData) {
	t := NewTransform(LogicalSize(el), frame)
	if t.S == 0 {
		return
	}
	c.Save()
	c.ClipRect(frame)
	defer c.Restore()
	for i := range el.Elements {
		drawCommand(c, t, &el.Elements[i], th)
	}
}

func drawCommand(c rendering.Canvas, t Transform, cmd *element.DrawCommand, th *theme.ThemeData) {
	f := element.Or[float64]
	strokeW := math.Max(t.Len(f(cmd.StrokeWidth, 1)), 0.5)
	fill, hasFill := th.Resolve(cmd.Fill)
	stroke, hasStroke := th.Resolve(cmd.Stroke)

	switch strings.ToLower(cmd.Draw) {
	case "circle":
		center := t.Point(f(cmd.CX, 0), f(cmd.CY, 0))
		r := t.Len(f(cmd.R, 10))
		if hasFill {
			c.DrawCircle(center, r, rendering.FillPaint(fill))
		}
		if hasStroke {
			c.DrawCircle(center, r, rendering.StrokePaint(stroke, strokeW))
		}
	case "line":
		if !hasStroke {
			stroke = th.ColorScheme.Label
		}
		p := rendering.StrokePaint(stroke, strokeW)
		p.StrokeCap = rendering.ParseStrokeCap(cmd.LineCap)
		c.DrawLine(t.Point(f(cmd.X1, 0), f(cmd.Y1, 0)), t.Point(f(cmd.X2, 0), f(cmd.Y2, 0)), p)
	case "rect":
		tl := t.Point(f(cmd.X, 0), f(cmd.Y, 0))
		rect := rendering.RectFromLTWH(tl.X, tl.Y, t.Len(f(cmd.Width, 10)), t.Len(f(cmd.Height, 10)))
		rr := rendering.RRectFromRectAndRadius(rect, rendering.CircularRadius(t.Len(f(cmd.CornerRadius, 0))))
		if hasFill {
			c.DrawRRect(rr, rendering.FillPaint(fill))
		}
		if hasStroke {
			c.DrawRRect(rr, rendering.StrokePaint(stroke, strokeW))
		}
	case "arc":
		center := t.Point(f(cmd.CX, 0), f(cmd.CY, 0))
		r := t.Len(f(cmd.R, 10))
		oval := rendering.RectFromCenter(center, 2*r, 2*r)
		start := f(cmd.StartAngle, 0)
		sweep := f(cmd.EndAngle, 360) - start
		wedge := cmd.Fill != nil
		if hasFill {
			c.DrawArc(oval, start, sweep, true, rendering.FillPaint(fill))
		}
		if hasStroke {
			c.DrawArc(oval, start, sweep, wedge, rendering.StrokePaint(stroke, strokeW))
		}
	case "text":
		col := th.ResolveOr(cmd.Color, th.ColorScheme.Label)
		style := rendering.TextStyle{
			Color:    col,
			FontSize: t.Len(f(cmd.FontSize, 12)),
			Anchor:   ParseAnchor(cmd.Anchor),
		}
		ascent, descent, _ := rendering.FontMetrics(style.FontSize)
		p := t.Point(f(cmd.X, 0), f(cmd.Y, 0))
		// y is the vertical center of the text.
		p.Y += (ascent - descent) / 2
		c.DrawText(cmd.Content, p, style)
	case "path":
		path, err := rendering.ParsePathData(cmd.D)
		if err != nil {
			log.Debug().Err(err).Msg("canvas path skipped")
			return
		}
		path = path.Transform(t.S, t.S, t.Origin.X, t.Origin.Y)
		if hasFill {
			c.DrawPath(path, rendering.FillPaint(fill))
		}
		if hasStroke {
			c.DrawPath(path, rendering.StrokePaint(stroke, strokeW))
		}
	}
}

// ParseAnchor maps start/middle/end.
func ParseAnchor(s string) rendering.TextAnchor {
	switch strings.ToLower(s) {
	case "middle", "center":
		return rendering.AnchorMiddle
	case "end", "trailing":
		return rendering.AnchorEnd
	default:
		return rendering.AnchorStart
	}
}
