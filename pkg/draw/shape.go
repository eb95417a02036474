package draw

import (
	"math"
	"strings"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

// DefaultShapeSize is the side of a shape without an explicit size.
const DefaultShapeSize = 24

// ShapePath returns the outline of a shape element within rect. Circles
// are inscribed in rect; capsules use half the height as radius.
func ShapePath(rect rendering.Rect, shapeType string, cornerRadius float64) *rendering.Path {
	p := rendering.NewPath()
	switch strings.ToLower(shapeType) {
	case "capsule":
		r := rendering.CircularRadius(rect.Height() / 2)
		p.AddRRect(rendering.RRectFromRectAndRadius(rect, r))
	case "rectangle", "rect", "roundedrectangle":
		p.AddRRect(rendering.RRectFromRectAndRadius(rect, rendering.CircularRadius(cornerRadius)))
	default:
		side := math.Min(rect.Width(), rect.Height())
		p.AddOval(rendering.RectFromCenter(rect.Center(), side, side))
	}
	return p
}

// DrawShape fills and optionally strokes a shape element. Fill defaults to
// the accent color.
func DrawShape(c rendering.Canvas, rect rendering.Rect, el *element.Shape, th *theme.ThemeData) {
	path := ShapePath(rect, el.ShapeType, el.Radius())
	c.DrawPath(path, rendering.FillPaint(th.ResolveOr(el.Fill, th.ColorScheme.Accent)))
	if stroke, ok := th.Resolve(el.Stroke); ok {
		w := element.Or(el.StrokeWidth, 1)
		if w > 0 {
			c.DrawPath(path, rendering.StrokePaint(stroke, w))
		}
	}
}
