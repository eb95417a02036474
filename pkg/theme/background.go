package theme

import (
	"strings"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
)

// Fill is a resolved background: a solid color or a gradient.
type Fill struct {
	Color    rendering.Color
	Gradient *rendering.Gradient
}

// Paint returns a fill paint for the background.
func (f Fill) Paint() rendering.Paint {
	p := rendering.FillPaint(f.Color)
	p.Gradient = f.Gradient
	return p
}

// ResolveBackground resolves a background over rect. Gradient stops that
// fail to resolve are skipped; fewer than one usable stop means no fill.
func (t *ThemeData) ResolveBackground(bg *element.Background, rect rendering.Rect) (Fill, bool) {
	if bg == nil {
		return Fill{}, false
	}
	if bg.Gradient == nil {
		c, ok := t.Resolve(bg.Color)
		return Fill{Color: c}, ok
	}
	var colors []rendering.Color
	for _, s := range bg.Gradient.Colors {
		if c, ok := t.ResolveString(s); ok {
			colors = append(colors, c)
		}
	}
	switch len(colors) {
	case 0:
		return Fill{}, false
	case 1:
		return Fill{Color: colors[0]}, true
	}
	stops := rendering.EvenStops(colors)
	var g *rendering.Gradient
	switch strings.ToLower(bg.Gradient.GradientType) {
	case "radial":
		g = rendering.NewRadialGradient(rect.Center(), max(rect.Width(), rect.Height())/2, stops)
	case "angular", "conic", "sweep":
		g = rendering.NewSweepGradient(rect.Center(), stops)
	default:
		start, end := DirectionPoints(bg.Gradient.Direction, rect)
		g = rendering.NewLinearGradient(start, end, stops)
	}
	return Fill{Color: colors[0], Gradient: g}, true
}

// DirectionPoints maps a gradient direction onto rect's edges. Unknown
// directions run top to bottom.
func DirectionPoints(d element.GradientDirection, r rendering.Rect) (start, end rendering.Offset) {
	cx, cy := r.Center().X, r.Center().Y
	top := rendering.Offset{X: cx, Y: r.Top}
	bottom := rendering.Offset{X: cx, Y: r.Bottom}
	leading := rendering.Offset{X: r.Left, Y: cy}
	trailing := rendering.Offset{X: r.Right, Y: cy}
	tl := rendering.Offset{X: r.Left, Y: r.Top}
	tr := rendering.Offset{X: r.Right, Y: r.Top}
	bl := rendering.Offset{X: r.Left, Y: r.Bottom}
	br := rendering.Offset{X: r.Right, Y: r.Bottom}

	switch d {
	case element.BottomToTop:
		return bottom, top
	case element.LeadingToTrailing:
		return leading, trailing
	case element.TrailingToLeading:
		return trailing, leading
	case element.TopLeadingToBottomTrailing:
		return tl, br
	case element.TopTrailingToBottomLeading:
		return tr, bl
	case element.BottomLeadingToTopTrailing:
		return bl, tr
	case element.BottomTrailingToTopLeading:
		return br, tl
	default:
		return top, bottom
	}
}
