// Package paint replays a resolved layout plan onto a rendering.Canvas.
//
// The painter holds no layout logic: every position, size and color it
// uses was decided by layout.Resolve. Backends differ only in the Canvas
// they hand in.
package paint

import (
	"image"
	"math"
	"strings"

	"github.com/go-drift/widgetkit/pkg/draw"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

// Painter draws plans onto a canvas.
type Painter struct {
	Canvas rendering.Canvas
	// Transparent skips clearing the surface with the system background.
	Transparent bool
}

// Paint draws p. A nil plan draws nothing.
func (p *Painter) Paint(plan *layout.Plan) {
	if plan == nil || plan.Root == nil {
		return
	}
	th := plan.Theme
	if th == nil {
		th = theme.DefaultLightTheme()
	}
	if !p.Transparent {
		p.Canvas.Clear(th.ColorScheme.SystemBackground)
	}
	p.paintNode(plan.Root, th)
}

// Render is a convenience that paints plan onto c.
func Render(c rendering.Canvas, plan *layout.Plan) {
	(&Painter{Canvas: c}).Paint(plan)
}

func (p *Painter) paintNode(n *layout.Node, th *theme.ThemeData) {
	c := p.Canvas
	d := n.Decoration
	if d.Opacity <= 0 && n.Role == layout.RoleElement && n.Element != nil {
		return
	}
	box := rrect(n.Frame, d.CornerRadius)

	if d.Shadow != nil {
		c.DrawRRectShadow(box, *d.Shadow)
	}
	if d.Opacity < 1 && d.Opacity > 0 {
		c.SaveLayerAlpha(n.Frame, d.Opacity)
		defer c.Restore()
	}
	if d.Background != nil {
		c.DrawRRect(box, d.Background.Paint())
	}
	if d.Clip != layout.ClipNone {
		c.Save()
		clip(c, n.Frame, d)
		defer c.Restore()
	}

	p.paintVisual(n, th)
	for _, run := range n.Texts {
		paintText(c, run)
	}
	for _, child := range n.Children {
		p.paintNode(child, th)
	}

	if d.BorderWidth > 0 {
		half := d.BorderWidth / 2
		inset := n.Frame.Deflate(half, half, half, half)
		c.DrawRRect(rrect(inset, math.Max(0, d.CornerRadius-half)), rendering.StrokePaint(d.BorderColor, d.BorderWidth))
	}
}

func rrect(r rendering.Rect, radius float64) rendering.RRect {
	return rendering.RRectFromRectAndRadius(r, rendering.CircularRadius(math.Max(0, radius)))
}

func clip(c rendering.Canvas, frame rendering.Rect, d layout.Decoration) {
	switch d.Clip {
	case layout.ClipRect:
		c.ClipRect(frame)
	case layout.ClipRRect:
		c.ClipRRect(rrect(frame, d.CornerRadius))
	case layout.ClipCircle:
		side := math.Min(frame.Width(), frame.Height())
		c.ClipRRect(rrect(rendering.RectFromCenter(frame.Center(), side, side), side/2))
	case layout.ClipCapsule:
		c.ClipRRect(rrect(frame, math.Min(frame.Width(), frame.Height())/2))
	}
}

func (p *Painter) paintVisual(n *layout.Node, th *theme.ThemeData) {
	c := p.Canvas
	v := n.Visual
	switch v.Kind {
	case layout.VisualFill:
		c.DrawRRect(rrect(v.Rect, v.Radius), rendering.FillPaint(v.Color))
	case layout.VisualDivider:
		c.DrawRect(v.Rect, rendering.FillPaint(v.Color))
	case layout.VisualMeter:
		draw.DrawMeter(c, v.Rect, n.Element, th)
	case layout.VisualChart:
		if ch, ok := n.Element.(*element.Chart); ok {
			draw.DrawChart(c, v.Rect, ch, th)
		}
	case layout.VisualCanvas:
		if cv, ok := n.Element.(*element.Canvas); ok {
			draw.DrawCanvas(c, v.Rect, cv, th)
		}
	case layout.VisualShape:
		if sh, ok := n.Element.(*element.Shape); ok {
			draw.DrawShape(c, v.Rect, sh, th)
		}
	case layout.VisualImage:
		if v.Image == nil || v.Image.Image == nil {
			return
		}
		mode := ""
		if img, ok := n.Element.(*element.Image); ok {
			mode = img.ContentMode
		}
		dst := ImageRect(mode, v.Rect, v.Image.Image.Bounds())
		c.Save()
		c.ClipRect(v.Rect)
		c.DrawImage(v.Image.Image, dst)
		c.Restore()
	}
}

// ImageRect places an image of the given bounds in box. "fill" covers the
// box (the caller clips), "stretch" ignores the aspect ratio and anything
// else fits inside the box.
func ImageRect(mode string, box rendering.Rect, bounds image.Rectangle) rendering.Rect {
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	if iw <= 0 || ih <= 0 {
		return box
	}
	sx, sy := box.Width()/iw, box.Height()/ih
	var s float64
	switch strings.ToLower(mode) {
	case "stretch":
		return box
	case "fill":
		s = math.Max(sx, sy)
	default:
		s = math.Min(sx, sy)
	}
	return rendering.RectFromCenter(box.Center(), iw*s, ih*s)
}

// paintText draws each line of a run on its baseline. Lines are vertically
// centered in their line box.
func paintText(c rendering.Canvas, run layout.TextRun) {
	l := run.Layout
	if l == nil {
		return
	}
	style := l.Style
	style.Anchor = rendering.AnchorStart
	lead := (l.LineHeight - (l.Ascent + l.Descent)) / 2
	for i, line := range l.Lines {
		if line.Text == "" {
			continue
		}
		x := run.Rect.Left
		switch run.Align {
		case layout.TextAlignCenter:
			x += (run.Rect.Width() - line.Width) / 2
		case layout.TextAlignTrailing:
			x = run.Rect.Right - line.Width
		}
		baseline := run.Rect.Top + float64(i)*l.LineHeight + lead + l.Ascent
		c.DrawText(line.Text, rendering.Offset{X: x, Y: baseline}, style)
	}
}
