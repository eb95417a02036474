// Package svg serializes layout plans as standalone SVG documents.
//
// Canvas implements rendering.Canvas by emitting SVG elements. Save,
// transforms, clips and opacity layers become nested groups that Restore
// closes. Gradients, clip paths and shadow filters are collected into defs.
// Images are embedded as PNG data URLs.
package svg

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-drift/widgetkit/pkg/rendering"
)

// Canvas writes drawing commands as SVG markup.
type Canvas struct {
	size   rendering.Size
	body   bytes.Buffer
	defs   bytes.Buffer
	nextID int
	// frames holds, per Save, the number of groups opened since.
	frames []int
	open   int
}

var _ rendering.Canvas = (*Canvas)(nil)

// NewCanvas returns an empty document of the given size.
func NewCanvas(size rendering.Size) *Canvas {
	return &Canvas{size: size}
}

func (c *Canvas) id(prefix string) string {
	c.nextID++
	return prefix + strconv.Itoa(c.nextID)
}

// group opens a <g> counted against the current frame.
func (c *Canvas) group(attrs string) {
	c.body.WriteString("<g " + attrs + ">")
	c.open++
}

func (c *Canvas) Save() {
	c.frames = append(c.frames, c.open)
	c.open = 0
}

func (c *Canvas) SaveLayerAlpha(_ rendering.Rect, alpha float64) {
	if !(alpha >= 0) {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	c.Save()
	c.group(`opacity="` + num(alpha) + `"`)
}

func (c *Canvas) Restore() {
	if len(c.frames) == 0 {
		return
	}
	c.closeGroups()
	c.open = c.frames[len(c.frames)-1]
	c.frames = c.frames[:len(c.frames)-1]
}

func (c *Canvas) closeGroups() {
	for ; c.open > 0; c.open-- {
		c.body.WriteString("</g>")
	}
}

func (c *Canvas) Translate(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	c.group(`transform="translate(` + num(dx) + " " + num(dy) + `)"`)
}

func (c *Canvas) Scale(sx, sy float64) {
	if sx == 1 && sy == 1 {
		return
	}
	c.group(`transform="scale(` + num(sx) + " " + num(sy) + `)"`)
}

func (c *Canvas) ClipRect(rect rendering.Rect) {
	p := rendering.NewPath()
	p.AddRect(rect)
	c.clip(p)
}

func (c *Canvas) ClipRRect(rrect rendering.RRect) {
	p := rendering.NewPath()
	p.AddRRect(rrect)
	c.clip(p)
}

// clip defines the clip in the current user space; clipPath units default
// to the user space of the referencing group.
func (c *Canvas) clip(p *rendering.Path) {
	id := c.id("clip")
	fmt.Fprintf(&c.defs, `<clipPath id="%s"><path d="%s"/></clipPath>`, id, PathData(p))
	c.group(`clip-path="url(#` + id + `)"`)
}

func (c *Canvas) Clear(col rendering.Color) {
	fmt.Fprintf(&c.body, `<rect x="0" y="0" width="%s" height="%s"%s/>`,
		num(c.size.Width), num(c.size.Height), colorAttrs("fill", col))
}

func (c *Canvas) DrawRect(rect rendering.Rect, paint rendering.Paint) {
	if !visible(paint) {
		return
	}
	fmt.Fprintf(&c.body, `<rect x="%s" y="%s" width="%s" height="%s"%s/>`,
		num(rect.Left), num(rect.Top), num(rect.Width()), num(rect.Height()), c.paintAttrs(paint))
}

func (c *Canvas) DrawRRect(rrect rendering.RRect, paint rendering.Paint) {
	if !visible(paint) {
		return
	}
	r := rrect.Rect
	rad := rrect.UniformRadius()
	if rrect == rendering.RRectFromRectAndRadius(r, rendering.CircularRadius(rad)) {
		rad = math.Max(0, math.Min(rad, math.Min(r.Width(), r.Height())/2))
		fmt.Fprintf(&c.body, `<rect x="%s" y="%s" width="%s" height="%s" rx="%s"%s/>`,
			num(r.Left), num(r.Top), num(r.Width()), num(r.Height()), num(rad), c.paintAttrs(paint))
		return
	}
	p := rendering.NewPath()
	p.AddRRect(rrect)
	c.DrawPath(p, paint)
}

func (c *Canvas) DrawCircle(center rendering.Offset, radius float64, paint rendering.Paint) {
	if radius <= 0 || !visible(paint) {
		return
	}
	fmt.Fprintf(&c.body, `<circle cx="%s" cy="%s" r="%s"%s/>`,
		num(center.X), num(center.Y), num(radius), c.paintAttrs(paint))
}

func (c *Canvas) DrawLine(start, end rendering.Offset, paint rendering.Paint) {
	paint.Style = rendering.PaintStyleStroke
	if !visible(paint) {
		return
	}
	fmt.Fprintf(&c.body, `<line x1="%s" y1="%s" x2="%s" y2="%s"%s/>`,
		num(start.X), num(start.Y), num(end.X), num(end.Y), c.paintAttrs(paint))
}

func (c *Canvas) DrawArc(oval rendering.Rect, startDeg, sweepDeg float64, useCenter bool, paint rendering.Paint) {
	p := rendering.NewPath()
	p.AddArc(oval, startDeg, sweepDeg, useCenter)
	c.DrawPath(p, paint)
}

func (c *Canvas) DrawPath(path *rendering.Path, paint rendering.Paint) {
	if path == nil || path.IsEmpty() || !visible(paint) {
		return
	}
	fmt.Fprintf(&c.body, `<path d="%s"%s/>`, PathData(path), c.paintAttrs(paint))
}

func (c *Canvas) DrawText(text string, origin rendering.Offset, style rendering.TextStyle) {
	if text == "" || style.Color.Alpha() == 0 {
		return
	}
	family := "-apple-system, system-ui, sans-serif"
	if style.Monospace {
		family = "ui-monospace, monospace"
	}
	weight := style.FontWeight
	if weight == 0 {
		weight = rendering.FontWeightNormal
	}
	anchor := "start"
	switch style.Anchor {
	case rendering.AnchorMiddle:
		anchor = "middle"
	case rendering.AnchorEnd:
		anchor = "end"
	}
	fmt.Fprintf(&c.body, `<text x="%s" y="%s" font-family="%s" font-size="%s" font-weight="%d" text-anchor="%s"%s>`,
		num(origin.X), num(origin.Y), family, num(style.EffectiveSize()), weight, anchor, colorAttrs("fill", style.Color))
	xml.EscapeText(&c.body, []byte(text))
	c.body.WriteString("</text>")
}

func (c *Canvas) DrawImage(img image.Image, dst rendering.Rect) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return
	}
	fmt.Fprintf(&c.body, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="none" href="data:image/png;base64,%s"/>`,
		num(dst.Left), num(dst.Top), num(dst.Width()), num(dst.Height()), base64.StdEncoding.EncodeToString(buf.Bytes()))
}

func (c *Canvas) DrawRRectShadow(rrect rendering.RRect, shadow rendering.BoxShadow) {
	if shadow.Color.Alpha() == 0 {
		return
	}
	filter := ""
	if sigma := shadow.Sigma(); sigma > 0 {
		id := c.id("shadow")
		fmt.Fprintf(&c.defs, `<filter id="%s" x="-50%%" y="-50%%" width="200%%" height="200%%"><feGaussianBlur stdDeviation="%s"/></filter>`,
			id, num(sigma))
		filter = ` filter="url(#` + id + `)"`
	}
	rr := rrect
	rr.Rect = rr.Rect.Translate(shadow.Offset.X, shadow.Offset.Y)
	p := rendering.NewPath()
	p.AddRRect(rr)
	fmt.Fprintf(&c.body, `<path d="%s"%s%s/>`, PathData(p), colorAttrs("fill", shadow.Color), filter)
}

func (c *Canvas) Size() rendering.Size { return c.size }

// WriteTo closes any open groups and writes the finished document. The
// canvas should not be drawn on afterwards.
func (c *Canvas) WriteTo(w io.Writer) (int64, error) {
	for len(c.frames) > 0 {
		c.Restore()
	}
	c.closeGroups()
	var doc bytes.Buffer
	fmt.Fprintf(&doc, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(c.size.Width), num(c.size.Height), num(c.size.Width), num(c.size.Height))
	if c.defs.Len() > 0 {
		doc.WriteString("<defs>")
		doc.Write(c.defs.Bytes())
		doc.WriteString("</defs>")
	}
	doc.Write(c.body.Bytes())
	doc.WriteString("</svg>\n")
	return doc.WriteTo(w)
}

// paintAttrs returns fill or stroke attributes for paint, defining a
// gradient when one is set.
func (c *Canvas) paintAttrs(paint rendering.Paint) string {
	var b strings.Builder
	paintRef := ""
	if paint.Gradient != nil && paint.Gradient.IsValid() {
		paintRef = "url(#" + c.gradient(paint.Gradient) + ")"
	}
	switch paint.Style {
	case rendering.PaintStyleStroke:
		b.WriteString(` fill="none"`)
		c.strokeAttrs(&b, paint, paintRef)
		return b.String()
	case rendering.PaintStyleFillAndStroke:
		c.strokeAttrs(&b, paint, paintRef)
	}
	if paintRef != "" {
		b.WriteString(` fill="` + paintRef + `"`)
		return b.String()
	}
	b.WriteString(colorAttrs("fill", paint.Color))
	return b.String()
}

func (c *Canvas) strokeAttrs(b *strings.Builder, paint rendering.Paint, paintRef string) {
	if paintRef != "" {
		b.WriteString(` stroke="` + paintRef + `"`)
	} else {
		b.WriteString(colorAttrs("stroke", paint.Color))
	}
	width := paint.StrokeWidth
	if width <= 0 {
		width = 1
	}
	b.WriteString(` stroke-width="` + num(width) + `"`)
	if paint.StrokeCap != rendering.CapButt {
		b.WriteString(` stroke-linecap="` + paint.StrokeCap.String() + `"`)
	}
}

// gradient defines g in user space and returns its id. SVG has no sweep
// gradient, so sweeps degrade to a radial ramp around the same center.
func (c *Canvas) gradient(g *rendering.Gradient) string {
	id := c.id("grad")
	switch g.Type {
	case rendering.GradientTypeLinear:
		fmt.Fprintf(&c.defs, `<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="%s" y1="%s" x2="%s" y2="%s">`,
			id, num(g.Linear.Start.X), num(g.Linear.Start.Y), num(g.Linear.End.X), num(g.Linear.End.Y))
		stops(&c.defs, g.Stops())
		c.defs.WriteString("</linearGradient>")
	case rendering.GradientTypeRadial:
		fmt.Fprintf(&c.defs, `<radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="%s" cy="%s" r="%s">`,
			id, num(g.Radial.Center.X), num(g.Radial.Center.Y), num(g.Radial.Radius))
		stops(&c.defs, g.Stops())
		c.defs.WriteString("</radialGradient>")
	default:
		fmt.Fprintf(&c.defs, `<radialGradient id="%s" gradientUnits="userSpaceOnUse" cx="%s" cy="%s" r="%s">`,
			id, num(g.Sweep.Center.X), num(g.Sweep.Center.Y), num(c.size.Width+c.size.Height))
		stops(&c.defs, g.Stops())
		c.defs.WriteString("</radialGradient>")
	}
	return id
}

func stops(w *bytes.Buffer, list []rendering.GradientStop) {
	for _, s := range list {
		fmt.Fprintf(w, `<stop offset="%s"%s/>`, num(s.Position), colorAttrs("stop-color", s.Color))
	}
}

// colorAttrs renders a color as an attribute plus a matching opacity
// attribute when it is translucent.
func colorAttrs(attr string, col rendering.Color) string {
	r, g, b, a := col.Components()
	out := fmt.Sprintf(` %s="#%02x%02x%02x"`, attr, r, g, b)
	if a < 255 {
		op := attr + "-opacity"
		if attr == "stop-color" {
			op = "stop-opacity"
		}
		out += fmt.Sprintf(` %s="%s"`, op, num(float64(a)/255))
	}
	return out
}

func visible(paint rendering.Paint) bool {
	if paint.Gradient != nil && paint.Gradient.IsValid() {
		return true
	}
	return paint.Color.Alpha() > 0
}

// PathData serializes p as SVG path data with absolute commands.
func PathData(p *rendering.Path) string {
	var b strings.Builder
	for _, cmd := range p.Commands {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		switch cmd.Op {
		case rendering.PathOpMoveTo:
			b.WriteString("M")
		case rendering.PathOpLineTo:
			b.WriteString("L")
		case rendering.PathOpQuadTo:
			b.WriteString("Q")
		case rendering.PathOpCubicTo:
			b.WriteString("C")
		case rendering.PathOpClose:
			b.WriteString("Z")
			continue
		}
		for i, v := range cmd.Args {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(num(v))
		}
	}
	return b.String()
}

// num formats a coordinate compactly with at most three decimals.
func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
	if s == "-0" {
		return "0"
	}
	return s
}
