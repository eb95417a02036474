package testing

import (
	"fmt"
	"image"
	"math"

	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/paint"
	"github.com/go-drift/widgetkit/pkg/rendering"
)

// DisplayOp is a serialized canvas drawing operation.
type DisplayOp struct {
	Op     string         `json:"op"`
	Params map[string]any `json:"params,omitempty"`
}

// serializingCanvas implements rendering.Canvas and records ops as DisplayOp.
type serializingCanvas struct {
	ops  []DisplayOp
	size rendering.Size
}

func (c *serializingCanvas) add(op string, kvs ...any) {
	d := DisplayOp{Op: op}
	if len(kvs) > 0 {
		d.Params = params(kvs...)
	}
	c.ops = append(c.ops, d)
}

func (c *serializingCanvas) Save() { c.add("save") }

func (c *serializingCanvas) SaveLayerAlpha(bounds rendering.Rect, alpha float64) {
	c.add("saveLayerAlpha", "bounds", serializeRect(bounds), "alpha", round2(alpha))
}

func (c *serializingCanvas) Restore() { c.add("restore") }

func (c *serializingCanvas) Translate(dx, dy float64) {
	c.add("translate", "dx", round2(dx), "dy", round2(dy))
}

func (c *serializingCanvas) Scale(sx, sy float64) {
	c.add("scale", "sx", round2(sx), "sy", round2(sy))
}

func (c *serializingCanvas) ClipRect(rect rendering.Rect) {
	c.add("clipRect", "rect", serializeRect(rect))
}

func (c *serializingCanvas) ClipRRect(rrect rendering.RRect) {
	c.add("clipRRect", "rect", serializeRect(rrect.Rect), "radius", serializeRadius(rrect))
}

func (c *serializingCanvas) Clear(color rendering.Color) {
	c.add("clear", "color", serializeColor(color))
}

func (c *serializingCanvas) DrawRect(rect rendering.Rect, p rendering.Paint) {
	c.add("drawRect", "rect", serializeRect(rect), "paint", serializePaint(p))
}

func (c *serializingCanvas) DrawRRect(rrect rendering.RRect, p rendering.Paint) {
	c.add("drawRRect",
		"rect", serializeRect(rrect.Rect),
		"radius", serializeRadius(rrect),
		"paint", serializePaint(p),
	)
}

func (c *serializingCanvas) DrawCircle(center rendering.Offset, radius float64, p rendering.Paint) {
	c.add("drawCircle",
		"center", serializeOffset(center),
		"radius", round2(radius),
		"paint", serializePaint(p),
	)
}

func (c *serializingCanvas) DrawLine(start, end rendering.Offset, p rendering.Paint) {
	c.add("drawLine",
		"start", serializeOffset(start),
		"end", serializeOffset(end),
		"paint", serializePaint(p),
	)
}

func (c *serializingCanvas) DrawArc(oval rendering.Rect, startDeg, sweepDeg float64, useCenter bool, p rendering.Paint) {
	c.add("drawArc",
		"oval", serializeRect(oval),
		"start", round2(startDeg),
		"sweep", round2(sweepDeg),
		"useCenter", useCenter,
		"paint", serializePaint(p),
	)
}

func (c *serializingCanvas) DrawPath(path *rendering.Path, p rendering.Paint) {
	n := 0
	if path != nil {
		n = len(path.Commands)
	}
	c.add("drawPath", "commands", float64(n), "paint", serializePaint(p))
}

func (c *serializingCanvas) DrawText(text string, origin rendering.Offset, style rendering.TextStyle) {
	c.add("drawText",
		"text", text,
		"origin", serializeOffset(origin),
		"color", serializeColor(style.Color),
		"fontSize", round2(style.FontSize),
	)
}

func (c *serializingCanvas) DrawImage(img image.Image, dst rendering.Rect) {
	kvs := []any{"dst", serializeRect(dst)}
	if img != nil {
		b := img.Bounds()
		kvs = append(kvs, "width", float64(b.Dx()), "height", float64(b.Dy()))
	}
	c.add("drawImage", kvs...)
}

func (c *serializingCanvas) DrawRRectShadow(rrect rendering.RRect, shadow rendering.BoxShadow) {
	c.add("drawRRectShadow",
		"rect", serializeRect(rrect.Rect),
		"color", serializeColor(shadow.Color),
		"offset", serializeOffset(shadow.Offset),
		"blur", round2(shadow.BlurRadius),
	)
}

func (c *serializingCanvas) Size() rendering.Size { return c.size }

// serializePlan records the plan through the recorder the raster and svg
// backends share, then replays it into a serializing canvas.
func serializePlan(plan *layout.Plan) []DisplayOp {
	rec := &rendering.PictureRecorder{}
	paint.Render(rec.BeginRecording(plan.Size), plan)
	dl := rec.EndRecording()
	canvas := &serializingCanvas{size: dl.Size()}
	dl.Paint(canvas)
	return canvas.ops
}

func serializePaint(p rendering.Paint) map[string]any {
	m := params("color", serializeColor(p.Color), "style", p.Style.String())
	if p.Style != rendering.PaintStyleFill {
		m["strokeWidth"] = round2(p.StrokeWidth)
	}
	if p.Gradient != nil && p.Gradient.Type != rendering.GradientTypeNone {
		m["gradient"] = float64(p.Gradient.Type)
	}
	return m
}

func serializeRect(r rendering.Rect) map[string]any {
	return params(
		"left", round2(r.Left),
		"top", round2(r.Top),
		"right", round2(r.Right),
		"bottom", round2(r.Bottom),
	)
}

func serializeOffset(o rendering.Offset) map[string]any {
	return params("x", round2(o.X), "y", round2(o.Y))
}

func serializeRadius(rr rendering.RRect) map[string]any {
	// Uniform corners collapse to a single radius.
	if rr.TopLeft == rr.TopRight && rr.TopRight == rr.BottomRight && rr.BottomRight == rr.BottomLeft {
		return params("x", round2(rr.TopLeft.X), "y", round2(rr.TopLeft.Y))
	}
	corner := func(r rendering.Radius) map[string]any {
		return params("x", round2(r.X), "y", round2(r.Y))
	}
	return params(
		"topLeft", corner(rr.TopLeft),
		"topRight", corner(rr.TopRight),
		"bottomRight", corner(rr.BottomRight),
		"bottomLeft", corner(rr.BottomLeft),
	)
}

func serializeColor(c rendering.Color) string {
	return fmt.Sprintf("0x%08X", uint32(c))
}

// round2 rounds to 2 decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// params builds a map from alternating key-value pairs. The snapshot
// encoder sorts keys, so insertion order does not matter.
func params(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		m[kvs[i].(string)] = kvs[i+1]
	}
	return m
}
