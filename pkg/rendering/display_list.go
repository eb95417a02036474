package rendering

import "image"

// DisplayList is an immutable list of drawing operations.
// It can be replayed onto any Canvas implementation.
type DisplayList struct {
	ops  []DisplayOp
	size Size
}

// Paint replays the recorded operations onto the provided canvas.
func (d *DisplayList) Paint(canvas Canvas) {
	for _, op := range d.ops {
		op.Execute(canvas)
	}
}

// Size returns the size recorded when the display list was created.
func (d *DisplayList) Size() Size {
	return d.size
}

// Ops returns the recorded operations in order.
func (d *DisplayList) Ops() []DisplayOp {
	return d.ops
}

// PictureRecorder records drawing commands into a display list.
type PictureRecorder struct {
	ops       []DisplayOp
	recording bool
	size      Size
}

// BeginRecording starts a new recording session.
func (r *PictureRecorder) BeginRecording(size Size) Canvas {
	r.ops = r.ops[:0]
	r.recording = true
	r.size = size
	return &recordingCanvas{recorder: r, size: size}
}

// EndRecording finishes the recording and returns a display list.
func (r *PictureRecorder) EndRecording() *DisplayList {
	if !r.recording {
		return &DisplayList{size: r.size}
	}
	r.recording = false
	ops := make([]DisplayOp, len(r.ops))
	copy(ops, r.ops)
	return &DisplayList{
		ops:  ops,
		size: r.size,
	}
}

func (r *PictureRecorder) append(op DisplayOp) {
	if !r.recording {
		return
	}
	r.ops = append(r.ops, op)
}

// DisplayOp is one recorded canvas call.
type DisplayOp interface {
	Execute(canvas Canvas)
}

type recordingCanvas struct {
	recorder *PictureRecorder
	size     Size
}

func (c *recordingCanvas) Save() {
	c.recorder.append(OpSave{})
}

func (c *recordingCanvas) SaveLayerAlpha(bounds Rect, alpha float64) {
	c.recorder.append(OpSaveLayerAlpha{Bounds: bounds, Alpha: alpha})
}

func (c *recordingCanvas) Restore() {
	c.recorder.append(OpRestore{})
}

func (c *recordingCanvas) Translate(dx, dy float64) {
	c.recorder.append(OpTranslate{DX: dx, DY: dy})
}

func (c *recordingCanvas) Scale(sx, sy float64) {
	c.recorder.append(OpScale{SX: sx, SY: sy})
}

func (c *recordingCanvas) ClipRect(rect Rect) {
	c.recorder.append(OpClipRect{Rect: rect})
}

func (c *recordingCanvas) ClipRRect(rrect RRect) {
	c.recorder.append(OpClipRRect{RRect: rrect})
}

func (c *recordingCanvas) Clear(color Color) {
	c.recorder.append(OpClear{Color: color})
}

func (c *recordingCanvas) DrawRect(rect Rect, paint Paint) {
	c.recorder.append(OpRect{Rect: rect, Paint: paint})
}

func (c *recordingCanvas) DrawRRect(rrect RRect, paint Paint) {
	c.recorder.append(OpRRect{RRect: rrect, Paint: paint})
}

func (c *recordingCanvas) DrawCircle(center Offset, radius float64, paint Paint) {
	c.recorder.append(OpCircle{Center: center, Radius: radius, Paint: paint})
}

func (c *recordingCanvas) DrawLine(start, end Offset, paint Paint) {
	c.recorder.append(OpLine{Start: start, End: end, Paint: paint})
}

func (c *recordingCanvas) DrawArc(oval Rect, startDeg, sweepDeg float64, useCenter bool, paint Paint) {
	c.recorder.append(OpArc{Oval: oval, StartDeg: startDeg, SweepDeg: sweepDeg, UseCenter: useCenter, Paint: paint})
}

func (c *recordingCanvas) DrawPath(path *Path, paint Paint) {
	c.recorder.append(OpPath{Path: path, Paint: paint})
}

func (c *recordingCanvas) DrawText(text string, origin Offset, style TextStyle) {
	c.recorder.append(OpText{Text: text, Origin: origin, Style: style})
}

func (c *recordingCanvas) DrawImage(img image.Image, dst Rect) {
	c.recorder.append(OpImage{Image: img, Dst: dst})
}

func (c *recordingCanvas) DrawRRectShadow(rrect RRect, shadow BoxShadow) {
	c.recorder.append(OpRRectShadow{RRect: rrect, Shadow: shadow})
}

func (c *recordingCanvas) Size() Size {
	return c.size
}

type OpSave struct{}

func (OpSave) Execute(canvas Canvas) { canvas.Save() }

type OpSaveLayerAlpha struct {
	Bounds Rect
	Alpha  float64
}

func (op OpSaveLayerAlpha) Execute(canvas Canvas) { canvas.SaveLayerAlpha(op.Bounds, op.Alpha) }

type OpRestore struct{}

func (OpRestore) Execute(canvas Canvas) { canvas.Restore() }

type OpTranslate struct{ DX, DY float64 }

func (op OpTranslate) Execute(canvas Canvas) { canvas.Translate(op.DX, op.DY) }

type OpScale struct{ SX, SY float64 }

func (op OpScale) Execute(canvas Canvas) { canvas.Scale(op.SX, op.SY) }

type OpClipRect struct{ Rect Rect }

func (op OpClipRect) Execute(canvas Canvas) { canvas.ClipRect(op.Rect) }

type OpClipRRect struct{ RRect RRect }

func (op OpClipRRect) Execute(canvas Canvas) { canvas.ClipRRect(op.RRect) }

type OpClear struct{ Color Color }

func (op OpClear) Execute(canvas Canvas) { canvas.Clear(op.Color) }

type OpRect struct {
	Rect  Rect
	Paint Paint
}

func (op OpRect) Execute(canvas Canvas) { canvas.DrawRect(op.Rect, op.Paint) }

type OpRRect struct {
	RRect RRect
	Paint Paint
}

func (op OpRRect) Execute(canvas Canvas) { canvas.DrawRRect(op.RRect, op.Paint) }

type OpCircle struct {
	Center Offset
	Radius float64
	Paint  Paint
}

func (op OpCircle) Execute(canvas Canvas) { canvas.DrawCircle(op.Center, op.Radius, op.Paint) }

type OpLine struct {
	Start, End Offset
	Paint      Paint
}

func (op OpLine) Execute(canvas Canvas) { canvas.DrawLine(op.Start, op.End, op.Paint) }

type OpArc struct {
	Oval               Rect
	StartDeg, SweepDeg float64
	UseCenter          bool
	Paint              Paint
}

func (op OpArc) Execute(canvas Canvas) {
	canvas.DrawArc(op.Oval, op.StartDeg, op.SweepDeg, op.UseCenter, op.Paint)
}

type OpPath struct {
	Path  *Path
	Paint Paint
}

func (op OpPath) Execute(canvas Canvas) { canvas.DrawPath(op.Path, op.Paint) }

type OpText struct {
	Text   string
	Origin Offset
	Style  TextStyle
}

func (op OpText) Execute(canvas Canvas) { canvas.DrawText(op.Text, op.Origin, op.Style) }

type OpImage struct {
	Image image.Image
	Dst   Rect
}

func (op OpImage) Execute(canvas Canvas) { canvas.DrawImage(op.Image, op.Dst) }

type OpRRectShadow struct {
	RRect  RRect
	Shadow BoxShadow
}

func (op OpRRectShadow) Execute(canvas Canvas) { canvas.DrawRRectShadow(op.RRect, op.Shadow) }
