// Package raster paints layout plans into RGBA images.
//
// Canvas implements rendering.Canvas in pure Go: paths are flattened and
// filled with golang.org/x/image/vector, strokes are expanded into filled
// pieces, text is drawn with the same bitmap face layout measures with and
// images are resampled with golang.org/x/image/draw. Output matches the
// layout's logical size times a device scale factor.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/widgetkit/pkg/rendering"
)

// Canvas rasterizes drawing commands into an *image.RGBA.
type Canvas struct {
	size   rendering.Size
	base   *image.RGBA
	bounds image.Rectangle
	t      tracker
}

var _ rendering.Canvas = (*Canvas)(nil)

// NewCanvas returns a transparent canvas of the given logical size. Scale is
// the device pixel ratio; values <= 0 mean 1.
func NewCanvas(size rendering.Size, scale float64) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(size.Width * scale))
	h := int(math.Ceil(size.Height * scale))
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	c := &Canvas{size: size, base: img, bounds: img.Rect}
	c.t.cur.xf = transform{sx: scale, sy: scale}
	return c
}

// Image returns the rendered pixels. Layers still open are not included.
func (c *Canvas) Image() *image.RGBA { return c.base }

func (c *Canvas) target() *image.RGBA {
	if n := len(c.t.layers); n > 0 {
		return c.t.layers[n-1].img
	}
	return c.base
}

func (c *Canvas) Save() { c.t.save(false) }

func (c *Canvas) SaveLayerAlpha(_ rendering.Rect, alpha float64) {
	if !(alpha >= 0) {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	c.t.save(true)
	c.t.layers = append(c.t.layers, layer{img: image.NewRGBA(c.bounds), alpha: alpha})
}

func (c *Canvas) Restore() {
	l, ok := c.t.restore()
	if !ok {
		return
	}
	a := uint8(math.Round(l.alpha * 255))
	if a == 0 {
		return
	}
	draw.DrawMask(c.target(), c.bounds, l.img, c.bounds.Min, image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Over)
}

func (c *Canvas) Translate(dx, dy float64) { c.t.translate(dx, dy) }

func (c *Canvas) Scale(sx, sy float64) { c.t.scale(sx, sy) }

func (c *Canvas) ClipRect(rect rendering.Rect) {
	p := rendering.NewPath()
	p.AddRect(rect)
	c.clipPath(p)
}

func (c *Canvas) ClipRRect(rrect rendering.RRect) {
	p := rendering.NewPath()
	p.AddRRect(rrect)
	c.clipPath(p)
}

func (c *Canvas) clipPath(p *rendering.Path) {
	m := image.NewAlpha(c.bounds)
	accumulate(m, c.device(p))
	c.t.intersectClip(m)
}

// Clear fills the whole target, ignoring the clip.
func (c *Canvas) Clear(col rendering.Color) {
	draw.Draw(c.target(), c.bounds, image.NewUniform(nrgba(col)), image.Point{}, draw.Src)
}

func (c *Canvas) DrawRect(rect rendering.Rect, paint rendering.Paint) {
	p := rendering.NewPath()
	p.AddRect(rect)
	c.DrawPath(p, paint)
}

func (c *Canvas) DrawRRect(rrect rendering.RRect, paint rendering.Paint) {
	p := rendering.NewPath()
	p.AddRRect(rrect)
	c.DrawPath(p, paint)
}

func (c *Canvas) DrawCircle(center rendering.Offset, radius float64, paint rendering.Paint) {
	if radius <= 0 {
		return
	}
	p := rendering.NewPath()
	p.AddOval(rendering.RectFromCenter(center, radius*2, radius*2))
	c.DrawPath(p, paint)
}

// DrawLine always strokes, whatever the paint style.
func (c *Canvas) DrawLine(start, end rendering.Offset, paint rendering.Paint) {
	p := rendering.NewPath()
	p.MoveTo(start.X, start.Y)
	p.LineTo(end.X, end.Y)
	paint.Style = rendering.PaintStyleStroke
	c.DrawPath(p, paint)
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
	polys := c.device(path)
	src := c.source(paint)
	if paint.Style == rendering.PaintStyleFill || paint.Style == rendering.PaintStyleFillAndStroke {
		closed := make([]rendering.Polyline, len(polys))
		for i, pl := range polys {
			pl.Closed = true
			closed[i] = pl
		}
		if m := c.mask(closed, 1); m != nil {
			accumulate(m, closed)
			c.cover(m, src)
		}
	}
	if paint.Style == rendering.PaintStyleStroke || paint.Style == rendering.PaintStyleFillAndStroke {
		width := paint.StrokeWidth
		if width <= 0 {
			width = 1
		}
		w := math.Max(c.t.cur.xf.length(width), 1)
		pieces := strokePieces(polys, w, paint.StrokeCap)
		if m := c.mask(pieces, 1); m != nil {
			for _, piece := range pieces {
				accumulate(m, []rendering.Polyline{piece})
			}
			c.cover(m, src)
		}
	}
}

// DrawText renders the metrics face into an alpha mask at its native size
// and scales that mask to the requested font size, so drawn advances match
// rendering.MeasureText.
func (c *Canvas) DrawText(text string, origin rendering.Offset, style rendering.TextStyle) {
	if text == "" || style.Color.Alpha() == 0 {
		return
	}
	face := basicfont.Face7x13
	m := face.Metrics()
	ref := float64(m.Height) / 64
	nativeW := font.MeasureString(face, text).Ceil()
	if nativeW <= 0 {
		return
	}
	bold := style.FontWeight >= rendering.FontWeightSemibold
	glyphs := image.NewAlpha(image.Rect(0, 0, nativeW+1, int(math.Ceil(ref))))
	d := &font.Drawer{Dst: glyphs, Src: image.Opaque, Face: face, Dot: fixed.P(0, m.Ascent.Ceil())}
	d.DrawString(text)
	if bold {
		d.Dot = fixed.P(1, m.Ascent.Ceil())
		d.DrawString(text)
	}

	size := style.EffectiveSize()
	ascent, _, _ := rendering.FontMetrics(size)
	width := rendering.MeasureText(text, style)
	topLeft := c.t.cur.xf.point(rendering.Offset{
		X: origin.X - rendering.AnchorOffset(style.Anchor, width),
		Y: origin.Y - ascent,
	})
	xf := c.t.cur.xf
	k := size / ref
	wx := float64(glyphs.Rect.Dx()) * k * xf.sx
	if bold {
		wx *= 1.05
	}
	hy := ref * k * xf.sy
	full := image.Rect(
		int(math.Round(topLeft.X)), int(math.Round(topLeft.Y)),
		int(math.Round(topLeft.X+wx)), int(math.Round(topLeft.Y+hy)),
	)
	r := full.Intersect(c.bounds)
	if r.Empty() {
		return
	}
	scaled := image.NewAlpha(r)
	xdraw.BiLinear.Scale(scaled, full, glyphs, glyphs.Rect, xdraw.Src, nil)
	c.cover(scaled, image.NewUniform(nrgba(style.Color)))
}

func (c *Canvas) DrawImage(img image.Image, dst rendering.Rect) {
	if img == nil || img.Bounds().Empty() {
		return
	}
	xf := c.t.cur.xf
	tl := xf.point(dst.TopLeft())
	br := xf.point(rendering.Offset{X: dst.Right, Y: dst.Bottom})
	dr := image.Rect(int(math.Round(tl.X)), int(math.Round(tl.Y)), int(math.Round(br.X)), int(math.Round(br.Y)))
	if dr.Empty() {
		return
	}
	var opts *xdraw.Options
	if c.t.cur.clip != nil {
		opts = &xdraw.Options{DstMask: c.t.cur.clip}
	}
	xdraw.CatmullRom.Scale(c.target(), dr, img, img.Bounds(), xdraw.Over, opts)
}

// DrawRRectShadow fills the offset shape and blurs it with three box passes,
// which approximates a gaussian of the shadow's sigma.
func (c *Canvas) DrawRRectShadow(rrect rendering.RRect, shadow rendering.BoxShadow) {
	if shadow.Color.Alpha() == 0 {
		return
	}
	rr := rrect
	rr.Rect = rr.Rect.Translate(shadow.Offset.X, shadow.Offset.Y)
	p := rendering.NewPath()
	p.AddRRect(rr)
	polys := c.device(p)
	sigma := c.t.cur.xf.length(shadow.Sigma())
	m := c.mask(polys, math.Ceil(c.t.cur.xf.length(shadow.Extent()))+1)
	if m == nil {
		return
	}
	accumulate(m, polys)
	if radius := int(math.Round(sigma)); radius > 0 {
		for i := 0; i < 3; i++ {
			boxBlur(m, radius)
		}
	}
	c.cover(m, image.NewUniform(nrgba(shadow.Color)))
}

func (c *Canvas) Size() rendering.Size { return c.size }

// device flattens a user-space path into device-space polylines.
func (c *Canvas) device(p *rendering.Path) []rendering.Polyline {
	xf := c.t.cur.xf
	return p.Transform(xf.sx, xf.sy, xf.tx, xf.ty).Flatten(flatTolerance)
}

// mask allocates an empty mask covering polys, clipped to the canvas.
func (c *Canvas) mask(polys []rendering.Polyline, pad float64) *image.Alpha {
	r := bbox(polys, pad).Intersect(c.bounds)
	if c.t.cur.clip != nil {
		r = r.Intersect(c.t.cur.clip.Rect)
	}
	if r.Empty() {
		return nil
	}
	return image.NewAlpha(r)
}

// cover composites src through m and the current clip.
func (c *Canvas) cover(m *image.Alpha, src image.Image) {
	if c.t.cur.clip != nil {
		multiply(m, c.t.cur.clip)
	}
	draw.DrawMask(c.target(), m.Rect, src, m.Rect.Min, m, m.Rect.Min, draw.Over)
}

func (c *Canvas) source(paint rendering.Paint) image.Image {
	if paint.Gradient != nil && paint.Gradient.IsValid() {
		return &gradientImage{g: paint.Gradient, xf: c.t.cur.xf, bounds: c.bounds}
	}
	return image.NewUniform(nrgba(paint.Color))
}

func visible(paint rendering.Paint) bool {
	if paint.Gradient != nil && paint.Gradient.IsValid() {
		return true
	}
	return paint.Color.Alpha() > 0
}

func nrgba(c rendering.Color) color.NRGBA {
	r, g, b, a := c.Components()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// gradientImage evaluates a gradient per device pixel in the user space the
// gradient was defined in.
type gradientImage struct {
	g      *rendering.Gradient
	xf     transform
	bounds image.Rectangle
}

func (gi *gradientImage) ColorModel() color.Model { return color.NRGBAModel }

func (gi *gradientImage) Bounds() image.Rectangle { return gi.bounds }

func (gi *gradientImage) At(x, y int) color.Color {
	return nrgba(gi.g.ColorAtPoint(gi.xf.inverse(x, y)))
}

// boxBlur runs one horizontal and one vertical running-sum pass over m.
func boxBlur(m *image.Alpha, radius int) {
	w, h := m.Rect.Dx(), m.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	span := 2*radius + 1
	line := make([]int, max(w, h))
	blur := func(get func(i int) uint8, set func(i int, v uint8), n int) {
		for i := 0; i < n; i++ {
			line[i] = int(get(i))
		}
		sum := 0
		for i := -radius; i <= radius; i++ {
			if i >= 0 && i < n {
				sum += line[i]
			}
		}
		for i := 0; i < n; i++ {
			set(i, uint8((sum+span/2)/span))
			if out := i - radius; out >= 0 {
				sum -= line[out]
			}
			if in := i + radius + 1; in < n {
				sum += line[in]
			}
		}
	}
	for y := 0; y < h; y++ {
		row := m.Pix[y*m.Stride:]
		blur(func(i int) uint8 { return row[i] }, func(i int, v uint8) { row[i] = v }, w)
	}
	for x := 0; x < w; x++ {
		blur(func(i int) uint8 { return m.Pix[i*m.Stride+x] }, func(i int, v uint8) { m.Pix[i*m.Stride+x] = v }, h)
	}
}
