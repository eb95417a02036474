package raster

import (
	"image"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/go-drift/widgetkit/pkg/rendering"
)

// flatTolerance is the curve flattening tolerance in device pixels.
const flatTolerance = 0.25

// bbox returns the pixel rectangle covering polys grown by pad.
func bbox(polys []rendering.Polyline, pad float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pl := range polys {
		for _, p := range pl.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if minX > maxX {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(minX-pad)), int(math.Floor(minY-pad)),
		int(math.Ceil(maxX+pad)), int(math.Ceil(maxY+pad)),
	)
}

// accumulate rasterizes closed polygons into m with the over operator, so
// repeated calls build a union. Geometry outside m is clamped by the
// rasterizer.
func accumulate(m *image.Alpha, polys []rendering.Polyline) {
	r := bbox(polys, 1).Intersect(m.Rect)
	if r.Empty() {
		return
	}
	z := vector.NewRasterizer(r.Dx(), r.Dy())
	z.DrawOp = draw.Over
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	drawn := false
	for _, pl := range polys {
		if len(pl.Points) < 3 {
			continue
		}
		z.MoveTo(float32(pl.Points[0].X-ox), float32(pl.Points[0].Y-oy))
		for _, p := range pl.Points[1:] {
			z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		z.ClosePath()
		drawn = true
	}
	if drawn {
		z.Draw(m, r, image.Opaque, image.Point{})
	}
}

// circle approximates a disc as a polygon.
func circle(c rendering.Offset, r float64) rendering.Polyline {
	n := int(math.Ceil(r * 2))
	n = max(8, min(n, 64))
	pts := make([]rendering.Offset, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = rendering.Offset{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return rendering.Polyline{Points: pts, Closed: true}
}

// strokePieces expands polylines into filled pieces: one quad per segment,
// discs on corners that turn noticeably and the requested caps. Each piece is
// rasterized on its own so overlaps never cancel.
func strokePieces(polys []rendering.Polyline, width float64, lineCap rendering.StrokeCap) []rendering.Polyline {
	hw := width / 2
	var out []rendering.Polyline
	for _, pl := range polys {
		pts := dedupe(pl.Points)
		if len(pts) == 1 {
			if lineCap == rendering.CapRound {
				out = append(out, circle(pts[0], hw))
			} else if lineCap == rendering.CapSquare {
				out = append(out, square(pts[0], hw))
			}
			continue
		}
		closed := pl.Closed && len(pts) > 2
		if closed {
			if n := len(pts); near(pts[0], pts[n-1]) {
				pts = pts[:n-1]
			}
			pts = append(pts, pts[0])
		}
		last := len(pts) - 2
		for i := 0; i <= last; i++ {
			a, b := pts[i], pts[i+1]
			if !closed && lineCap == rendering.CapSquare {
				if i == 0 {
					a = extend(b, a, hw)
				}
				if i == last {
					b = extend(a, b, hw)
				}
			}
			out = append(out, segment(a, b, hw))
			if i > 0 && turns(pts[i-1], pts[i], pts[i+1]) {
				out = append(out, circle(pts[i], hw))
			}
		}
		if closed && len(pts) > 2 && turns(pts[len(pts)-2], pts[0], pts[1]) {
			out = append(out, circle(pts[0], hw))
		}
		if !closed && lineCap == rendering.CapRound {
			out = append(out, circle(pts[0], hw), circle(pts[len(pts)-1], hw))
		}
	}
	return out
}

func dedupe(pts []rendering.Offset) []rendering.Offset {
	out := make([]rendering.Offset, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && near(p, out[n-1]) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func near(a, b rendering.Offset) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) < 1e-6
}

func segment(a, b rendering.Offset, hw float64) rendering.Polyline {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	nx, ny := -dy/l*hw, dx/l*hw
	return rendering.Polyline{Points: []rendering.Offset{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, Closed: true}
}

// extend moves to past from along the from→to direction by d.
func extend(from, to rendering.Offset, d float64) rendering.Offset {
	dx, dy := to.X-from.X, to.Y-from.Y
	l := math.Hypot(dx, dy)
	return rendering.Offset{X: to.X + dx/l*d, Y: to.Y + dy/l*d}
}

func square(c rendering.Offset, hw float64) rendering.Polyline {
	return rendering.Polyline{Points: []rendering.Offset{
		{X: c.X - hw, Y: c.Y - hw}, {X: c.X + hw, Y: c.Y - hw},
		{X: c.X + hw, Y: c.Y + hw}, {X: c.X - hw, Y: c.Y + hw},
	}, Closed: true}
}

// turns reports whether the path bends more than a few degrees at b.
// Flattened curves turn by tiny angles and need no join.
func turns(a, b, c rendering.Offset) bool {
	ux, uy := b.X-a.X, b.Y-a.Y
	vx, vy := c.X-b.X, c.Y-b.Y
	lu, lv := math.Hypot(ux, uy), math.Hypot(vx, vy)
	if lu == 0 || lv == 0 {
		return false
	}
	return (ux*vx+uy*vy)/(lu*lv) < math.Cos(8*math.Pi/180)
}
