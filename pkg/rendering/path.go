package rendering

import (
	"fmt"
	"math"
)

// PathOp represents a path drawing operation type.
type PathOp int

const (
	PathOpMoveTo  PathOp = iota // Start new subpath at point (x, y)
	PathOpLineTo                // Draw line to point (x, y)
	PathOpQuadTo                // Draw quadratic curve to (x2, y2) via control (x1, y1)
	PathOpCubicTo               // Draw cubic curve to (x3, y3) via controls (x1, y1), (x2, y2)
	PathOpClose                 // Close subpath with line to start point
)

// String returns a human-readable representation of the path operation.
func (o PathOp) String() string {
	switch o {
	case PathOpMoveTo:
		return "move_to"
	case PathOpLineTo:
		return "line_to"
	case PathOpQuadTo:
		return "quad_to"
	case PathOpCubicTo:
		return "cubic_to"
	case PathOpClose:
		return "close"
	default:
		return fmt.Sprintf("PathOp(%d)", int(o))
	}
}

// PathCommand represents a single path operation with its coordinate arguments.
type PathCommand struct {
	Op   PathOp    // The operation type
	Args []float64 // Coordinates: MoveTo/LineTo=[x,y], QuadTo=[x1,y1,x2,y2], CubicTo=[x1,y1,x2,y2,x3,y3]
}

// Path represents a vector path for drawing arbitrary shapes.
//
// Build paths using MoveTo, LineTo, QuadTo, CubicTo, and Close methods, or the
// shape helpers AddRect, AddRRect, AddOval and AddArc.
type Path struct {
	Commands []PathCommand
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new subpath at the given point.
func (p *Path) MoveTo(x, y float64) {
	p.Commands = append(p.Commands, PathCommand{
		Op:   PathOpMoveTo,
		Args: []float64{x, y},
	})
}

// LineTo adds a line segment from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.Commands = append(p.Commands, PathCommand{
		Op:   PathOpLineTo,
		Args: []float64{x, y},
	})
}

// QuadTo adds a quadratic bezier curve from the current point to (x2, y2)
// with control point (x1, y1).
func (p *Path) QuadTo(x1, y1, x2, y2 float64) {
	p.Commands = append(p.Commands, PathCommand{
		Op:   PathOpQuadTo,
		Args: []float64{x1, y1, x2, y2},
	})
}

// CubicTo adds a cubic bezier curve from the current point to (x3, y3)
// with control points (x1, y1) and (x2, y2).
func (p *Path) CubicTo(x1, y1, x2, y2, x3, y3 float64) {
	p.Commands = append(p.Commands, PathCommand{
		Op:   PathOpCubicTo,
		Args: []float64{x1, y1, x2, y2, x3, y3},
	})
}

// Close closes the current subpath by drawing a line to the starting point.
func (p *Path) Close() {
	p.Commands = append(p.Commands, PathCommand{
		Op: PathOpClose,
	})
}

// IsEmpty returns true if the path has no commands.
func (p *Path) IsEmpty() bool {
	return len(p.Commands) == 0
}

// AddRect appends a closed rectangle subpath.
func (p *Path) AddRect(r Rect) {
	p.MoveTo(r.Left, r.Top)
	p.LineTo(r.Right, r.Top)
	p.LineTo(r.Right, r.Bottom)
	p.LineTo(r.Left, r.Bottom)
	p.Close()
}

// AddRRect appends a closed rounded rectangle subpath. Radii larger than half
// the rectangle are clamped.
func (p *Path) AddRRect(rr RRect) {
	r := rr.Rect
	clamp := func(v, limit float64) float64 { return math.Max(0, math.Min(v, limit)) }
	hw, hh := r.Width()/2, r.Height()/2
	tl := Radius{clamp(rr.TopLeft.X, hw), clamp(rr.TopLeft.Y, hh)}
	tr := Radius{clamp(rr.TopRight.X, hw), clamp(rr.TopRight.Y, hh)}
	br := Radius{clamp(rr.BottomRight.X, hw), clamp(rr.BottomRight.Y, hh)}
	bl := Radius{clamp(rr.BottomLeft.X, hw), clamp(rr.BottomLeft.Y, hh)}

	p.MoveTo(r.Left+tl.X, r.Top)
	p.LineTo(r.Right-tr.X, r.Top)
	p.cornerArc(r.Right-tr.X, r.Top+tr.Y, tr, -90)
	p.LineTo(r.Right, r.Bottom-br.Y)
	p.cornerArc(r.Right-br.X, r.Bottom-br.Y, br, 0)
	p.LineTo(r.Left+bl.X, r.Bottom)
	p.cornerArc(r.Left+bl.X, r.Bottom-bl.Y, bl, 90)
	p.LineTo(r.Left, r.Top+tl.Y)
	p.cornerArc(r.Left+tl.X, r.Top+tl.Y, tl, 180)
	p.Close()
}

func (p *Path) cornerArc(cx, cy float64, r Radius, startDeg float64) {
	if r.X <= 0 || r.Y <= 0 {
		return
	}
	p.arcSegments(cx, cy, r.X, r.Y, startDeg, 90)
}

// AddOval appends a closed ellipse inscribed in r.
func (p *Path) AddOval(r Rect) {
	c := r.Center()
	rx, ry := r.Width()/2, r.Height()/2
	p.MoveTo(c.X+rx, c.Y)
	p.arcSegments(c.X, c.Y, rx, ry, 0, 360)
	p.Close()
}

// AddArc appends an arc of the ellipse inscribed in oval. Angles are in
// degrees measured clockwise from +x. When wedge is true the arc is closed
// through the center, producing a pie slice.
func (p *Path) AddArc(oval Rect, startDeg, sweepDeg float64, wedge bool) {
	c := oval.Center()
	rx, ry := oval.Width()/2, oval.Height()/2
	a := startDeg * math.Pi / 180
	sx, sy := c.X+rx*math.Cos(a), c.Y+ry*math.Sin(a)
	if wedge {
		p.MoveTo(c.X, c.Y)
		p.LineTo(sx, sy)
	} else {
		p.MoveTo(sx, sy)
	}
	p.arcSegments(c.X, c.Y, rx, ry, startDeg, sweepDeg)
	if wedge {
		p.Close()
	}
}

// arcSegments emits cubic segments of at most 90 degrees. The current point
// must already be at the arc start.
func (p *Path) arcSegments(cx, cy, rx, ry, startDeg, sweepDeg float64) {
	if sweepDeg == 0 {
		return
	}
	n := int(math.Ceil(math.Abs(sweepDeg) / 90))
	step := sweepDeg / float64(n) * math.Pi / 180
	a0 := startDeg * math.Pi / 180
	k := 4.0 / 3.0 * math.Tan(step/4)
	for i := 0; i < n; i++ {
		a1 := a0 + step
		cos0, sin0 := math.Cos(a0), math.Sin(a0)
		cos1, sin1 := math.Cos(a1), math.Sin(a1)
		p.CubicTo(
			cx+rx*(cos0-k*sin0), cy+ry*(sin0+k*cos0),
			cx+rx*(cos1+k*sin1), cy+ry*(sin1-k*cos1),
			cx+rx*cos1, cy+ry*sin1,
		)
		a0 = a1
	}
}

// Transform returns a copy of the path with every point scaled by (sx, sy)
// and then translated by (dx, dy).
func (p *Path) Transform(sx, sy, dx, dy float64) *Path {
	out := &Path{Commands: make([]PathCommand, len(p.Commands))}
	for i, cmd := range p.Commands {
		args := make([]float64, len(cmd.Args))
		for j, v := range cmd.Args {
			if j%2 == 0 {
				args[j] = v*sx + dx
			} else {
				args[j] = v*sy + dy
			}
		}
		out.Commands[i] = PathCommand{Op: cmd.Op, Args: args}
	}
	return out
}

// Polyline is a flattened subpath.
type Polyline struct {
	Points []Offset
	Closed bool
}

// Flatten converts the path into straight-line subpaths. Curves are
// subdivided until each segment deviates less than tolerance pixels.
func (p *Path) Flatten(tolerance float64) []Polyline {
	if tolerance <= 0 {
		tolerance = 0.25
	}
	var (
		out   []Polyline
		cur   *Polyline
		pen   Offset
		start Offset
	)
	begin := func(at Offset) {
		if cur != nil && len(cur.Points) > 0 {
			out = append(out, *cur)
		}
		cur = &Polyline{Points: []Offset{at}}
		start = at
	}
	ensure := func() {
		if cur == nil {
			begin(pen)
		}
	}
	for _, cmd := range p.Commands {
		switch cmd.Op {
		case PathOpMoveTo:
			pen = Offset{cmd.Args[0], cmd.Args[1]}
			begin(pen)
		case PathOpLineTo:
			ensure()
			pen = Offset{cmd.Args[0], cmd.Args[1]}
			cur.Points = append(cur.Points, pen)
		case PathOpQuadTo:
			ensure()
			c := Offset{cmd.Args[0], cmd.Args[1]}
			end := Offset{cmd.Args[2], cmd.Args[3]}
			n := segmentsFor(math.Hypot(c.X-pen.X, c.Y-pen.Y)+math.Hypot(end.X-c.X, end.Y-c.Y), tolerance)
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				mt := 1 - t
				cur.Points = append(cur.Points, Offset{
					X: mt*mt*pen.X + 2*mt*t*c.X + t*t*end.X,
					Y: mt*mt*pen.Y + 2*mt*t*c.Y + t*t*end.Y,
				})
			}
			pen = end
		case PathOpCubicTo:
			ensure()
			c1 := Offset{cmd.Args[0], cmd.Args[1]}
			c2 := Offset{cmd.Args[2], cmd.Args[3]}
			end := Offset{cmd.Args[4], cmd.Args[5]}
			length := math.Hypot(c1.X-pen.X, c1.Y-pen.Y) + math.Hypot(c2.X-c1.X, c2.Y-c1.Y) + math.Hypot(end.X-c2.X, end.Y-c2.Y)
			n := segmentsFor(length, tolerance)
			for i := 1; i <= n; i++ {
				t := float64(i) / float64(n)
				mt := 1 - t
				a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
				cur.Points = append(cur.Points, Offset{
					X: a*pen.X + b*c1.X + c*c2.X + d*end.X,
					Y: a*pen.Y + b*c1.Y + c*c2.Y + d*end.Y,
				})
			}
			pen = end
		case PathOpClose:
			if cur != nil {
				cur.Closed = true
				out = append(out, *cur)
				cur = nil
			}
			pen = start
		}
	}
	if cur != nil && len(cur.Points) > 0 {
		out = append(out, *cur)
	}
	return out
}

func segmentsFor(length, tolerance float64) int {
	n := int(math.Ceil(math.Sqrt(length / tolerance)))
	if n < 1 {
		return 1
	}
	if n > 256 {
		return 256
	}
	return n
}

// Bounds returns the bounding box of all path points, control points included.
func (p *Path) Bounds() Rect {
	first := true
	var b Rect
	for _, cmd := range p.Commands {
		for i := 0; i+1 < len(cmd.Args); i += 2 {
			x, y := cmd.Args[i], cmd.Args[i+1]
			if first {
				b = Rect{Left: x, Top: y, Right: x, Bottom: y}
				first = false
				continue
			}
			b = b.Union(Rect{Left: x, Top: y, Right: x, Bottom: y})
		}
	}
	return b
}
