package draw

import (
	"math"
	"strings"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

// ChartKind selects the chart renderer.
type ChartKind int

const (
	ChartBar ChartKind = iota
	ChartLine
	ChartArea
	ChartPie
)

// ParseChartKind maps a chartType; unknown types render as bars.
func ParseChartKind(s string) ChartKind {
	switch strings.ToLower(s) {
	case "line":
		return ChartLine
	case "area":
		return ChartArea
	case "pie":
		return ChartPie
	default:
		return ChartBar
	}
}

const (
	chartInset = 6
	barGap     = 3
	areaAlpha  = 0x55
)

// DefaultChartSize is the natural size of a chart without a frame.
var DefaultChartSize = rendering.Size{Width: 180, Height: 84}

// PiePalette colors pie slices that carry no color of their own.
var PiePalette = []rendering.Color{
	0xFF007AFF, // blue
	0xFF34C759, // green
	0xFFFF9500, // orange
	0xFFFF3B30, // red
	0xFFAF52DE, // purple
	0xFFFFCC00, // yellow
	0xFFFF2D55, // pink
	0xFF30B0C7, // teal
}

// Normalize maps values into [0, 1] over the range from min(0, min) to
// max. A zero span is replaced by 1.
func Normalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := 0.0, values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}

// BarRects lays out equal-width bars across track, bottom-aligned.
func BarRects(values []float64, track rendering.Rect, gap float64) []rendering.Rect {
	n := len(values)
	if n == 0 {
		return nil
	}
	barW := math.Max(1, (track.Width()-gap*float64(n-1))/float64(n))
	norm := Normalize(values)
	rects := make([]rendering.Rect, n)
	for i, h := range norm {
		x := track.Left + float64(i)*(barW+gap)
		top := track.Bottom - h*track.Height()
		rects[i] = rendering.Rect{Left: x, Top: top, Right: x + barW, Bottom: track.Bottom}
	}
	return rects
}

// LinePoints places values evenly across track.
func LinePoints(values []float64, track rendering.Rect) []rendering.Offset {
	n := len(values)
	if n == 0 {
		return nil
	}
	steps := float64(max(n-1, 1))
	norm := Normalize(values)
	pts := make([]rendering.Offset, n)
	for i, h := range norm {
		pts[i] = rendering.Offset{
			X: track.Left + float64(i)/steps*track.Width(),
			Y: track.Bottom - h*track.Height(),
		}
	}
	return pts
}

// LinePath connects points with straight segments.
func LinePath(pts []rendering.Offset) *rendering.Path {
	p := rendering.NewPath()
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	return p
}

// AreaPath is the line path closed down to the track's baseline.
func AreaPath(pts []rendering.Offset, track rendering.Rect) *rendering.Path {
	p := rendering.NewPath()
	if len(pts) == 0 {
		return p
	}
	p.MoveTo(pts[0].X, track.Bottom)
	for _, pt := range pts {
		p.LineTo(pt.X, pt.Y)
	}
	p.LineTo(pts[len(pts)-1].X, track.Bottom)
	p.Close()
	return p
}

// Slice is one pie wedge in degrees, clockwise from +x.
type Slice struct {
	Start float64
	Sweep float64
}

// PieSlices splits 360 degrees by value, starting at 12 o'clock. Negative
// values count as zero; a non-positive total yields no slices.
func PieSlices(values []float64) []Slice {
	total := 0.0
	for _, v := range values {
		total += math.Max(0, v)
	}
	if total <= 0 {
		return nil
	}
	slices := make([]Slice, len(values))
	start := -90.0
	for i, v := range values {
		sweep := math.Max(0, v) / total * 360
		slices[i] = Slice{Start: start, Sweep: sweep}
		start += sweep
	}
	return slices
}

// ChartValues extracts the data values of a chart.
func ChartValues(ch *element.Chart) []float64 {
	vals := make([]float64, len(ch.ChartData))
	for i, p := range ch.ChartData {
		vals[i] = p.Value
	}
	return vals
}

// DrawChart renders a chart into rect.
func DrawChart(c rendering.Canvas, rect rendering.Rect, ch *element.Chart, th *theme.ThemeData) {
	values := ChartValues(ch)
	if len(values) == 0 {
		return
	}
	tint := th.ResolveOr(ch.Tint, th.ColorScheme.Tint)
	track := rect
	if rect.Width() > 4*chartInset && rect.Height() > 4*chartInset {
		track = rect.Deflate(chartInset, chartInset, chartInset, chartInset)
	}

	switch ParseChartKind(ch.ChartType) {
	case ChartLine, ChartArea:
		pts := LinePoints(values, track)
		if ParseChartKind(ch.ChartType) == ChartArea {
			c.DrawPath(AreaPath(pts, track), rendering.FillPaint(tint.WithAlpha(areaAlpha)))
		}
		line := rendering.StrokePaint(tint, 2)
		line.StrokeCap = rendering.CapRound
		c.DrawPath(LinePath(pts), line)
	case ChartPie:
		side := math.Min(track.Width(), track.Height())
		oval := rendering.RectFromCenter(track.Center(), side, side)
		for i, s := range PieSlices(values) {
			if s.Sweep <= 0 {
				continue
			}
			col := tint
			if i < len(PiePalette) {
				col = PiePalette[i]
			}
			col = th.ResolveOr(ch.ChartData[i].Color, col)
			c.DrawArc(oval, s.Start, s.Sweep, true, rendering.FillPaint(col))
		}
	default:
		for i, r := range BarRects(values, track, barGap) {
			if r.Height() <= 0 {
				continue
			}
			col := th.ResolveOr(ch.ChartData[i].Color, tint)
			rr := rendering.RRectFromRectAndTopRadius(r, rendering.CircularRadius(r.Width()/4))
			c.DrawRRect(rr, rendering.FillPaint(col))
		}
	}
}
