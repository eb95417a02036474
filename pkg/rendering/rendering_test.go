package rendering

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorComponents(t *testing.T) {
	c := RGBA(0x11, 0x22, 0x33, 0x44)
	r, g, b, a := c.Components()
	assert.Equal(t, []uint8{0x11, 0x22, 0x33, 0x44}, []uint8{r, g, b, a})
	assert.Equal(t, "#112233", c.Hex())
	assert.Equal(t, Color(0x80112233), c.WithAlpha(0x80))
	assert.Equal(t, uint8(0x22), c.ScaleAlpha(0.5).Alpha())
}

func TestParsePathData(t *testing.T) {
	p, err := ParsePathData("M10 10 L20 10 h5 v5 l-5,5 Z")
	require.NoError(t, err)
	require.Len(t, p.Commands, 6)
	assert.Equal(t, PathOpMoveTo, p.Commands[0].Op)
	assert.Equal(t, []float64{25, 10}, p.Commands[2].Args)
	assert.Equal(t, []float64{25, 15}, p.Commands[3].Args)
	assert.Equal(t, []float64{20, 20}, p.Commands[4].Args)
	assert.Equal(t, PathOpClose, p.Commands[5].Op)
}

func TestParsePathDataImplicitLineTo(t *testing.T) {
	p, err := ParsePathData("m 1 1 2 2 3 3")
	require.NoError(t, err)
	require.Len(t, p.Commands, 3)
	assert.Equal(t, []float64{3, 3}, p.Commands[1].Args)
	assert.Equal(t, []float64{6, 6}, p.Commands[2].Args)
}

func TestParsePathDataErrors(t *testing.T) {
	for _, d := range []string{"10 10", "M 1", "M 0 0 A 1 1 0 0 0 2 2", "M 0 0 L x"} {
		_, err := ParsePathData(d)
		assert.Error(t, err, d)
	}
}

func TestFlattenClosesSubpaths(t *testing.T) {
	p := NewPath()
	p.AddRect(RectFromLTWH(0, 0, 10, 10))
	p.MoveTo(20, 20)
	p.LineTo(30, 30)
	lines := p.Flatten(0.5)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Closed)
	assert.Len(t, lines[0].Points, 4)
	assert.False(t, lines[1].Closed)
}

func TestAddArcEndsOnCircle(t *testing.T) {
	p := NewPath()
	p.AddArc(RectFromCenter(Offset{50, 50}, 20, 20), -90, 90, false)
	lines := p.Flatten(0.1)
	require.Len(t, lines, 1)
	pts := lines[0].Points
	first, last := pts[0], pts[len(pts)-1]
	assert.InDelta(t, 50, first.X, 1e-9)
	assert.InDelta(t, 40, first.Y, 1e-9)
	assert.InDelta(t, 60, last.X, 1e-9)
	assert.InDelta(t, 50, last.Y, 1e-9)
	for _, pt := range pts {
		assert.InDelta(t, 10, math.Hypot(pt.X-50, pt.Y-50), 0.05)
	}
}

func TestGradientColorAt(t *testing.T) {
	g := NewLinearGradient(Offset{0, 0}, Offset{0, 100}, EvenStops([]Color{ColorBlack, ColorWhite}))
	require.True(t, g.IsValid())
	assert.Equal(t, ColorBlack, g.ColorAtPoint(Offset{5, -10}))
	assert.Equal(t, ColorWhite, g.ColorAtPoint(Offset{5, 200}))
	r, _, _, a := g.ColorAtPoint(Offset{0, 50}).Components()
	assert.InDelta(t, 128, int(r), 1)
	assert.Equal(t, uint8(0xFF), a)
}

func TestEvenStopsSingleColor(t *testing.T) {
	stops := EvenStops([]Color{ColorRed})
	require.Len(t, stops, 2)
	assert.Equal(t, 1.0, stops[1].Position)
}

func TestLayoutTextLineLimit(t *testing.T) {
	style := TextStyle{FontSize: 13}
	layout := LayoutText("one two three four five six", style, 50, 2)
	require.Len(t, layout.Lines, 2)
	assert.Contains(t, layout.Lines[1].Text, "…")
	assert.LessOrEqual(t, layout.Size.Width, 50.0)
}

func TestMeasureTextScalesWithSize(t *testing.T) {
	small := MeasureText("abcd", TextStyle{FontSize: 13})
	large := MeasureText("abcd", TextStyle{FontSize: 26})
	assert.InDelta(t, 28, small, 1e-9)
	assert.InDelta(t, small*2, large, 1e-9)
}

func TestRecorderReplays(t *testing.T) {
	var rec PictureRecorder
	c := rec.BeginRecording(Size{Width: 10, Height: 10})
	c.Save()
	c.DrawArc(RectFromLTWH(0, 0, 10, 10), -90, 180, true, FillPaint(ColorRed))
	c.DrawText("hi", Offset{1, 2}, TextStyle{})
	c.Restore()
	list := rec.EndRecording()
	require.Len(t, list.Ops(), 4)
	arc, ok := list.Ops()[1].(OpArc)
	require.True(t, ok)
	assert.Equal(t, 180.0, arc.SweepDeg)

	var replay PictureRecorder
	list.Paint(replay.BeginRecording(list.Size()))
	assert.Len(t, replay.EndRecording().Ops(), 4)
}
