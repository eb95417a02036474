package raster

import (
	"image"

	"github.com/go-drift/widgetkit/pkg/rendering"
)

// transform maps user coordinates to device pixels: scale, then translate.
type transform struct {
	sx, sy float64
	tx, ty float64
}

func (t transform) point(p rendering.Offset) rendering.Offset {
	return rendering.Offset{X: p.X*t.sx + t.tx, Y: p.Y*t.sy + t.ty}
}

// inverse maps a device pixel center back to user space.
func (t transform) inverse(x, y int) rendering.Offset {
	return rendering.Offset{
		X: (float64(x) + 0.5 - t.tx) / t.sx,
		Y: (float64(y) + 0.5 - t.ty) / t.sy,
	}
}

// length scales a user-space length such as a stroke width.
func (t transform) length(v float64) float64 {
	return v * (abs(t.sx) + abs(t.sy)) / 2
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// state is the part of the canvas saved by Save and restored by Restore.
// Clip masks are never mutated once installed, so saved states share them.
type state struct {
	xf   transform
	clip *image.Alpha
}

type savedState struct {
	state
	// layer is set when the save pushed an offscreen layer.
	layer bool
}

type layer struct {
	img   *image.RGBA
	alpha float64
}

// tracker maintains transform, clip and layer state across Save/Restore.
type tracker struct {
	cur    state
	stack  []savedState
	layers []layer
}

func (t *tracker) save(pushLayer bool) {
	t.stack = append(t.stack, savedState{state: t.cur, layer: pushLayer})
}

// restore pops one state. It returns the layer to composite when the popped
// save pushed one.
func (t *tracker) restore() (layer, bool) {
	if len(t.stack) == 0 {
		return layer{}, false
	}
	top := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.cur = top.state
	if !top.layer || len(t.layers) == 0 {
		return layer{}, false
	}
	l := t.layers[len(t.layers)-1]
	t.layers = t.layers[:len(t.layers)-1]
	return l, true
}

func (t *tracker) translate(dx, dy float64) {
	t.cur.xf.tx += dx * t.cur.xf.sx
	t.cur.xf.ty += dy * t.cur.xf.sy
}

func (t *tracker) scale(sx, sy float64) {
	t.cur.xf.sx *= sx
	t.cur.xf.sy *= sy
}

// intersectClip installs m multiplied by the current clip.
func (t *tracker) intersectClip(m *image.Alpha) {
	if t.cur.clip != nil {
		multiply(m, t.cur.clip)
	}
	t.cur.clip = m
}

// multiply scales every pixel of m by the matching pixel of by.
func multiply(m, by *image.Alpha) {
	r := m.Rect
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := m.Pix[m.PixOffset(r.Min.X, y):]
		for x := r.Min.X; x < r.Max.X; x++ {
			i := x - r.Min.X
			if row[i] == 0 {
				continue
			}
			c := by.AlphaAt(x, y).A
			row[i] = uint8((uint16(row[i])*uint16(c) + 127) / 255)
		}
	}
}
