package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"

	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/paint"
)

// Render paints plan into a new image at the given device scale.
func Render(plan *layout.Plan, scale float64) *image.RGBA {
	c := NewCanvas(plan.Size, scale)
	paint.Render(c, plan)
	return c.Image()
}

// EncodePNG renders plan and writes it as PNG.
func EncodePNG(w io.Writer, plan *layout.Plan, scale float64) error {
	if err := png.Encode(w, Render(plan, scale)); err != nil {
		return fmt.Errorf("raster: encode: %w", err)
	}
	return nil
}

// Backend is a surface backend that keeps the most recent frame.
type Backend struct {
	// Scale is the device pixel ratio. Zero means 1.
	Scale float64
	// Transparent leaves the background unpainted.
	Transparent bool

	mu   sync.Mutex
	last *image.RGBA
}

// Draw paints plan and stores the frame.
func (b *Backend) Draw(plan *layout.Plan) error {
	if plan == nil {
		return fmt.Errorf("raster: nil plan")
	}
	c := NewCanvas(plan.Size, b.Scale)
	(&paint.Painter{Canvas: c, Transparent: b.Transparent}).Paint(plan)
	b.mu.Lock()
	b.last = c.Image()
	b.mu.Unlock()
	return nil
}

// Frame returns the last drawn frame, or nil.
func (b *Backend) Frame() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

// WritePNG writes the last frame as PNG.
func (b *Backend) WritePNG(w io.Writer) error {
	img := b.Frame()
	if img == nil {
		return fmt.Errorf("raster: no frame drawn yet")
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("raster: encode: %w", err)
	}
	return nil
}
