package svg

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/paint"
)

// Render paints plan into a finished SVG document.
func Render(w io.Writer, plan *layout.Plan) error {
	c := NewCanvas(plan.Size)
	paint.Render(c, plan)
	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("svg: write: %w", err)
	}
	return nil
}

// Backend is a surface backend that keeps the most recent document.
type Backend struct {
	Transparent bool

	mu   sync.Mutex
	last []byte
}

// Draw paints plan and stores the document.
func (b *Backend) Draw(plan *layout.Plan) error {
	if plan == nil {
		return fmt.Errorf("svg: nil plan")
	}
	c := NewCanvas(plan.Size)
	(&paint.Painter{Canvas: c, Transparent: b.Transparent}).Paint(plan)
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return fmt.Errorf("svg: write: %w", err)
	}
	b.mu.Lock()
	b.last = buf.Bytes()
	b.mu.Unlock()
	return nil
}

// Document returns the last drawn document, or nil.
func (b *Backend) Document() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
