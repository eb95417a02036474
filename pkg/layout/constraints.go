package layout

import (
	"math"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
)

// Constraints bound the size a node may choose.
type Constraints struct {
	MinWidth  float64
	MaxWidth  float64
	MinHeight float64
	MaxHeight float64
}

// Tight returns constraints that force exactly size.
func Tight(size rendering.Size) Constraints {
	return Constraints{
		MinWidth:  size.Width,
		MaxWidth:  size.Width,
		MinHeight: size.Height,
		MaxHeight: size.Height,
	}
}

// Loose returns constraints allowing any size up to size.
func Loose(size rendering.Size) Constraints {
	return Constraints{MaxWidth: size.Width, MaxHeight: size.Height}
}

// Constrain clamps size into the constraints.
func (c Constraints) Constrain(size rendering.Size) rendering.Size {
	return rendering.Size{
		Width:  clamp(size.Width, c.MinWidth, c.MaxWidth),
		Height: clamp(size.Height, c.MinHeight, c.MaxHeight),
	}
}

// Loosen drops the minimums.
func (c Constraints) Loosen() Constraints {
	return Constraints{MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// Deflate shrinks the constraints by padding, never below zero.
func (c Constraints) Deflate(p element.Padding) Constraints {
	h, v := p.Horizontal(), p.Vertical()
	return Constraints{
		MinWidth:  math.Max(0, c.MinWidth-h),
		MaxWidth:  math.Max(0, c.MaxWidth-h),
		MinHeight: math.Max(0, c.MinHeight-v),
		MaxHeight: math.Max(0, c.MaxHeight-v),
	}
}

// Biggest returns the largest size the constraints allow.
func (c Constraints) Biggest() rendering.Size {
	return rendering.Size{Width: c.MaxWidth, Height: c.MaxHeight}
}

// HasTightWidth reports whether the width is fixed.
func (c Constraints) HasTightWidth() bool { return c.MinWidth >= c.MaxWidth }

// HasTightHeight reports whether the height is fixed.
func (c Constraints) HasTightHeight() bool { return c.MinHeight >= c.MaxHeight }

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// applyFrame narrows the incoming constraints by a style's frame. A fixed
// width or height becomes tight (clamped to what the parent allows); an
// infinite or finite max dimension makes that axis greedy; flex > 0 makes
// the width greedy.
func applyFrame(c Constraints, s *element.Style) Constraints {
	var f element.Frame
	if s.Frame != nil {
		f = *s.Frame
	}
	switch {
	case f.Width != nil:
		w := clamp(*f.Width, c.MinWidth, c.MaxWidth)
		c.MinWidth, c.MaxWidth = w, w
	case f.MaxWidth != nil:
		w := clamp(f.MaxWidth.Resolve(c.MaxWidth), c.MinWidth, c.MaxWidth)
		c.MinWidth, c.MaxWidth = w, w
	case s.FlexWeight() > 0:
		c.MinWidth = c.MaxWidth
	}
	switch {
	case f.Height != nil:
		h := clamp(*f.Height, c.MinHeight, c.MaxHeight)
		c.MinHeight, c.MaxHeight = h, h
	case f.MaxHeight != nil:
		h := clamp(f.MaxHeight.Resolve(c.MaxHeight), c.MinHeight, c.MaxHeight)
		c.MinHeight, c.MaxHeight = h, h
	}
	return c
}
