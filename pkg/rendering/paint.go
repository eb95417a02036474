package rendering

import "fmt"

// PaintStyle describes how shapes are filled or stroked.
type PaintStyle int

const (
	// PaintStyleFill fills the shape interior.
	PaintStyleFill PaintStyle = iota

	// PaintStyleStroke draws only the outline.
	PaintStyleStroke

	// PaintStyleFillAndStroke fills and then strokes the outline.
	PaintStyleFillAndStroke
)

// String returns a human-readable representation of the paint style.
func (s PaintStyle) String() string {
	switch s {
	case PaintStyleFill:
		return "fill"
	case PaintStyleStroke:
		return "stroke"
	case PaintStyleFillAndStroke:
		return "fill_and_stroke"
	default:
		return fmt.Sprintf("PaintStyle(%d)", int(s))
	}
}

// StrokeCap describes how stroke endpoints are drawn.
type StrokeCap int

const (
	CapButt   StrokeCap = iota // Flat edge at endpoint (default)
	CapRound                   // Semicircle at endpoint
	CapSquare                  // Square extending past endpoint
)

// String returns a human-readable representation of the stroke cap.
func (c StrokeCap) String() string {
	switch c {
	case CapButt:
		return "butt"
	case CapRound:
		return "round"
	case CapSquare:
		return "square"
	default:
		return fmt.Sprintf("StrokeCap(%d)", int(c))
	}
}

// ParseStrokeCap maps "round" and "square" to caps; anything else is butt.
func ParseStrokeCap(s string) StrokeCap {
	switch s {
	case "round":
		return CapRound
	case "square":
		return CapSquare
	default:
		return CapButt
	}
}

// Paint describes how to draw a shape on the canvas.
type Paint struct {
	Color       Color
	Gradient    *Gradient  // If set, overrides Color for the fill
	Style       PaintStyle // Fill, stroke, or both
	StrokeWidth float64    // Width of stroke in pixels
	StrokeCap   StrokeCap
}

// DefaultPaint returns a basic opaque white fill paint.
func DefaultPaint() Paint {
	return Paint{
		Color:       ColorWhite,
		Style:       PaintStyleFill,
		StrokeWidth: 1,
	}
}

// FillPaint returns a fill paint of the given color.
func FillPaint(c Color) Paint {
	return Paint{Color: c, Style: PaintStyleFill, StrokeWidth: 1}
}

// StrokePaint returns a stroke paint of the given color and width.
func StrokePaint(c Color, width float64) Paint {
	return Paint{Color: c, Style: PaintStyleStroke, StrokeWidth: width}
}
