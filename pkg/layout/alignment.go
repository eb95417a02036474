package layout

import (
	"strings"

	"github.com/go-drift/widgetkit/pkg/rendering"
)

// Alignment is a point within a rectangle, with -1 at the leading/top edge
// and 1 at the trailing/bottom edge.
type Alignment struct {
	X float64
	Y float64
}

var (
	AlignmentTopLeft      = Alignment{-1, -1}
	AlignmentTopCenter    = Alignment{0, -1}
	AlignmentTopRight     = Alignment{1, -1}
	AlignmentCenterLeft   = Alignment{-1, 0}
	AlignmentCenter       = Alignment{0, 0}
	AlignmentCenterRight  = Alignment{1, 0}
	AlignmentBottomLeft   = Alignment{-1, 1}
	AlignmentBottomCenter = Alignment{0, 1}
	AlignmentBottomRight  = Alignment{1, 1}
)

// WithinRect returns the offset that places a child of the given size at
// this alignment inside rect.
func (a Alignment) WithinRect(rect rendering.Rect, child rendering.Size) rendering.Offset {
	return rendering.Offset{
		X: rect.Left + (rect.Width()-child.Width)*(a.X+1)/2,
		Y: rect.Top + (rect.Height()-child.Height)*(a.Y+1)/2,
	}
}

var namedAlignments = map[string]Alignment{
	"center":         AlignmentCenter,
	"top":            AlignmentTopCenter,
	"bottom":         AlignmentBottomCenter,
	"leading":        AlignmentCenterLeft,
	"trailing":       AlignmentCenterRight,
	"topleading":     AlignmentTopLeft,
	"toptrailing":    AlignmentTopRight,
	"bottomleading":  AlignmentBottomLeft,
	"bottomtrailing": AlignmentBottomRight,
}

// ParseAlignment maps a 9-point alignment name. Separators and case are
// ignored ("top-leading", "topLeading"); unrecognized names yield def.
func ParseAlignment(s string, def Alignment) Alignment {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(s))
	if a, ok := namedAlignments[key]; ok {
		return a
	}
	return def
}

// crossAlign maps a stack's cross-axis alignment to -1, 0 or 1. Both the
// horizontal and vertical vocabularies are accepted on either stack.
func crossAlign(s string) float64 {
	switch strings.ToLower(s) {
	case "leading", "top", "start":
		return -1
	case "trailing", "bottom", "end":
		return 1
	default:
		return 0
	}
}
