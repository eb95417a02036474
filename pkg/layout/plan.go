package layout

import (
	"strings"
	"time"

	"github.com/go-drift/widgetkit/pkg/draw"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

// Role says why a node exists in the plan.
type Role int

const (
	// RoleElement is a node produced by an element of the tree.
	RoleElement Role = iota
	// RoleListRow is one data row of a list element.
	RoleListRow
	// RoleSummary is the "... +N more" row replacing truncated list rows.
	RoleSummary
	// RolePlaceholder is the single leaf shown when there is nothing to render.
	RolePlaceholder
)

func (r Role) String() string {
	switch r {
	case RoleListRow:
		return "listRow"
	case RoleSummary:
		return "summary"
	case RolePlaceholder:
		return "placeholder"
	default:
		return "element"
	}
}

// Placeholder messages.
const (
	MessageNoConfig      = "No configuration"
	MessageInvalidConfig = "Invalid config"
	MessageNoLayout      = "No layout"
)

// TextAlign aligns the lines of a text run within its rect.
type TextAlign int

const (
	TextAlignLeading TextAlign = iota
	TextAlignCenter
	TextAlignTrailing
)

// ParseTextAlign maps leading/center/trailing (and left/right).
func ParseTextAlign(s string) TextAlign {
	switch strings.ToLower(s) {
	case "center", "centre":
		return TextAlignCenter
	case "trailing", "right", "end":
		return TextAlignTrailing
	default:
		return TextAlignLeading
	}
}

// TextRun is measured text placed in a rect.
type TextRun struct {
	Layout *rendering.TextLayout
	Rect   rendering.Rect
	Align  TextAlign
}

// VisualKind selects how a leaf's body is drawn.
type VisualKind int

const (
	VisualNone VisualKind = iota
	VisualFill
	VisualMeter
	VisualDivider
	VisualChart
	VisualCanvas
	VisualShape
	VisualImage
)

// Visual is the non-text body of a leaf.
type Visual struct {
	Kind   VisualKind
	Rect   rendering.Rect
	Color  rendering.Color
	Radius float64
	Image  *draw.ResolvedImage
}

// ClipKind is the clip shape applied to a node's box.
type ClipKind int

const (
	ClipNone ClipKind = iota
	ClipRect
	ClipRRect
	ClipCircle
	ClipCapsule
)

// Decoration holds the resolved box styling of a node.
type Decoration struct {
	Background   *theme.Fill
	CornerRadius float64
	Opacity      float64
	BorderColor  rendering.Color
	BorderWidth  float64
	Shadow       *rendering.BoxShadow
	Clip         ClipKind
}

// IsZero reports whether the decoration changes nothing.
func (d Decoration) IsZero() bool {
	return d.Background == nil && d.BorderWidth == 0 && d.Shadow == nil &&
		d.Clip == ClipNone && d.Opacity >= 1
}

// Node is one resolved box of the plan. All rects are absolute surface
// coordinates.
type Node struct {
	Element element.Element
	Role    Role

	// Frame is the node's box; Content is Frame minus padding.
	Frame   rendering.Rect
	Content rendering.Rect

	Decoration Decoration
	Texts      []TextRun
	Visual     Visual

	// Checked is set on toggles and checkable list rows.
	Checked *bool
	Action  string
	Payload string
	URL     string

	Children []*Node

	// pos is the offset within the parent while building.
	pos rendering.Offset
}

// Interactive reports whether tapping the node does anything.
func (n *Node) Interactive() bool { return n.Action != "" || n.URL != "" }

// Truncation records children dropped by a capacity limit.
type Truncation struct {
	Kind      element.Kind
	Requested int
	Rendered  int
}

// Plan is the resolved render plan for one surface pass. Backends only
// consume it; it holds no references back into any host.
type Plan struct {
	Family   element.Family
	Resolved element.Family
	Size     rendering.Size
	Theme    *theme.ThemeData
	Now      time.Time

	Root *Node

	// Placeholder is non-empty when Root is a placeholder leaf.
	Placeholder string
	Truncations []Truncation
}

// Walk visits nodes depth-first in paint order until fn returns false.
func (p *Plan) Walk(fn func(*Node) bool) {
	walkNode(p.Root, fn)
}

func walkNode(n *Node, fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !walkNode(c, fn) {
			return false
		}
	}
	return true
}

// HitTest returns the deepest interactive node containing pt, or nil.
func (p *Plan) HitTest(pt rendering.Offset) *Node {
	return hitTest(p.Root, pt)
}

func hitTest(n *Node, pt rendering.Offset) *Node {
	if n == nil || !contains(n.Frame, pt) {
		return nil
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		if hit := hitTest(n.Children[i], pt); hit != nil {
			return hit
		}
	}
	if n.Interactive() {
		return n
	}
	return nil
}

func contains(r rendering.Rect, pt rendering.Offset) bool {
	return pt.X >= r.Left && pt.X < r.Right && pt.Y >= r.Top && pt.Y < r.Bottom
}
