package layout

import (
	"bytes"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
)

type axis int

const (
	axisNone axis = iota
	axisHorizontal
	axisVertical
)

// Resolve lays out the config's root for ctx.Family. It is pure apart from
// image decoding through ctx.Images: the same config and context always
// produce the same plan. A nil config yields the "No configuration"
// placeholder and a config without any root yields "No layout".
func Resolve(cfg *element.Config, ctx Context) *Plan {
	ctx = ctx.withDefaults()
	p := &Plan{
		Family:   ctx.Family,
		Resolved: ctx.Family,
		Size:     ctx.Size,
		Theme:    ctx.Theme,
		Now:      ctx.Now,
	}
	r := &resolver{ctx: ctx, plan: p}
	if cfg == nil {
		return r.placeholder(MessageNoConfig)
	}
	root, fam, ok := cfg.Root(ctx.Family)
	if !ok {
		return r.placeholder(MessageNoLayout)
	}
	p.Resolved = fam

	n := r.build(root, Loose(ctx.Size), axisNone)
	surface := rendering.RectFromLTWH(0, 0, ctx.Size.Width, ctx.Size.Height)
	r.finalize(n, AlignmentCenter.WithinRect(surface, n.Frame.Size()))
	p.Root = n
	return p
}

// ResolveRaw parses a serialized config and resolves it. Empty input or
// JSON null means no configuration; anything that fails to parse renders
// the "Invalid config" placeholder in every family.
func ResolveRaw(raw []byte, ctx Context) *Plan {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Resolve(nil, ctx)
	}
	cfg, err := element.Parse(trimmed)
	if err != nil {
		log.Debug().Err(err).Str("family", ctx.Family.String()).Msg("config did not parse")
		ctx = ctx.withDefaults()
		r := &resolver{ctx: ctx, plan: &Plan{
			Family:   ctx.Family,
			Resolved: ctx.Family,
			Size:     ctx.Size,
			Theme:    ctx.Theme,
			Now:      ctx.Now,
		}}
		return r.placeholder(MessageInvalidConfig)
	}
	return Resolve(cfg, ctx)
}

type resolver struct {
	ctx  Context
	plan *Plan
}

func (r *resolver) placeholder(msg string) *Plan {
	th := r.ctx.Theme
	run := textRun(msg, rendering.TextStyle{
		Color:    th.ColorScheme.SecondaryLabel,
		FontSize: 13,
	}, r.ctx.Size.Width, 2, TextAlignCenter)
	surface := rendering.RectFromLTWH(0, 0, r.ctx.Size.Width, r.ctx.Size.Height)
	run.Rect = rectAt(AlignmentCenter.WithinRect(surface, run.Rect.Size()), run.Rect.Size())
	r.plan.Placeholder = msg
	r.plan.Root = &Node{
		Role:       RolePlaceholder,
		Frame:      surface,
		Content:    surface,
		Decoration: Decoration{Opacity: 1},
		Texts:      []TextRun{run},
	}
	return r.plan
}

// build lays out e at its own origin. Every rect of the returned node is
// relative to (0, 0); the parent positions it through pos and finalize
// converts everything to surface coordinates.
func (r *resolver) build(e element.Element, c Constraints, parent axis) *Node {
	n := &Node{Element: e}
	if sp, ok := e.(*element.Spacer); ok {
		ml := math.Max(0, element.Or(sp.MinLength, 0))
		var size rendering.Size
		switch parent {
		case axisHorizontal:
			size = rendering.Size{Width: ml}
		case axisVertical:
			size = rendering.Size{Height: ml}
		}
		n.Frame = rectAt(rendering.Offset{}, c.Constrain(size))
		n.Content = n.Frame
		return n
	}

	s := element.StyleOf(e)
	pad := s.Insets()
	outer := applyFrame(c, s)
	inner := outer.Deflate(pad)

	content := r.content(n, e, inner, parent)
	size := outer.Constrain(rendering.Size{
		Width:  content.Width + pad.Horizontal(),
		Height: content.Height + pad.Vertical(),
	})
	box := rendering.RectFromLTWH(pad.Leading, pad.Top,
		math.Max(0, size.Width-pad.Horizontal()),
		math.Max(0, size.Height-pad.Vertical()))
	n.shift(AlignmentCenter.WithinRect(box, content))
	n.Frame = rectAt(rendering.Offset{}, size)
	n.Content = box
	return n
}

func (r *resolver) content(n *Node, e element.Element, c Constraints, parent axis) rendering.Size {
	switch el := e.(type) {
	case *element.VStack:
		return r.stack(n, el.Kind(), el.Children, axisVertical, element.Or(el.Spacing, 0), el.Alignment, c)
	case *element.HStack:
		return r.stack(n, el.Kind(), el.Children, axisHorizontal, element.Or(el.Spacing, 0), el.Alignment, c)
	case *element.Link:
		n.Action, n.Payload, n.URL = el.Action, el.Payload, el.URL
		return r.stack(n, el.Kind(), el.Children, axisVertical, 0, "", c)
	case *element.ZStack:
		return r.overlay(n, el.Kind(), el.Children, ParseAlignment(el.Alignment, AlignmentCenter), c)
	case *element.Container:
		return r.overlay(n, el.Kind(), el.Children, ParseAlignment(el.ContentAlignment, AlignmentTopLeft), c)
	case *element.Grid:
		return r.grid(n, el, c)
	case *element.Divider:
		return r.divider(n, el, c, parent)
	default:
		return r.leaf(n, e, c)
	}
}

// capped applies the generic capacity limit before any child is laid out.
func (r *resolver) capped(kind element.Kind, children element.Elements) element.Elements {
	limit := r.ctx.MaxChildren
	if len(children) <= limit {
		return children
	}
	r.truncated(kind, len(children), limit)
	return children[:limit]
}

func (r *resolver) truncated(kind element.Kind, requested, rendered int) {
	r.plan.Truncations = append(r.plan.Truncations, Truncation{
		Kind:      kind,
		Requested: requested,
		Rendered:  rendered,
	})
	log.Debug().
		Str("family", r.ctx.Family.String()).
		Str("kind", kind.String()).
		Int("requested", requested).
		Int("rendered", rendered).
		Msg("capacity truncation")
}

// finalize moves n to origin, recursing into children, and resolves the
// box decorations against the final frames.
func (r *resolver) finalize(n *Node, origin rendering.Offset) {
	n.Frame = n.Frame.Translate(origin.X, origin.Y)
	n.Content = n.Content.Translate(origin.X, origin.Y)
	n.Visual.Rect = n.Visual.Rect.Translate(origin.X, origin.Y)
	for i := range n.Texts {
		n.Texts[i].Rect = n.Texts[i].Rect.Translate(origin.X, origin.Y)
	}
	n.Decoration = r.decorate(n)
	for _, c := range n.Children {
		r.finalize(c, rendering.Offset{X: origin.X + c.pos.X, Y: origin.Y + c.pos.Y})
	}
}

var (
	defaultBorderColor = rendering.Color(0xFF888888)
	defaultShadowColor = rendering.ColorBlack.ScaleAlpha(0.3)
)

func (r *resolver) decorate(n *Node) Decoration {
	d := Decoration{Opacity: 1}
	if n.Role != RoleElement || n.Element == nil {
		return d
	}
	s := n.Element.Base()
	if s == nil {
		return d
	}
	th := r.ctx.Theme
	d.Opacity = s.Alpha()
	d.CornerRadius = s.Radius()
	if fill, ok := th.ResolveBackground(s.Background, n.Frame); ok {
		d.Background = &fill
	}
	if s.Border != nil {
		d.BorderWidth = s.Border.LineWidth()
		d.BorderColor = th.ResolveOr(s.Border.Color, defaultBorderColor)
	}
	if s.Shadow != nil {
		radius, x, y := s.Shadow.Params()
		d.Shadow = &rendering.BoxShadow{
			Color:      th.ResolveOr(s.Shadow.Color, defaultShadowColor),
			Offset:     rendering.Offset{X: x, Y: y},
			BlurRadius: radius,
		}
	}
	d.Clip = parseClip(s.ClipShape, d.CornerRadius)
	return d
}

func parseClip(shape string, radius float64) ClipKind {
	switch strings.ToLower(shape) {
	case "":
		return ClipNone
	case "circle":
		return ClipCircle
	case "capsule":
		return ClipCapsule
	case "roundedrectangle", "roundedrect":
		return ClipRRect
	case "rectangle", "rect":
		if radius > 0 {
			return ClipRRect
		}
		return ClipRect
	default:
		return ClipNone
	}
}

// shift moves everything built inside n's content by off.
func (n *Node) shift(off rendering.Offset) {
	if off.X == 0 && off.Y == 0 {
		return
	}
	n.Visual.Rect = n.Visual.Rect.Translate(off.X, off.Y)
	for i := range n.Texts {
		n.Texts[i].Rect = n.Texts[i].Rect.Translate(off.X, off.Y)
	}
	for _, c := range n.Children {
		c.pos = rendering.Offset{X: c.pos.X + off.X, Y: c.pos.Y + off.Y}
	}
}

func rectAt(o rendering.Offset, s rendering.Size) rendering.Rect {
	return rendering.RectFromLTWH(o.X, o.Y, s.Width, s.Height)
}
