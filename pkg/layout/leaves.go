package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-drift/widgetkit/pkg/draw"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

// Leaf defaults, in points.
const (
	defaultFontSize     = 14
	defaultListFontSize = 13
	defaultListSpacing  = 4
	defaultImageSize    = 24
	captionGap          = 4
	toggleIconSize      = 18
	toggleSpacing       = 6
	listIconSize        = 12
	listRowSpacing      = 6
	buttonPadH          = 12
	buttonPadV          = 6
	buttonRadius        = 8
	labelIconScale      = 1.1
	labelSpacing        = 4
)

// textRun measures s. Empty text measures zero so it never takes up a
// line or a stack slot.
func textRun(s string, style rendering.TextStyle, maxWidth float64, maxLines int, align TextAlign) TextRun {
	if s == "" {
		return TextRun{Align: align}
	}
	l := rendering.LayoutText(s, style, math.Max(maxWidth, 1), maxLines)
	return TextRun{
		Layout: l,
		Rect:   rendering.RectFromLTWH(0, 0, l.Size.Width, l.Size.Height),
		Align:  align,
	}
}

func (t TextRun) size() rendering.Size { return t.Rect.Size() }

// row places runs left to right, vertically centered, skipping empty ones.
func (n *Node) row(spacing float64, runs ...TextRun) rendering.Size {
	var w, h float64
	count := 0
	for _, run := range runs {
		if run.Layout == nil {
			continue
		}
		if count > 0 {
			w += spacing
		}
		count++
		w += run.Rect.Width()
		h = math.Max(h, run.Rect.Height())
	}
	x := 0.0
	for _, run := range runs {
		if run.Layout == nil {
			continue
		}
		s := run.size()
		run.Rect = rectAt(rendering.Offset{X: x, Y: (h - s.Height) / 2}, s)
		n.Texts = append(n.Texts, run)
		x += s.Width + spacing
	}
	return rendering.Size{Width: w, Height: h}
}

func (r *resolver) leaf(n *Node, e element.Element, c Constraints) rendering.Size {
	th := r.ctx.Theme
	cs := th.ColorScheme
	switch el := e.(type) {
	case *element.Text:
		st := rendering.TextStyle{
			Color:      th.ResolveOr(el.Color, cs.Label),
			FontSize:   th.TextTheme.FontSize(el.FontSize, el.TextStyle, defaultFontSize),
			FontWeight: theme.ParseFontWeight(el.FontWeight),
			Monospace:  strings.EqualFold(el.FontDesign, "monospaced"),
		}
		run := textRun(el.Content, st, c.MaxWidth, element.Or(el.LineLimit, 0), ParseTextAlign(el.Alignment))
		return n.row(0, run)

	case *element.Image:
		return r.image(n, el, c)

	case *element.Progress:
		return r.meter(n, e, el.Label, "", c)

	case *element.Gauge:
		return r.meter(n, e, el.Label, el.CurrentValueLabel, c)

	case *element.Button:
		n.Action, n.Payload, n.URL = el.Action, el.Payload, el.URL
		st := rendering.TextStyle{
			Color:      th.ResolveOr(el.Color, rendering.ColorWhite),
			FontSize:   element.Or(el.FontSize, defaultFontSize),
			FontWeight: rendering.FontWeightMedium,
		}
		align := TextAlignCenter
		if el.TextAlignment != "" {
			align = ParseTextAlign(el.TextAlignment)
		}
		run := textRun(el.Label, st, c.MaxWidth-2*buttonPadH, 1, align)
		size := c.Constrain(rendering.Size{
			Width:  run.Rect.Width() + 2*buttonPadH,
			Height: run.Rect.Height() + 2*buttonPadV,
		})
		box := rectAt(rendering.Offset{}, size)
		n.Visual = Visual{
			Kind:   VisualFill,
			Rect:   box,
			Color:  th.ResolveOr(el.BackgroundColor, cs.Accent),
			Radius: element.Or(el.CornerRadius, buttonRadius),
		}
		if run.Layout != nil {
			inner := box.Deflate(buttonPadV, buttonPadH, buttonPadV, buttonPadH)
			run.Rect = rectAt(alignIn(inner, run.size(), align), run.size())
			n.Texts = append(n.Texts, run)
		}
		return size

	case *element.Toggle:
		n.Action, n.Payload = el.Action, el.Payload
		on := el.IsOn
		n.Checked = &on
		icon, iconColor := draw.Glyph("circle"), cs.Inactive
		if on {
			icon, iconColor = draw.Glyph("checkmark.circle.fill"), th.ResolveOr(el.Tint, cs.Green)
		}
		iconRun := textRun(icon, rendering.TextStyle{Color: iconColor, FontSize: toggleIconSize}, 0, 1, TextAlignCenter)
		label := textRun(el.Label, rendering.TextStyle{Color: cs.Label, FontSize: defaultFontSize},
			c.MaxWidth-iconRun.Rect.Width()-toggleSpacing, 1, TextAlignLeading)
		return n.row(toggleSpacing, iconRun, label)

	case *element.Date:
		st := rendering.TextStyle{
			Color:    th.ResolveOr(el.Color, cs.Label),
			FontSize: element.Or(el.FontSize, defaultFontSize),
		}
		return n.row(0, textRun(draw.FormatDate(el.Date, el.DateStyle, r.ctx.Now), st, c.MaxWidth, 1, TextAlignLeading))

	case *element.Timer:
		st := rendering.TextStyle{
			Color:      th.ResolveOr(el.Color, cs.Label),
			FontSize:   element.Or(el.FontSize, defaultFontSize),
			FontWeight: theme.ParseFontWeight(el.FontWeight),
			Monospace:  true,
		}
		return n.row(0, textRun(draw.FormatTimer(el.TargetDate, el.Counting, r.ctx.Now), st, c.MaxWidth, 1, TextAlignLeading))

	case *element.Chart:
		size := c.Constrain(draw.DefaultChartSize)
		n.Visual = Visual{Kind: VisualChart, Rect: rectAt(rendering.Offset{}, size)}
		return size

	case *element.List:
		return r.list(n, el, c)

	case *element.Shape:
		side := element.Or(el.Size, draw.DefaultShapeSize)
		want := rendering.Size{Width: side, Height: side}
		if strings.EqualFold(el.ShapeType, "capsule") {
			want.Width = c.MaxWidth
		}
		size := c.Constrain(want)
		n.Visual = Visual{Kind: VisualShape, Rect: rectAt(rendering.Offset{}, size)}
		return size

	case *element.Label:
		n.Action, n.Payload = el.Action, el.Payload
		fs := element.Or(el.FontSize, defaultFontSize)
		color := th.ResolveOr(el.Color, cs.Label)
		var icon TextRun
		if el.SystemName != "" {
			icon = textRun(draw.Glyph(el.SystemName, el.Text), rendering.TextStyle{
				Color:    th.ResolveOr(el.IconColor, color),
				FontSize: fs * labelIconScale,
			}, 0, 1, TextAlignCenter)
		}
		sp := element.Or(el.Spacing, labelSpacing)
		text := textRun(el.Text, rendering.TextStyle{
			Color:      color,
			FontSize:   fs,
			FontWeight: theme.ParseFontWeight(el.FontWeight),
		}, c.MaxWidth-icon.Rect.Width()-sp, 1, TextAlignLeading)
		return n.row(sp, icon, text)

	case *element.Canvas:
		fitted := draw.FitCanvas(draw.LogicalSize(el), c.Biggest(), el.FlexWeight() > 0)
		size := c.Constrain(fitted)
		box := rectAt(rendering.Offset{}, size)
		n.Visual = Visual{Kind: VisualCanvas, Rect: rectAt(AlignmentCenter.WithinRect(box, fitted), fitted)}
		return size

	case *element.Unknown:
		st := rendering.TextStyle{Color: cs.Label, FontSize: defaultFontSize}
		return n.row(0, textRun(el.TypeName, st, c.MaxWidth, 1, TextAlignLeading))

	default:
		return rendering.Size{}
	}
}

func alignIn(box rendering.Rect, s rendering.Size, align TextAlign) rendering.Offset {
	switch align {
	case TextAlignLeading:
		return AlignmentCenterLeft.WithinRect(box, s)
	case TextAlignTrailing:
		return AlignmentCenterRight.WithinRect(box, s)
	default:
		return AlignmentCenter.WithinRect(box, s)
	}
}

// image resolves the image chain now so the plan already knows whether a
// bitmap or a glyph is drawn.
func (r *resolver) image(n *Node, el *element.Image, c Constraints) rendering.Size {
	side := element.Or(el.Size, defaultImageSize)
	size := c.Constrain(rendering.Size{Width: side, Height: side})
	box := rectAt(rendering.Offset{}, size)
	res := r.ctx.Images.Resolve(el)
	n.Visual = Visual{Kind: VisualImage, Rect: box, Image: &res}
	if res.Glyph != "" {
		glyph := textRun(res.Glyph, rendering.TextStyle{
			Color:    r.ctx.Theme.ResolveOr(el.Color, r.ctx.Theme.ColorScheme.Label),
			FontSize: math.Min(size.Width, size.Height) * 0.75,
		}, 0, 1, TextAlignCenter)
		glyph.Rect = rectAt(AlignmentCenter.WithinRect(box, glyph.size()), glyph.size())
		n.Texts = append(n.Texts, glyph)
	}
	return size
}

// meter lays out a progress or gauge: an optional caption line above a
// linear bar or a ring. A gauge's current value sits inside the ring, or
// trailing on the caption line of a linear gauge.
func (r *resolver) meter(n *Node, e element.Element, label, value string, c Constraints) rendering.Size {
	th := r.ctx.Theme
	circular := draw.IsCircular(e)
	var body rendering.Size
	switch {
	case circular:
		side := float64(draw.DefaultRingSize)
		if _, ok := e.(*element.Progress); ok {
			side = draw.DefaultProgressRingSize
		}
		side = math.Min(side, c.MaxWidth)
		body = rendering.Size{Width: side, Height: side}
	default:
		body = rendering.Size{Width: c.MaxWidth, Height: draw.DefaultBarThickness}
	}

	caption := rendering.TextStyle{Color: th.ColorScheme.SecondaryLabel, FontSize: th.TextTheme.Caption2}
	w, y := body.Width, 0.0
	title := textRun(label, caption, c.MaxWidth, 1, TextAlignLeading)
	var trailing TextRun
	if !circular {
		trailing = textRun(value, caption, c.MaxWidth, 1, TextAlignTrailing)
	}
	lineH := math.Max(title.Rect.Height(), trailing.Rect.Height())
	if lineH > 0 {
		w = math.Max(w, title.Rect.Width())
		if title.Layout != nil {
			n.Texts = append(n.Texts, title)
		}
		if trailing.Layout != nil {
			trailing.Rect = rectAt(rendering.Offset{X: w - trailing.Rect.Width()}, trailing.size())
			n.Texts = append(n.Texts, trailing)
		}
		y = lineH + captionGap
	}

	bodyRect := rectAt(rendering.Offset{X: (w - body.Width) / 2, Y: y}, body)
	n.Visual = Visual{Kind: VisualMeter, Rect: bodyRect}
	if circular && value != "" {
		inner := textRun(value, rendering.TextStyle{
			Color:      th.ColorScheme.Label,
			FontSize:   math.Max(body.Width*0.22, 8),
			FontWeight: rendering.FontWeightSemibold,
		}, body.Width-2*draw.RingStroke(body.Width), 1, TextAlignCenter)
		if inner.Layout != nil {
			inner.Rect = rectAt(AlignmentCenter.WithinRect(bodyRect, inner.size()), inner.size())
			n.Texts = append(n.Texts, inner)
		}
	}
	return c.Constrain(rendering.Size{Width: w, Height: y + body.Height})
}

// list caps rows per family. When items overflow, the last visible slot
// becomes a "... +N more" summary row.
func (r *resolver) list(n *Node, el *element.List, c Constraints) rendering.Size {
	th := r.ctx.Theme
	cs := th.ColorScheme
	limit := ListRowCap(r.ctx.Family, r.ctx.MaxChildren)
	items, more := el.Items, 0
	if len(items) > limit {
		kept := max(limit-1, 0)
		items, more = items[:kept], len(items)-kept
		r.truncated(el.Kind(), len(el.Items), limit)
	}

	fs := element.Or(el.FontSize, defaultListFontSize)
	textStyle := rendering.TextStyle{Color: th.ResolveOr(el.Color, cs.Label), FontSize: fs}
	spacing := element.Or(el.Spacing, defaultListSpacing)
	var w, y float64
	add := func(row *Node, size rendering.Size) {
		if len(n.Children) > 0 {
			y += spacing
		}
		row.Frame = rectAt(rendering.Offset{}, size)
		row.Content = row.Frame
		row.pos = rendering.Offset{Y: y}
		n.Children = append(n.Children, row)
		y += size.Height
		w = math.Max(w, size.Width)
	}

	for i := range items {
		item := items[i]
		row := &Node{Element: el, Role: RoleListRow, Action: item.Action, Payload: item.Payload}
		var icon TextRun
		if checked, ok := item.State(); ok {
			row.Checked = &checked
			glyph, color := draw.Glyph("circle"), cs.Inactive
			if checked {
				glyph, color = draw.Glyph("checkmark.circle.fill"), cs.Green
			}
			icon = textRun(glyph, rendering.TextStyle{Color: color, FontSize: listIconSize}, 0, 1, TextAlignCenter)
		}
		text := textRun(item.Text, textStyle, c.MaxWidth-icon.Rect.Width()-listRowSpacing, 1, TextAlignLeading)
		add(row, row.row(listRowSpacing, icon, text))
	}
	if more > 0 {
		row := &Node{Element: el, Role: RoleSummary}
		st := rendering.TextStyle{Color: cs.SecondaryLabel, FontSize: fs}
		add(row, row.row(0, textRun(SummaryText(more), st, c.MaxWidth, 1, TextAlignLeading)))
	}
	return c.Constrain(rendering.Size{Width: w, Height: y})
}

// SummaryText is the label of the row replacing n dropped list items.
func SummaryText(n int) string {
	return "... +" + strconv.Itoa(n) + " more"
}
