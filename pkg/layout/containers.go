package layout

import (
	"math"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
)

func mainOf(ax axis, s rendering.Size) float64 {
	if ax == axisHorizontal {
		return s.Width
	}
	return s.Height
}

func crossOf(ax axis, s rendering.Size) float64 {
	if ax == axisHorizontal {
		return s.Height
	}
	return s.Width
}

func makeSize(ax axis, main, cross float64) rendering.Size {
	if ax == axisHorizontal {
		return rendering.Size{Width: main, Height: cross}
	}
	return rendering.Size{Width: cross, Height: main}
}

func makeOffset(ax axis, main, cross float64) rendering.Offset {
	if ax == axisHorizontal {
		return rendering.Offset{X: main, Y: cross}
	}
	return rendering.Offset{X: cross, Y: main}
}

// flexOf returns the main-axis weight of a stack child. A spacer without
// a minimum length expands with weight 1.
func flexOf(e element.Element) float64 {
	if sp, ok := e.(*element.Spacer); ok {
		if sp.MinLength == nil {
			return 1
		}
		return 0
	}
	return element.StyleOf(e).FlexWeight()
}

func isDivider(e element.Element) bool {
	_, ok := e.(*element.Divider)
	return ok
}

func (n *Node) visible() bool {
	return n.Frame.Width() > 0 || n.Frame.Height() > 0
}

// stack lays children out along ax. Spacing goes between visible
// children only. Non-flex children are measured first in declaration
// order, each offered what is left of the main axis; flex children then
// share the leftover space by weight. Dividers stretch across the final
// cross size.
func (r *resolver) stack(n *Node, kind element.Kind, children element.Elements, ax axis, spacing float64, align string, c Constraints) rendering.Size {
	kids := r.capped(kind, children)
	maxMain := mainOf(ax, c.Biggest())
	maxCross := crossOf(ax, c.Biggest())

	nodes := make([]*Node, len(kids))
	visible := make([]bool, len(kids))
	weights := make([]float64, len(kids))
	totalFlex, used, count := 0.0, 0.0, 0

	for i, k := range kids {
		if k == nil {
			continue
		}
		if w := flexOf(k); w > 0 {
			weights[i] = w
			totalFlex += w
			visible[i] = true
			count++
			continue
		}
		gaps := 0.0
		if count > 0 {
			gaps = spacing
		}
		avail := math.Max(0, maxMain-used-gaps)
		cross := maxCross
		if isDivider(k) {
			cross = 0
		}
		child := r.build(k, Loose(makeSize(ax, avail, cross)), ax)
		nodes[i] = child
		if child.visible() {
			visible[i] = true
			count++
			used += mainOf(ax, child.Frame.Size())
		}
	}

	gaps := 0.0
	if count > 1 {
		gaps = spacing * float64(count-1)
	}
	remaining := math.Max(0, maxMain-used-gaps)
	if math.IsInf(remaining, 0) {
		remaining = 0
	}
	if totalFlex > 0 {
		for i, k := range kids {
			if weights[i] == 0 {
				continue
			}
			share := remaining * weights[i] / totalFlex
			cons := Loose(makeSize(ax, share, maxCross))
			if ax == axisHorizontal {
				cons.MinWidth = share
			} else {
				cons.MinHeight = share
			}
			child := r.build(k, cons, ax)
			nodes[i] = child
			used += mainOf(ax, child.Frame.Size())
		}
	}

	crossSize := 0.0
	for i, child := range nodes {
		if child != nil && !isDivider(kids[i]) {
			crossSize = math.Max(crossSize, crossOf(ax, child.Frame.Size()))
		}
	}
	if crossSize == 0 {
		crossSize = maxCross
	}
	for i, k := range kids {
		if nodes[i] == nil || !isDivider(k) {
			continue
		}
		main := mainOf(ax, nodes[i].Frame.Size())
		nodes[i] = r.build(k, Tight(makeSize(ax, main, crossSize)), ax)
	}

	size := c.Constrain(makeSize(ax, used+gaps, crossSize))
	mainSize, crossSize := mainOf(ax, size), crossOf(ax, size)
	cursor := math.Max(0, (mainSize-used-gaps)/2)
	a := crossAlign(align)
	placed := 0
	for i, child := range nodes {
		if child == nil {
			continue
		}
		if visible[i] {
			if placed > 0 {
				cursor += spacing
			}
			placed++
		}
		cs := child.Frame.Size()
		child.pos = makeOffset(ax, cursor, (crossSize-crossOf(ax, cs))*(a+1)/2)
		cursor += mainOf(ax, cs)
		n.Children = append(n.Children, child)
	}
	return size
}

// overlay stacks children on top of each other, each placed at align
// within the overlay's box.
func (r *resolver) overlay(n *Node, kind element.Kind, children element.Elements, align Alignment, c Constraints) rendering.Size {
	kids := r.capped(kind, children)
	var w, h float64
	for _, k := range kids {
		if k == nil {
			continue
		}
		child := r.build(k, c.Loosen(), axisNone)
		w = math.Max(w, child.Frame.Width())
		h = math.Max(h, child.Frame.Height())
		n.Children = append(n.Children, child)
	}
	size := c.Constrain(rendering.Size{Width: w, Height: h})
	box := rectAt(rendering.Offset{}, size)
	for _, child := range n.Children {
		child.pos = align.WithinRect(box, child.Frame.Size())
	}
	return size
}

// grid places children row-major in equal-width columns that span the
// available width. A nil child leaves its cell blank.
func (r *resolver) grid(n *Node, g *element.Grid, c Constraints) rendering.Size {
	kids := r.capped(g.Kind(), g.Children)
	if len(kids) == 0 {
		return c.Constrain(rendering.Size{})
	}
	cols := g.ColumnCount()
	sp := math.Max(0, element.Or(g.Spacing, 4))
	rowSp := math.Max(0, element.Or(g.RowSpacing, sp))
	width := c.MaxWidth
	cw := math.Max(0, (width-sp*float64(cols-1))/float64(cols))

	rows := (len(kids) + cols - 1) / cols
	y := 0.0
	for row := 0; row < rows; row++ {
		cells := make([]*Node, cols)
		rowH := 0.0
		for col := 0; col < cols; col++ {
			i := row*cols + col
			if i >= len(kids) || kids[i] == nil {
				continue
			}
			child := r.build(kids[i], Loose(rendering.Size{
				Width:  cw,
				Height: math.Max(0, c.MaxHeight-y),
			}), axisNone)
			cells[col] = child
			rowH = math.Max(rowH, child.Frame.Height())
		}
		for col, child := range cells {
			if child == nil {
				continue
			}
			cell := rendering.RectFromLTWH(float64(col)*(cw+sp), y, cw, rowH)
			child.pos = AlignmentCenter.WithinRect(cell, child.Frame.Size())
			n.Children = append(n.Children, child)
		}
		y += rowH
		if row < rows-1 {
			y += rowSp
		}
	}
	return c.Constrain(rendering.Size{Width: width, Height: y})
}

// divider is a hairline across the parent's cross axis: horizontal in
// vertical stacks and on its own, vertical in horizontal stacks.
func (r *resolver) divider(n *Node, d *element.Divider, c Constraints, parent axis) rendering.Size {
	t := math.Max(0, element.Or(d.Thickness, 1))
	var size rendering.Size
	if parent == axisHorizontal {
		size = c.Constrain(rendering.Size{Width: t, Height: c.MinHeight})
	} else {
		w := c.MaxWidth
		if parent == axisVertical {
			w = c.MinWidth
		}
		size = c.Constrain(rendering.Size{Width: w, Height: t})
	}
	th := r.ctx.Theme
	n.Visual = Visual{
		Kind:  VisualDivider,
		Rect:  rectAt(rendering.Offset{}, size),
		Color: th.ResolveOr(d.Color, dividerColor),
	}
	return size
}

var dividerColor = rendering.Color(0xFF888888).ScaleAlpha(0.3)
