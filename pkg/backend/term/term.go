// Package term renders layout plans as text for terminals.
//
// Each plan is mapped onto a character grid by dividing surface points by a
// fixed cell size. Text runs keep their resolved positions, meters become
// text progress bars, charts become sparklines and images fall back to their
// glyph. Colors are blended over the surface background and emitted through
// lipgloss, which drops them on terminals without color support.
package term

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"

	"github.com/go-drift/widgetkit/pkg/draw"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

// Default cell size in points.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

// Options configures text rendering.
type Options struct {
	CellWidth  float64
	CellHeight float64
	// NoBorder drops the rounded frame around the surface.
	NoBorder bool
	// Renderer selects the color profile; nil uses lipgloss's default
	// renderer for stdout.
	Renderer *lipgloss.Renderer
}

func (o Options) withDefaults() Options {
	if o.CellWidth <= 0 {
		o.CellWidth = DefaultCellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = DefaultCellHeight
	}
	if o.Renderer == nil {
		o.Renderer = lipgloss.DefaultRenderer()
	}
	return o
}

type cell struct {
	text string
	fg   rendering.Color
	// tail marks the second column of a double-width rune.
	tail bool
}

type grid struct {
	cols, rows int
	cells      [][]cell
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for i := range g.cells {
		g.cells[i] = make([]cell, cols)
	}
	return g
}

// put writes text starting at col, clipped to the grid.
func (g *grid) put(col, row int, text string, fg rendering.Color) {
	if row < 0 || row >= g.rows {
		return
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= 0 && col+w <= g.cols {
			g.cells[row][col] = cell{text: string(r), fg: fg}
			if w == 2 {
				g.cells[row][col+1] = cell{fg: fg, tail: true}
			}
		}
		col += w
		if col >= g.cols {
			return
		}
	}
}

// Render returns the text rendering of plan.
func Render(plan *layout.Plan, opts Options) string {
	if plan == nil || plan.Root == nil {
		return ""
	}
	opts = opts.withDefaults()
	th := plan.Theme
	if th == nil {
		th = theme.DefaultLightTheme()
	}
	cols := max(1, int(math.Round(plan.Size.Width/opts.CellWidth)))
	rows := max(1, int(math.Round(plan.Size.Height/opts.CellHeight)))
	g := newGrid(cols, rows)
	p := &printer{g: g, opts: opts, th: th}
	plan.Walk(func(n *layout.Node) bool {
		p.node(n)
		return true
	})

	bg := th.ColorScheme.SystemBackground
	if fill := plan.Root.Decoration.Background; fill != nil {
		bg = fillColor(*fill)
	}
	r := opts.Renderer
	lines := make([]string, rows)
	for i, row := range g.cells {
		lines[i] = renderRow(r, row, bg, th.ColorScheme.Label)
	}
	body := strings.Join(lines, "\n")
	if opts.NoBorder {
		return body
	}
	return r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(blend(th.ColorScheme.Separator, bg)).
		Render(body)
}

// renderRow groups runs of equally colored cells into styled segments.
func renderRow(r *lipgloss.Renderer, row []cell, bg, def rendering.Color) string {
	var (
		out strings.Builder
		seg strings.Builder
		cur rendering.Color
	)
	flush := func() {
		if seg.Len() == 0 {
			return
		}
		out.WriteString(r.NewStyle().Foreground(blend(cur, bg)).Render(seg.String()))
		seg.Reset()
	}
	for _, c := range row {
		if c.tail {
			continue
		}
		text, fg := c.text, c.fg
		if text == "" {
			text, fg = " ", def
		}
		if fg != cur {
			flush()
			cur = fg
		}
		seg.WriteString(text)
	}
	flush()
	return out.String()
}

type printer struct {
	g    *grid
	opts Options
	th   *theme.ThemeData
}

func (p *printer) col(x float64) int { return int(math.Round(x / p.opts.CellWidth)) }

func (p *printer) row(y float64) int { return int(math.Floor(y / p.opts.CellHeight)) }

// span is the number of cells a width covers, at least one.
func (p *printer) span(w float64) int { return max(1, int(math.Ceil(w/p.opts.CellWidth))) }

// node prints a node's visual and its text runs. A linear meter is printed
// after its caption so the bar never shares the caption's row.
func (p *printer) node(n *layout.Node) {
	if n.Visual.Kind == layout.VisualMeter && !draw.IsCircular(n.Element) {
		below := -1
		for _, run := range n.Texts {
			below = max(below, p.text(run))
		}
		p.visual(n, below+1)
		return
	}
	p.visual(n, 0)
	for _, run := range n.Texts {
		p.text(run)
	}
}

// text prints a run and returns the last row it used, or -1.
func (p *printer) text(run layout.TextRun) int {
	l := run.Layout
	if l == nil {
		return -1
	}
	limit := p.span(run.Rect.Width())
	last := -1
	for i, line := range l.Lines {
		if line.Text == "" {
			continue
		}
		text := runewidth.Truncate(line.Text, limit, "…")
		x := run.Rect.Left
		switch run.Align {
		case layout.TextAlignCenter:
			x += (run.Rect.Width() - line.Width) / 2
		case layout.TextAlignTrailing:
			x = run.Rect.Right - line.Width
		}
		row := p.row(run.Rect.Top + (float64(i)+0.5)*l.LineHeight)
		if row <= last {
			row = last + 1
		}
		last = row
		p.g.put(p.col(x), row, text, l.Style.Color)
	}
	return last
}

// visual prints a node's visual on its middle row, or on minRow if that is
// lower.
func (p *printer) visual(n *layout.Node, minRow int) {
	v := n.Visual
	cs := p.th.ColorScheme
	mid := max(minRow, p.row(v.Rect.Top+v.Rect.Height()/2))
	left := p.col(v.Rect.Left)
	width := p.span(v.Rect.Width())
	put := func(s string, fg rendering.Color) {
		p.g.put(left, mid, runewidth.Truncate(s, width, ""), fg)
	}
	switch v.Kind {
	case layout.VisualMeter:
		put(draw.ProgressBar(draw.Percent(draw.FractionOf(n.Element))), tintOf(n.Element, p.th))
	case layout.VisualChart:
		if ch, ok := n.Element.(*element.Chart); ok {
			put(draw.Sparkline(draw.ChartValues(ch)), p.th.ResolveOr(ch.Tint, cs.Tint))
		}
	case layout.VisualDivider:
		if v.Rect.Width() >= v.Rect.Height() {
			put(strings.Repeat("─", width), v.Color)
		} else {
			for r := p.row(v.Rect.Top); r <= p.row(v.Rect.Bottom-0.01); r++ {
				p.g.put(left, r, "│", v.Color)
			}
		}
	case layout.VisualImage:
		if v.Image != nil && v.Image.Image != nil {
			put("▣", cs.SecondaryLabel)
		}
	case layout.VisualShape:
		glyph := "■"
		if sh, ok := n.Element.(*element.Shape); ok && strings.EqualFold(sh.ShapeType, "circle") {
			glyph = "●"
		}
		put(glyph, cs.Label)
	case layout.VisualCanvas:
		put("▧", cs.SecondaryLabel)
	}
}

func tintOf(e element.Element, th *theme.ThemeData) rendering.Color {
	var v *element.ColorValue
	switch el := e.(type) {
	case *element.Progress:
		v = el.Tint
	case *element.Gauge:
		v = el.Tint
	}
	return th.ResolveOr(v, th.ColorScheme.Tint)
}

func fillColor(f theme.Fill) rendering.Color {
	pt := f.Paint()
	if pt.Gradient != nil && pt.Gradient.IsValid() {
		return pt.Gradient.ColorAt(0.5)
	}
	return pt.Color
}

// blend composites c over bg and returns the opaque result as a lipgloss
// color.
func blend(c, bg rendering.Color) lipgloss.Color {
	r, g, b, a := c.RGBAF()
	br, bgG, bb, _ := bg.RGBAF()
	mixed := colorful.Color{R: br, G: bgG, B: bb}.BlendRgb(colorful.Color{R: r, G: g, B: b}, a)
	return lipgloss.Color(mixed.Clamped().Hex())
}

// Backend is a surface backend that keeps the most recent text frame.
type Backend struct {
	Options Options

	mu   sync.Mutex
	last string
}

// Draw renders plan and stores the result.
func (b *Backend) Draw(plan *layout.Plan) error {
	out := Render(plan, b.Options)
	b.mu.Lock()
	b.last = out
	b.mu.Unlock()
	return nil
}

// Text returns the last rendered frame.
func (b *Backend) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}
