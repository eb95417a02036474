package element

// Element is one node of a widget tree. The concrete types below form a
// closed set; consumers switch on the concrete type with a default arm
// for *Unknown.
type Element interface {
	Kind() Kind
	// Base returns the node's style. Spacers return nil.
	Base() *Style
}

// Elements is an ordered child list.
type Elements []Element

// Interactive is implemented by leaves that can emit a tap action.
type Interactive interface {
	Element
	ActionRef() (action, payload string)
}

// StyleOf returns the element's style, or an empty style when it has none.
func StyleOf(e Element) *Style {
	if e == nil {
		return &Style{}
	}
	if s := e.Base(); s != nil {
		return s
	}
	return &Style{}
}

// ChildrenOf returns the children of container kinds and nil for leaves.
func ChildrenOf(e Element) Elements {
	switch n := e.(type) {
	case *VStack:
		return n.Children
	case *HStack:
		return n.Children
	case *ZStack:
		return n.Children
	case *Grid:
		return n.Children
	case *Container:
		return n.Children
	case *Link:
		return n.Children
	default:
		return nil
	}
}

// Walk visits e and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(e Element, fn func(Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range ChildrenOf(e) {
		Walk(c, fn)
	}
}

type VStack struct {
	Style
	Children  Elements `json:"children,omitempty"`
	Spacing   *float64 `json:"spacing,omitempty"`
	Alignment string   `json:"alignment,omitempty"`
}

type HStack struct {
	Style
	Children  Elements `json:"children,omitempty"`
	Spacing   *float64 `json:"spacing,omitempty"`
	Alignment string   `json:"alignment,omitempty"`
}

type ZStack struct {
	Style
	Children  Elements `json:"children,omitempty"`
	Alignment string   `json:"alignment,omitempty"`
}

type Grid struct {
	Style
	Children   Elements `json:"children,omitempty"`
	Columns    *int     `json:"columns,omitempty"`
	Spacing    *float64 `json:"spacing,omitempty"`
	RowSpacing *float64 `json:"rowSpacing,omitempty"`
}

// ColumnCount returns the column count, default 2, minimum 1.
func (g *Grid) ColumnCount() int {
	n := Or(g.Columns, 2)
	if n < 1 {
		return 1
	}
	return n
}

type Container struct {
	Style
	Children         Elements `json:"children,omitempty"`
	ContentAlignment string   `json:"contentAlignment,omitempty"`
}

type Text struct {
	Style
	Content    string      `json:"content"`
	FontSize   *float64    `json:"fontSize,omitempty"`
	FontWeight string      `json:"fontWeight,omitempty"`
	FontDesign string      `json:"fontDesign,omitempty"`
	TextStyle  string      `json:"textStyle,omitempty"`
	Color      *ColorValue `json:"color,omitempty"`
	Alignment  string      `json:"alignment,omitempty"`
	LineLimit  *int        `json:"lineLimit,omitempty"`
}

type Image struct {
	Style
	SystemName  string      `json:"systemName,omitempty"`
	Data        string      `json:"data,omitempty"`
	URL         string      `json:"url,omitempty"`
	LocalPath   string      `json:"localPath,omitempty"`
	Alt         string      `json:"alt,omitempty"`
	Label       string      `json:"label,omitempty"`
	Size        *float64    `json:"size,omitempty"`
	Color       *ColorValue `json:"color,omitempty"`
	ContentMode string      `json:"contentMode,omitempty"`
	CacheTTLMs  *float64    `json:"cacheTtlMs,omitempty"`
	CacheTTLSec *float64    `json:"cacheTtlSec,omitempty"`
}

type Progress struct {
	Style
	Value    float64     `json:"value"`
	Total    *float64    `json:"total,omitempty"`
	Label    string      `json:"label,omitempty"`
	Tint     *ColorValue `json:"tint,omitempty"`
	Color    *ColorValue `json:"color,omitempty"`
	BarStyle string      `json:"barStyle,omitempty"`
}

type Gauge struct {
	Style
	Value             float64     `json:"value"`
	Min               *float64    `json:"min,omitempty"`
	Max               *float64    `json:"max,omitempty"`
	Label             string      `json:"label,omitempty"`
	CurrentValueLabel string      `json:"currentValueLabel,omitempty"`
	Tint              *ColorValue `json:"tint,omitempty"`
	Color             *ColorValue `json:"color,omitempty"`
	GaugeStyle        string      `json:"gaugeStyle,omitempty"`
}

type Button struct {
	Style
	Label           string      `json:"label"`
	URL             string      `json:"url,omitempty"`
	Action          string      `json:"action,omitempty"`
	Payload         string      `json:"payload,omitempty"`
	Color           *ColorValue `json:"color,omitempty"`
	BackgroundColor *ColorValue `json:"backgroundColor,omitempty"`
	FontSize        *float64    `json:"fontSize,omitempty"`
	TextAlignment   string      `json:"textAlignment,omitempty"`
}

func (b *Button) ActionRef() (string, string) { return b.Action, b.Payload }

type Toggle struct {
	Style
	IsOn    bool        `json:"isOn"`
	Label   string      `json:"label,omitempty"`
	Tint    *ColorValue `json:"tint,omitempty"`
	Action  string      `json:"action,omitempty"`
	Payload string      `json:"payload,omitempty"`
}

func (t *Toggle) ActionRef() (string, string) { return t.Action, t.Payload }

type Divider struct {
	Style
	Color     *ColorValue `json:"color,omitempty"`
	Thickness *float64    `json:"thickness,omitempty"`
}

// Spacer carries no style.
type Spacer struct {
	MinLength *float64 `json:"minLength,omitempty"`
}

type Date struct {
	Style
	Date      string      `json:"date"`
	DateStyle string      `json:"dateStyle,omitempty"`
	FontSize  *float64    `json:"fontSize,omitempty"`
	Color     *ColorValue `json:"color,omitempty"`
}

// ChartPoint is one chart datum.
type ChartPoint struct {
	Label string      `json:"label"`
	Value float64     `json:"value"`
	Color *ColorValue `json:"color,omitempty"`
}

type Chart struct {
	Style
	ChartType string       `json:"chartType,omitempty"`
	ChartData []ChartPoint `json:"chartData,omitempty"`
	Tint      *ColorValue  `json:"tint,omitempty"`
}

// ListItem is one row of a list. Rows with Checked or IsOn set render as
// checkboxes.
type ListItem struct {
	Text    string `json:"text"`
	Checked *bool  `json:"checked,omitempty"`
	IsOn    *bool  `json:"isOn,omitempty"`
	Action  string `json:"action,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// State reports whether the row is a checkbox and whether it is on. Either
// key being true turns the row on.
func (it ListItem) State() (on, checkbox bool) {
	if it.Checked == nil && it.IsOn == nil {
		return false, false
	}
	return (it.Checked != nil && *it.Checked) || (it.IsOn != nil && *it.IsOn), true
}

type List struct {
	Style
	Items    []ListItem  `json:"items,omitempty"`
	Spacing  *float64    `json:"spacing,omitempty"`
	FontSize *float64    `json:"fontSize,omitempty"`
	Color    *ColorValue `json:"color,omitempty"`
}

type Link struct {
	Style
	Children Elements `json:"children,omitempty"`
	URL      string   `json:"url,omitempty"`
	Action   string   `json:"action,omitempty"`
	Payload  string   `json:"payload,omitempty"`
}

func (l *Link) ActionRef() (string, string) { return l.Action, l.Payload }

type Shape struct {
	Style
	ShapeType   string      `json:"shapeType,omitempty"`
	Fill        *ColorValue `json:"fill,omitempty"`
	Stroke      *ColorValue `json:"stroke,omitempty"`
	StrokeWidth *float64    `json:"strokeWidth,omitempty"`
	Size        *float64    `json:"size,omitempty"`
}

type Timer struct {
	Style
	TargetDate string      `json:"targetDate"`
	Counting   string      `json:"counting,omitempty"`
	FontSize   *float64    `json:"fontSize,omitempty"`
	FontWeight string      `json:"fontWeight,omitempty"`
	Color      *ColorValue `json:"color,omitempty"`
}

type Label struct {
	Style
	Text       string      `json:"text"`
	SystemName string      `json:"systemName,omitempty"`
	IconColor  *ColorValue `json:"iconColor,omitempty"`
	FontSize   *float64    `json:"fontSize,omitempty"`
	FontWeight string      `json:"fontWeight,omitempty"`
	Color      *ColorValue `json:"color,omitempty"`
	Spacing    *float64    `json:"spacing,omitempty"`
	Action     string      `json:"action,omitempty"`
	Payload    string      `json:"payload,omitempty"`
}

func (l *Label) ActionRef() (string, string) { return l.Action, l.Payload }

// DrawCommand is one canvas command in logical coordinates. Draw selects
// the primitive: circle, line, rect, arc, text or path.
type DrawCommand struct {
	Draw         string      `json:"draw"`
	CX           *float64    `json:"cx,omitempty"`
	CY           *float64    `json:"cy,omitempty"`
	R            *float64    `json:"r,omitempty"`
	X            *float64    `json:"x,omitempty"`
	Y            *float64    `json:"y,omitempty"`
	X1           *float64    `json:"x1,omitempty"`
	Y1           *float64    `json:"y1,omitempty"`
	X2           *float64    `json:"x2,omitempty"`
	Y2           *float64    `json:"y2,omitempty"`
	Width        *float64    `json:"width,omitempty"`
	Height       *float64    `json:"height,omitempty"`
	CornerRadius *float64    `json:"cornerRadius,omitempty"`
	StartAngle   *float64    `json:"startAngle,omitempty"`
	EndAngle     *float64    `json:"endAngle,omitempty"`
	Content      string      `json:"content,omitempty"`
	FontSize     *float64    `json:"fontSize,omitempty"`
	Anchor       string      `json:"anchor,omitempty"`
	D            string      `json:"d,omitempty"`
	Fill         *ColorValue `json:"fill,omitempty"`
	Stroke       *ColorValue `json:"stroke,omitempty"`
	Color        *ColorValue `json:"color,omitempty"`
	StrokeWidth  *float64    `json:"strokeWidth,omitempty"`
	LineCap      string      `json:"lineCap,omitempty"`
}

type Canvas struct {
	Style
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Elements []DrawCommand `json:"elements,omitempty"`
}

// Unknown stands in for an unrecognized or undecodable node. It renders
// as a text leaf showing TypeName.
type Unknown struct {
	Style
	TypeName string `json:"-"`
	Err      error  `json:"-"`
}

func (*VStack) Kind() Kind    { return KindVStack }
func (*HStack) Kind() Kind    { return KindHStack }
func (*ZStack) Kind() Kind    { return KindZStack }
func (*Grid) Kind() Kind      { return KindGrid }
func (*Container) Kind() Kind { return KindContainer }
func (*Text) Kind() Kind      { return KindText }
func (*Image) Kind() Kind     { return KindImage }
func (*Progress) Kind() Kind  { return KindProgress }
func (*Gauge) Kind() Kind     { return KindGauge }
func (*Button) Kind() Kind    { return KindButton }
func (*Toggle) Kind() Kind    { return KindToggle }
func (*Divider) Kind() Kind   { return KindDivider }
func (*Spacer) Kind() Kind    { return KindSpacer }
func (*Date) Kind() Kind      { return KindDate }
func (*Chart) Kind() Kind     { return KindChart }
func (*List) Kind() Kind      { return KindList }
func (*Link) Kind() Kind      { return KindLink }
func (*Shape) Kind() Kind     { return KindShape }
func (*Timer) Kind() Kind     { return KindTimer }
func (*Label) Kind() Kind     { return KindLabel }
func (*Canvas) Kind() Kind    { return KindCanvas }
func (*Unknown) Kind() Kind   { return KindUnknown }

func (*Spacer) Base() *Style { return nil }
