package element

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ColorValue is either a literal color string (hex, semantic token or
// named color) or an adaptive {light, dark} pair.
type ColorValue struct {
	Literal string
	Light   string
	Dark    string
}

// Lit returns a literal ColorValue.
func Lit(s string) *ColorValue { return &ColorValue{Literal: s} }

// Adaptive returns an adaptive ColorValue.
func Adaptive(light, dark string) *ColorValue { return &ColorValue{Light: light, Dark: dark} }

// IsAdaptive reports whether the value is a {light, dark} pair.
func (c ColorValue) IsAdaptive() bool {
	return c.Literal == "" && (c.Light != "" || c.Dark != "")
}

// Pick returns the branch to resolve for the given mode.
func (c ColorValue) Pick(dark bool) string {
	if !c.IsAdaptive() {
		return c.Literal
	}
	if dark {
		return c.Dark
	}
	return c.Light
}

func (c *ColorValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Literal)
	}
	var pair struct {
		Light string `json:"light"`
		Dark  string `json:"dark"`
	}
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	c.Light, c.Dark = pair.Light, pair.Dark
	return nil
}

// GradientDirection is one of the eight gradient directions.
type GradientDirection string

const (
	TopToBottom                GradientDirection = "topToBottom"
	BottomToTop                GradientDirection = "bottomToTop"
	LeadingToTrailing          GradientDirection = "leadingToTrailing"
	TrailingToLeading          GradientDirection = "trailingToLeading"
	TopLeadingToBottomTrailing GradientDirection = "topLeadingToBottomTrailing"
	TopTrailingToBottomLeading GradientDirection = "topTrailingToBottomLeading"
	BottomLeadingToTopTrailing GradientDirection = "bottomLeadingToTopTrailing"
	BottomTrailingToTopLeading GradientDirection = "bottomTrailingToTopLeading"
)

// Gradient is a multi-stop gradient background.
type Gradient struct {
	GradientType string            `json:"gradientType"`
	Colors       []string          `json:"colors"`
	Direction    GradientDirection `json:"direction,omitempty"`
}

// Background is a solid color, an adaptive pair or a gradient.
type Background struct {
	Color    *ColorValue
	Gradient *Gradient
}

func (b *Background) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(data, &probe); err != nil {
			return fmt.Errorf("background: %w", err)
		}
		if _, ok := probe["gradientType"]; ok {
			var g Gradient
			if err := json.Unmarshal(data, &g); err != nil {
				return fmt.Errorf("background: %w", err)
			}
			b.Gradient = &g
			return nil
		}
		if _, ok := probe["colors"]; ok {
			var g Gradient
			if err := json.Unmarshal(data, &g); err != nil {
				return fmt.Errorf("background: %w", err)
			}
			b.Gradient = &g
			return nil
		}
	}
	var c ColorValue
	if err := c.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("background: %w", err)
	}
	b.Color = &c
	return nil
}

// Padding is per-edge insets. The wire form is a single number or an object.
type Padding struct {
	Top      float64 `json:"top"`
	Bottom   float64 `json:"bottom"`
	Leading  float64 `json:"leading"`
	Trailing float64 `json:"trailing"`
}

// Uniform returns padding with the same inset on every edge.
func Uniform(v float64) Padding { return Padding{Top: v, Bottom: v, Leading: v, Trailing: v} }

// Horizontal returns the sum of leading and trailing.
func (p Padding) Horizontal() float64 { return p.Leading + p.Trailing }

// Vertical returns the sum of top and bottom.
func (p Padding) Vertical() float64 { return p.Top + p.Bottom }

func (p *Padding) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("padding: %w", err)
		}
		*p = Uniform(v)
		return nil
	}
	type edges Padding
	var e edges
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("padding: %w", err)
	}
	*p = Padding(e)
	return nil
}

// Dimension is a frame extent: a number or the keyword "infinity".
type Dimension struct {
	Value    float64
	Infinite bool
}

// Resolve returns the extent bounded by available.
func (d Dimension) Resolve(available float64) float64 {
	if d.Infinite {
		return available
	}
	return math.Min(d.Value, available)
}

func (d *Dimension) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimPrefix(s, ".")) {
		case "infinity", "inf", "max":
			d.Infinite = true
			return nil
		}
		return fmt.Errorf("frame: unknown dimension %q", s)
	}
	return json.Unmarshal(data, &d.Value)
}

// Frame constrains an element's size.
type Frame struct {
	Width     *float64   `json:"width,omitempty"`
	Height    *float64   `json:"height,omitempty"`
	MaxWidth  *Dimension `json:"maxWidth,omitempty"`
	MaxHeight *Dimension `json:"maxHeight,omitempty"`
}

// Border strokes an element's outline.
type Border struct {
	Color *ColorValue `json:"color,omitempty"`
	Width *float64    `json:"width,omitempty"`
}

// LineWidth returns the border width, default 1.
func (b Border) LineWidth() float64 {
	if b.Width == nil {
		return 1
	}
	return *b.Width
}

// Shadow is a drop shadow.
type Shadow struct {
	Color  *ColorValue `json:"color,omitempty"`
	Radius *float64    `json:"radius,omitempty"`
	X      *float64    `json:"x,omitempty"`
	Y      *float64    `json:"y,omitempty"`
}

// Params returns radius and offset with defaults applied (4, 0, 2).
func (s Shadow) Params() (radius, x, y float64) {
	return Or(s.Radius, 4), Or(s.X, 0), Or(s.Y, 2)
}

// Style holds the optional style properties shared by every non-spacer
// element. On the wire its fields sit beside the element's own fields.
type Style struct {
	Padding      *Padding    `json:"padding,omitempty"`
	Background   *Background `json:"background,omitempty"`
	CornerRadius *float64    `json:"cornerRadius,omitempty"`
	Opacity      *float64    `json:"opacity,omitempty"`
	Frame        *Frame      `json:"frame,omitempty"`
	Border       *Border     `json:"border,omitempty"`
	Shadow       *Shadow     `json:"shadow,omitempty"`
	ClipShape    string      `json:"clipShape,omitempty"`
	Flex         *float64    `json:"flex,omitempty"`
}

// Base returns the style itself so every embedding element satisfies Element.
func (s *Style) Base() *Style { return s }

// Insets returns the padding, default zero.
func (s *Style) Insets() Padding {
	if s == nil || s.Padding == nil {
		return Padding{}
	}
	return *s.Padding
}

// Alpha returns the opacity clamped to [0, 1], default 1.
func (s *Style) Alpha() float64 {
	if s == nil || s.Opacity == nil {
		return 1
	}
	return math.Max(0, math.Min(1, *s.Opacity))
}

// FlexWeight returns the flex weight, default 0 (size to content).
func (s *Style) FlexWeight() float64 {
	if s == nil || s.Flex == nil || *s.Flex < 0 {
		return 0
	}
	return *s.Flex
}

// Radius returns the corner radius, default 0.
func (s *Style) Radius() float64 {
	if s == nil {
		return 0
	}
	return Or(s.CornerRadius, 0)
}

// Or dereferences p, returning def when p is nil.
func Or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
