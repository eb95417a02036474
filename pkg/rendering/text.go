package rendering

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	// defaultFontSize is used when no font size is specified.
	defaultFontSize = 16

	// ellipsis terminates lines cut by a line limit.
	ellipsis = "…"
)

// MetricsFace is the reference face used for measurement. Backends that draw
// with a different face scale to the same advance widths so layout decisions
// stay identical across surfaces.
var MetricsFace font.Face = basicfont.Face7x13

// FontWeight represents a numeric font weight.
type FontWeight int

const (
	FontWeightUltraLight FontWeight = 100
	FontWeightThin       FontWeight = 200
	FontWeightLight      FontWeight = 300
	FontWeightNormal     FontWeight = 400
	FontWeightMedium     FontWeight = 500
	FontWeightSemibold   FontWeight = 600
	FontWeightBold       FontWeight = 700
	FontWeightHeavy      FontWeight = 800
	FontWeightBlack      FontWeight = 900
)

// TextAnchor positions text horizontally relative to its origin.
type TextAnchor int

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

// TextStyle describes how text should be rendered.
type TextStyle struct {
	Color      Color
	FontSize   float64
	FontWeight FontWeight
	Monospace  bool
	Anchor     TextAnchor
}

func (s TextStyle) size() float64 {
	if s.FontSize <= 0 {
		return defaultFontSize
	}
	return s.FontSize
}

// EffectiveSize returns the font size with the default applied.
func (s TextStyle) EffectiveSize() float64 { return s.size() }

// TextLine represents a single laid-out line of text.
type TextLine struct {
	Text  string
	Width float64
}

// TextLayout contains measured text metrics.
type TextLayout struct {
	Text       string
	Style      TextStyle
	Size       Size
	Ascent     float64
	Descent    float64
	LineHeight float64
	Lines      []TextLine
}

// FontMetrics returns ascent, descent and line height for a font size.
func FontMetrics(fontSize float64) (ascent, descent, lineHeight float64) {
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	m := MetricsFace.Metrics()
	ref := float64(m.Height) / 64
	scale := fontSize / ref
	ascent = float64(m.Ascent) / 64 * scale
	descent = float64(m.Descent) / 64 * scale
	return ascent, descent, math.Round(fontSize*1.2*100) / 100
}

// MeasureText returns the advance width of s in the given style.
func MeasureText(s string, style TextStyle) float64 {
	if s == "" {
		return 0
	}
	m := MetricsFace.Metrics()
	ref := float64(m.Height) / 64
	w := float64(font.MeasureString(MetricsFace, s)) / 64 * style.size() / ref
	if style.FontWeight >= FontWeightSemibold {
		w *= 1.05
	}
	return w
}

// LayoutText measures and wraps text within maxWidth (0 means unbounded).
// A positive maxLines truncates the result, ending the last kept line with an
// ellipsis.
func LayoutText(text string, style TextStyle, maxWidth float64, maxLines int) *TextLayout {
	measure := func(s string) float64 { return MeasureText(s, style) }
	ascent, descent, lineHeight := FontMetrics(style.size())
	lines := layoutLines(text, maxWidth, measure)
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		last := &lines[maxLines-1]
		last.Text = fitWithEllipsis(last.Text, maxWidth, measure)
		last.Width = measure(last.Text)
	}
	if len(lines) == 0 {
		lines = []TextLine{{Text: "", Width: 0}}
	}
	maxLineWidth := 0.0
	for _, line := range lines {
		maxLineWidth = math.Max(maxLineWidth, line.Width)
	}
	return &TextLayout{
		Text:       text,
		Style:      style,
		Size:       Size{Width: maxLineWidth, Height: lineHeight * float64(len(lines))},
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: lineHeight,
		Lines:      lines,
	}
}

func fitWithEllipsis(s string, maxWidth float64, measure func(string) float64) string {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	if maxWidth <= 0 {
		return s + ellipsis
	}
	for s != "" && measure(s+ellipsis) > maxWidth {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s + ellipsis
}

func layoutLines(text string, maxWidth float64, measure func(string) float64) []TextLine {
	if maxWidth < 0 || math.IsInf(maxWidth, 0) {
		maxWidth = 0
	}
	paragraphs := strings.Split(text, "\n")
	lines := make([]TextLine, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		if paragraph == "" {
			lines = append(lines, TextLine{})
			continue
		}
		if maxWidth == 0 {
			lines = append(lines, TextLine{Text: paragraph, Width: measure(paragraph)})
			continue
		}
		for _, line := range wrapParagraph(paragraph, maxWidth, measure) {
			lines = append(lines, TextLine{Text: line, Width: measure(line)})
		}
	}
	return lines
}

func wrapParagraph(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	start := 0
	for start < len(text) {
		lastBreak := -1
		lastFit := -1
		for i := start; i < len(text); {
			r, size := utf8.DecodeRuneInString(text[i:])
			next := i + size
			width := measure(text[start:next])
			if width > maxWidth {
				break
			}
			lastFit = next
			if unicode.IsSpace(r) {
				lastBreak = next
			}
			i = next
		}
		if lastFit == -1 {
			_, size := utf8.DecodeRuneInString(text[start:])
			lastFit = start + size
		}
		cut := lastFit
		if lastFit < len(text) && lastBreak > start && lastBreak < lastFit {
			cut = lastBreak
		}
		lines = append(lines, strings.TrimRightFunc(text[start:cut], unicode.IsSpace))
		start = cut
		for start < len(text) {
			r, size := utf8.DecodeRuneInString(text[start:])
			if !unicode.IsSpace(r) {
				break
			}
			start += size
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
