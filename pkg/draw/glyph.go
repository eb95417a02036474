package draw

import (
	"strings"
	"unicode/utf8"
)

// glyphs maps symbol names to text stand-ins used when no image resolves.
var glyphs = map[string]string{
	"cloud.sun.fill":              "⛅",
	"sun.max.fill":                "☀",
	"cloud.rain.fill":             "☔",
	"cloud.fill":                  "☁",
	"cloud.bolt.fill":             "⚡",
	"bolt.fill":                   "⚡",
	"moon.stars.fill":             "☾",
	"paintpalette.fill":           "⚘",
	"location.fill":               "⌂",
	"person.fill":                 "◉",
	"person.2.fill":               "◉◉",
	"person.badge.plus":           "◉+",
	"heart.fill":                  "❤",
	"star.fill":                   "⭐",
	"drop.fill":                   "●",
	"leaf.fill":                   "✿",
	"flame.fill":                  "\U0001F525",
	"hourglass":                   "⏳",
	"hourglass.bottomhalf.filled": "⏳",
	"music.note":                  "♪",
	"music.note.list":             "♪",
	"bitcoinsign.circle.fill":     "₿",
	"quote.opening":               "“",
	"figure.run":                  "➤",
	"globe":                       "◎",
	"clock":                       "⏰",
	"desktopcomputer":             "▣",
	"network":                     "≡",
	"internaldrive":               "■",
	"battery.100":                 "▮",
	"iphone":                      "▯",
	"applewatch":                  "⌚",
	"airpodspro":                  "○",
	"ipad":                        "▭",
	"eye.fill":                    "◉",
	"bubble.left.fill":            "◭",
	"checkmark.circle.fill":       "✓",
	"circle":                      "○",
}

// PlaceholderGlyph is drawn when nothing else is available.
const PlaceholderGlyph = "*"

// LookupGlyph returns the table entry for a symbol name.
func LookupGlyph(systemName string) (string, bool) {
	g, ok := glyphs[strings.ToLower(strings.TrimSpace(systemName))]
	return g, ok
}

// Glyph picks the text stand-in for an image: the table entry for its
// symbol, else the first character of the first non-empty label, else the
// first character of the symbol name, else PlaceholderGlyph. It never
// returns an empty string.
func Glyph(systemName string, labels ...string) string {
	if g, ok := LookupGlyph(systemName); ok {
		return g
	}
	for _, l := range labels {
		if r := firstRune(l); r != "" {
			return r
		}
	}
	if r := firstRune(systemName); r != "" {
		return r
	}
	return PlaceholderGlyph
}

func firstRune(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}

// AssetNames returns the bundled-asset names tried for a symbol name: the
// name itself, then with '.' and '-' replaced by '_'.
func AssetNames(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	names := []string{name}
	add := func(n string) {
		for _, have := range names {
			if have == n {
				return
			}
		}
		names = append(names, n)
	}
	add(strings.ReplaceAll(name, ".", "_"))
	add(strings.ReplaceAll(name, "-", "_"))
	add(strings.NewReplacer(".", "_", "-", "_").Replace(name))
	return names
}
