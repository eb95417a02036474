package element

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-drift/widgetkit/pkg/errors"
)

// Family is a size family.
type Family int

const (
	Small Family = iota
	Medium
	Large
)

// Families lists every size family in wire order.
var Families = []Family{Small, Medium, Large}

func (f Family) String() string {
	switch f {
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return "small"
	}
}

// ParseFamily parses a family name. Unknown names map to Small.
func ParseFamily(s string) (Family, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small", "systemsmall":
		return Small, true
	case "medium", "systemmedium":
		return Medium, true
	case "large", "systemlarge", "extralarge":
		return Large, true
	}
	return Small, false
}

// fallback is the order in which roots are tried for a requested family.
func (f Family) fallback() [3]Family {
	switch f {
	case Medium:
		return [3]Family{Medium, Large, Small}
	case Large:
		return [3]Family{Large, Medium, Small}
	default:
		return [3]Family{Small, Medium, Large}
	}
}

// Config is a parsed widget configuration.
type Config struct {
	Version int     `json:"version"`
	Small   Element `json:"-"`
	Medium  Element `json:"-"`
	Large   Element `json:"-"`
}

// Root returns the root element for the requested family, falling back to
// the other families. It returns the family actually used, or false when no
// family has a root.
func (c *Config) Root(f Family) (Element, Family, bool) {
	if c == nil {
		return nil, f, false
	}
	for _, cand := range f.fallback() {
		if e := c.root(cand); e != nil {
			return e, cand, true
		}
	}
	return nil, f, false
}

func (c *Config) root(f Family) Element {
	switch f {
	case Medium:
		return c.Medium
	case Large:
		return c.Large
	default:
		return c.Small
	}
}

// Parse decodes a serialized WidgetConfig. A payload that is not a JSON
// object yields an error wrapping errors.ErrInvalidConfig; individual bad
// nodes never fail the parse.
func Parse(raw []byte) (*Config, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, &errors.ParseError{Source: "config", DataType: "object", Got: preview(raw), Err: errors.ErrInvalidConfig}
	}
	var top struct {
		Version json.RawMessage `json:"version"`
		Small   json.RawMessage `json:"small"`
		Medium  json.RawMessage `json:"medium"`
		Large   json.RawMessage `json:"large"`
	}
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &errors.ParseError{Source: "config", DataType: "object", Got: preview(raw), Err: fmt.Errorf("%w: %v", errors.ErrInvalidConfig, err)}
	}
	cfg := &Config{
		Version: 1,
		Small:   decodeRoot(top.Small),
		Medium:  decodeRoot(top.Medium),
		Large:   decodeRoot(top.Large),
	}
	var v float64
	if json.Unmarshal(top.Version, &v) == nil && v > 0 {
		cfg.Version = int(v)
	}
	return cfg, nil
}

// decodeRoot treats anything but an object as an absent family.
func decodeRoot(raw json.RawMessage) Element {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	return Decode(raw)
}

func preview(raw []byte) string {
	const max = 32
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
