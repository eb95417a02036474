package layout

import (
	"time"

	"github.com/go-drift/widgetkit/pkg/draw"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

// DefaultMaxChildren is the generic capacity of stacks, grids, containers
// and list rows.
const DefaultMaxChildren = 10

// Context is the ambient input of a resolve pass.
type Context struct {
	Family element.Family
	// Size is the surface size; zero means FamilySize(Family).
	Size  rendering.Size
	Theme *theme.ThemeData
	// Now anchors dates and timers; zero means time.Now().
	Now time.Time
	// MaxChildren caps every bounded collection; zero means DefaultMaxChildren.
	MaxChildren int
	Images      *draw.ImageResolver
}

// FamilySize returns the nominal surface size of a family, in points.
func FamilySize(f element.Family) rendering.Size {
	switch f {
	case element.Medium:
		return rendering.Size{Width: 338, Height: 158}
	case element.Large:
		return rendering.Size{Width: 338, Height: 354}
	default:
		return rendering.Size{Width: 158, Height: 158}
	}
}

// ListRowCap returns the number of list rows a family shows, bounded by
// the generic capacity.
func ListRowCap(f element.Family, maxChildren int) int {
	rows := 2
	switch f {
	case element.Medium:
		rows = 3
	case element.Large:
		rows = 4
	}
	if maxChildren > 0 && rows > maxChildren {
		rows = maxChildren
	}
	return rows
}

func (c Context) withDefaults() Context {
	if c.Size.IsEmpty() {
		c.Size = FamilySize(c.Family)
	}
	if c.Theme == nil {
		c.Theme = theme.DefaultLightTheme()
	}
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	if c.MaxChildren <= 0 {
		c.MaxChildren = DefaultMaxChildren
	}
	return c
}
