package testing

import (
	"fmt"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/rendering"
)

// Tap simulates a tap at the center of the first node matched by finder.
func (t *WidgetTester) Tap(finder Finder) error {
	result := t.Find(finder)
	if !result.Exists() {
		return fmt.Errorf("Tap: finder matched no nodes: %s", finder.Description())
	}
	return t.TapAt(result.First().Frame.Center())
}

// TapAt simulates a tap at the given logical position. The innermost
// interactive node under pos receives it: actions go through the host,
// links are recorded in Opened.
func (t *WidgetTester) TapAt(pos rendering.Offset) error {
	plan := t.Plan()
	if plan == nil {
		return fmt.Errorf("TapAt: nothing pumped")
	}
	n := plan.HitTest(pos)
	if n == nil {
		return fmt.Errorf("TapAt: no interactive node at (%.1f, %.1f)", pos.X, pos.Y)
	}
	if n.Action == "" {
		t.opened = append(t.opened, n.URL)
		return nil
	}
	_, err := t.host.Tap(t.ctx, DefaultGroup, actions.NewEvent(n.Action, n.Payload))
	return err
}
