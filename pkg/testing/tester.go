package testing

import (
	"context"
	"testing"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/host"
	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/store"
	"github.com/go-drift/widgetkit/pkg/surface"
)

// DefaultGroup is the group a tester writes to.
const DefaultGroup = "group.widgetkit.test"

// WidgetTester drives a host and a single surface over an in-memory store.
// It runs the same load, resolve and tap paths as a real embedding but
// keeps the plan instead of drawing it, and reads time from a fake clock.
type WidgetTester struct {
	ctx     context.Context
	store   *store.Memory
	host    *host.Host
	surface *surface.Surface
	detach  func()
	clock   *FakeClock
	family  element.Family
	size    rendering.Size
	dark    bool
	frames  int
	opened  []string
}

// NewWidgetTester creates a tester for the small family and light theme.
// Call Cleanup when done, or use NewWidgetTesterWithT instead.
func NewWidgetTester() *WidgetTester {
	s := store.NewMemory()
	t := &WidgetTester{
		ctx:    context.Background(),
		store:  s,
		host:   host.New(s, host.Options{}),
		clock:  NewFakeClock(),
		family: element.Small,
	}
	t.mount()
	return t
}

// NewWidgetTesterWithT creates a tester that cleans up via t.Cleanup.
func NewWidgetTesterWithT(t *testing.T) *WidgetTester {
	tester := NewWidgetTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup detaches the surface and stops the host.
func (t *WidgetTester) Cleanup() {
	if t.detach != nil {
		t.detach()
		t.detach = nil
	}
	t.host.Close()
}

// mount (re)creates the surface with the current family, size and theme.
func (t *WidgetTester) mount() {
	if t.detach != nil {
		t.detach()
	}
	backend := surface.BackendFunc(func(*layout.Plan) error {
		t.frames++
		return nil
	})
	t.surface = surface.New(t.store, DefaultGroup, backend, surface.Options{
		Family: t.family,
		Size:   t.size,
		Dark:   t.dark,
		Now:    t.clock.Now,
	})
	t.detach = surface.Attach(t.host, t.surface)
}

// SetFamily switches the size family. Call Pump afterwards to re-resolve.
func (t *WidgetTester) SetFamily(f element.Family) {
	t.family = f
	t.mount()
}

// SetSize overrides the family's nominal size.
func (t *WidgetTester) SetSize(size rendering.Size) {
	t.size = size
	t.mount()
}

// SetDark switches between the light and dark palettes.
func (t *WidgetTester) SetDark(dark bool) {
	t.dark = dark
	t.surface.SetDark(dark)
}

// Clock returns the fake clock for advancing time in tests.
func (t *WidgetTester) Clock() *FakeClock {
	return t.clock
}

// Host exposes the underlying host for tests that need the dispatcher or
// registry directly.
func (t *WidgetTester) Host() *host.Host {
	return t.host
}

// Store exposes the backing store.
func (t *WidgetTester) Store() store.Store {
	return t.store
}

// PumpConfig stores raw as the group's configuration and runs one pass.
// Attached surfaces reload through the host like they would in production.
func (t *WidgetTester) PumpConfig(raw []byte) error {
	if _, err := t.host.SetConfig(t.ctx, DefaultGroup, raw, false); err != nil {
		return err
	}
	return t.Pump()
}

// Pump forces a resolve pass over the stored configuration.
func (t *WidgetTester) Pump() error {
	_, err := t.surface.Refresh(t.ctx, true)
	return err
}

// Frames is the number of passes the surface has drawn.
func (t *WidgetTester) Frames() int {
	return t.frames
}

// Plan returns the most recent plan, or nil before the first pump.
func (t *WidgetTester) Plan() *layout.Plan {
	return t.surface.Plan()
}

// Find evaluates finder against the current plan.
func (t *WidgetTester) Find(finder Finder) FinderResult {
	var root *layout.Node
	if p := t.Plan(); p != nil {
		root = p.Root
	}
	if root == nil {
		return FinderResult{finder: finder}
	}
	return FinderResult{nodes: finder.Evaluate(root), finder: finder}
}

// Drain empties the group's action queue.
func (t *WidgetTester) Drain() ([]actions.Event, error) {
	return t.host.Drain(t.ctx, DefaultGroup)
}

// Opened lists URLs of link taps, oldest first.
func (t *WidgetTester) Opened() []string {
	return t.opened
}
