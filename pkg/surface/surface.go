// Package surface is one render surface instance: it loads a group's config
// from the store, decides whether it changed since the last pass, resolves
// the layout for its size family and hands the plan to a backend.
package surface

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/pkg/draw"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/host"
	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/metrics"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/store"
	"github.com/go-drift/widgetkit/pkg/theme"
)

// Backend consumes resolved plans.
type Backend interface {
	Draw(plan *layout.Plan) error
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(plan *layout.Plan) error

func (f BackendFunc) Draw(plan *layout.Plan) error { return f(plan) }

// Options configures a surface.
type Options struct {
	Family element.Family
	// Size overrides the family's nominal size.
	Size        rendering.Size
	Dark        bool
	MaxChildren int
	Images      *draw.ImageResolver
	// Now fixes the clock for dates and timers. Nil uses time.Now.
	Now func() time.Time
}

// Surface renders one group for one size family.
type Surface struct {
	id      string
	group   string
	store   store.Store
	backend Backend
	opts    Options

	mu      sync.Mutex
	lastKey string
	plan    *layout.Plan
}

// New returns a surface with a fresh instance ID.
func New(s store.Store, group string, backend Backend, opts Options) *Surface {
	return &Surface{
		id:      uuid.NewString(),
		group:   group,
		store:   s,
		backend: backend,
		opts:    opts,
	}
}

// ID is the instance ID.
func (s *Surface) ID() string { return s.id }

// Group is the group this surface renders.
func (s *Surface) Group() string { return s.group }

// Family is the requested size family.
func (s *Surface) Family() element.Family { return s.opts.Family }

// SetDark switches the theme and marks the surface dirty.
func (s *Surface) SetDark(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.Dark != dark {
		s.opts.Dark = dark
		s.lastKey = ""
	}
}

// Plan returns the last rendered plan, or nil.
func (s *Surface) Plan() *layout.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Reload renders when the stored config or its nonce changed since the
// last pass.
func (s *Surface) Reload(ctx context.Context) error {
	_, err := s.Refresh(ctx, false)
	return err
}

// Refresh loads the group and renders when dirty or when force is set.
// It reports whether a pass ran.
func (s *Surface) Refresh(ctx context.Context, force bool) (bool, error) {
	snap, err := host.Load(ctx, s.store, s.group)
	if err != nil {
		return false, fmt.Errorf("surface %s: load: %w", s.id, err)
	}
	key := snap.Key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !force && key == s.lastKey {
		return false, nil
	}
	plan, err := s.render(snap.Raw)
	if err != nil {
		return true, err
	}
	s.plan = plan
	s.lastKey = key
	return true, nil
}

// render runs one pass. A panic anywhere below is reported and turned into
// an error so the surface survives to the next pass.
func (s *Surface) render(raw []byte) (plan *layout.Plan, err error) {
	fam := s.opts.Family.String()
	start := time.Now()
	defer errors.RecoverWithCallback("surface.Render", func(r any) {
		metrics.Renders.WithLabelValues(fam, "panic").Inc()
		plan, err = nil, errors.New("surface.Render", errors.KindPanic, s.group, fmt.Errorf("panic: %v", r))
	})

	lctx := layout.Context{
		Family:      s.opts.Family,
		Size:        s.opts.Size,
		Theme:       theme.For(s.opts.Dark),
		MaxChildren: s.opts.MaxChildren,
		Images:      s.opts.Images,
	}
	if s.opts.Now != nil {
		lctx.Now = s.opts.Now()
	}
	plan = layout.ResolveRaw(raw, lctx)
	for _, tr := range plan.Truncations {
		metrics.Truncations.WithLabelValues(tr.Kind.String()).Add(float64(tr.Requested - tr.Rendered))
	}
	if s.backend != nil {
		if err := s.backend.Draw(plan); err != nil {
			metrics.Renders.WithLabelValues(fam, "failed").Inc()
			errors.Report(errors.New("surface.Draw", errors.KindRender, s.group, err))
			return nil, err
		}
	}
	metrics.Renders.WithLabelValues(fam, "ok").Inc()
	metrics.RenderDuration.WithLabelValues(fam).Observe(time.Since(start).Seconds())
	log.Debug().Str("group", s.group).Str("family", fam).Str("surface", s.id).
		Str("resolved", plan.Resolved.String()).Msg("rendered")
	return plan, nil
}

// Attach registers s with h so host reloads reach it. It returns the
// unregister function.
func Attach(h *host.Host, s *Surface) func() {
	return h.Registry().Register(s.group, s)
}
