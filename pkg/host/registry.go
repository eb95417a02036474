package host

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/metrics"
	"github.com/go-drift/widgetkit/pkg/store"
)

// Reloader is a render surface instance that can be asked to reload.
type Reloader interface {
	ID() string
	Reload(ctx context.Context) error
}

// Registry tracks active surfaces per group.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[string]Reloader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]map[string]Reloader)}
}

// Register adds r under group and returns a function that removes it.
func (r *Registry) Register(group string, s Reloader) (unregister func()) {
	group = store.SanitizeGroup(group)
	r.mu.Lock()
	m, ok := r.groups[group]
	if !ok {
		m = make(map[string]Reloader)
		r.groups[group] = m
	}
	if _, dup := m[s.ID()]; !dup {
		metrics.ActiveSurfaces.Inc()
	}
	m[s.ID()] = s
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if m, ok := r.groups[group]; ok && m[s.ID()] == s {
				delete(m, s.ID())
				metrics.ActiveSurfaces.Dec()
				if len(m) == 0 {
					delete(r.groups, group)
				}
			}
		})
	}
}

// Surfaces returns the surfaces registered for group, ordered by ID.
func (r *Registry) Surfaces(group string) []Reloader {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.groups[store.SanitizeGroup(group)]
	out := make([]Reloader, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the total number of registered surfaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, m := range r.groups {
		n += len(m)
	}
	return n
}

// fanOut reloads every surface of group concurrently. A failing or
// panicking surface is logged and counted; its siblings still reload.
func (h *Host) fanOut(ctx context.Context, group string) {
	surfaces := h.registry.Surfaces(group)
	if len(surfaces) == 0 {
		return
	}
	var g errgroup.Group
	for _, s := range surfaces {
		g.Go(func() error {
			defer errors.Recover("host.Reload")
			if err := s.Reload(ctx); err != nil {
				metrics.Reloads.WithLabelValues("failed").Inc()
				log.Warn().Err(err).Str("group", group).Str("surface", s.ID()).Msg("surface reload failed")
				return nil
			}
			metrics.Reloads.WithLabelValues("ok").Inc()
			return nil
		})
	}
	g.Wait()
}

// throttle runs fn per group at most once per interval. Requests inside
// the interval collapse into one deferred run at the end of it.
type throttle struct {
	interval time.Duration
	fn       func(ctx context.Context, group string)
	now      func() time.Time

	mu      sync.Mutex
	last    map[string]time.Time
	pending map[string]*time.Timer
	stopped bool
}

func newThrottle(interval time.Duration, fn func(context.Context, string)) *throttle {
	return &throttle{
		interval: interval,
		fn:       fn,
		now:      time.Now,
		last:     make(map[string]time.Time),
		pending:  make(map[string]*time.Timer),
	}
}

func (t *throttle) request(ctx context.Context, group string) {
	group = store.SanitizeGroup(group)
	if t.interval <= 0 {
		t.fn(ctx, group)
		return
	}
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	now := t.now()
	last, seen := t.last[group]
	if !seen || now.Sub(last) >= t.interval {
		t.last[group] = now
		t.mu.Unlock()
		t.fn(ctx, group)
		return
	}
	metrics.Reloads.WithLabelValues("deferred").Inc()
	if _, ok := t.pending[group]; ok {
		t.mu.Unlock()
		return
	}
	wait := t.interval - now.Sub(last)
	log.Debug().Str("group", group).Dur("in", wait).Msg("reload deferred")
	t.pending[group] = time.AfterFunc(wait, func() {
		t.mu.Lock()
		delete(t.pending, group)
		if t.stopped {
			t.mu.Unlock()
			return
		}
		t.last[group] = t.now()
		t.mu.Unlock()
		t.fn(context.Background(), group)
	})
	t.mu.Unlock()
}

func (t *throttle) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	for g, timer := range t.pending {
		timer.Stop()
		delete(t.pending, g)
	}
}
