package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/metrics"
)

// DefaultSchedule polls once a second.
const DefaultSchedule = "@every 1s"

// BuildFunc produces a fresh serialized config on each tick.
type BuildFunc func(ctx context.Context) ([]byte, error)

// Updater polls a group on a cron schedule. Each tick drains the pending
// queue into the host's dispatcher, reloads surfaces when another process
// bumped the nonce, and, when Build is set, writes a freshly built config.
type Updater struct {
	host  *Host
	group string
	cron  *cron.Cron
	// Build is optional.
	Build BuildFunc

	running atomic.Bool
	mu      sync.Mutex
	nonce   uint64
	primed  bool
}

// NewUpdater schedules ticks for group. An empty schedule uses
// DefaultSchedule.
func NewUpdater(h *Host, group, schedule string, build BuildFunc) (*Updater, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	u := &Updater{host: h, group: group, cron: cron.New(), Build: build}
	if _, err := u.cron.AddFunc(schedule, func() {
		if err := u.Tick(context.Background()); err != nil {
			log.Warn().Err(err).Str("group", group).Msg("updater tick failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("updater schedule %q: %w", schedule, err)
	}
	return u, nil
}

// Start begins scheduled ticks.
func (u *Updater) Start() { u.cron.Start() }

// Stop halts the schedule and waits for a running tick to finish.
func (u *Updater) Stop() {
	ctx := u.cron.Stop()
	<-ctx.Done()
}

// Tick runs one poll. Overlapping ticks are skipped.
func (u *Updater) Tick(ctx context.Context) error {
	if !u.running.CompareAndSwap(false, true) {
		return nil
	}
	defer u.running.Store(false)
	defer errors.Recover("host.Updater.Tick")

	events, err := u.host.Drain(ctx, u.group)
	if err != nil {
		return fmt.Errorf("drain: %w", err)
	}
	for _, ev := range events {
		ev.Source = actions.SourceQueue
		if !u.host.dispatcher.Deliver(ev) {
			metrics.DuplicateActions.Inc()
			log.Debug().Str("group", u.group).Str("action", ev.Action).Msg("duplicate action suppressed")
		}
	}

	snap, err := u.host.GetConfig(ctx, u.group)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	u.mu.Lock()
	moved := u.primed && snap.Nonce != u.nonce
	u.nonce, u.primed = snap.Nonce, true
	u.mu.Unlock()
	if moved {
		u.host.Reload(ctx, u.group)
	}

	if u.Build == nil {
		return nil
	}
	raw, err := u.Build(ctx)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	changed, err := u.host.SetConfig(ctx, u.group, raw, false)
	if err != nil {
		return err
	}
	if changed {
		if snap, err := u.host.GetConfig(ctx, u.group); err == nil {
			u.mu.Lock()
			u.nonce = snap.Nonce
			u.mu.Unlock()
		}
	}
	return nil
}
