// Package host is the owning application's side of a widget group: it
// writes configs, records taps, drains the pending-action queue and asks
// registered render surfaces to reload.
package host

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/metrics"
	"github.com/go-drift/widgetkit/pkg/store"
)

// ImagePreprocessor rewrites remote image nodes in a decoded config so they
// point at local files. It returns the number of nodes it rewrote.
type ImagePreprocessor interface {
	Preprocess(ctx context.Context, doc any) int
}

// Options configures a Host.
type Options struct {
	// Images preprocesses configs before they are persisted. Optional.
	Images ImagePreprocessor
	// MinReloadInterval coalesces reloads closer together than this.
	MinReloadInterval time.Duration
	// DedupWindow is the action de-duplication window.
	DedupWindow time.Duration
}

// Host coordinates one store with its registered surfaces.
type Host struct {
	store      store.Store
	images     ImagePreprocessor
	registry   *Registry
	dispatcher *actions.Dispatcher
	reloads    *throttle
}

// New returns a host over s.
func New(s store.Store, opts Options) *Host {
	h := &Host{
		store:      s,
		images:     opts.Images,
		registry:   NewRegistry(),
		dispatcher: actions.NewDispatcher(opts.DedupWindow),
	}
	h.reloads = newThrottle(opts.MinReloadInterval, h.fanOut)
	return h
}

// Store returns the underlying store.
func (h *Host) Store() store.Store { return h.store }

// Registry returns the surface registry.
func (h *Host) Registry() *Registry { return h.registry }

// Dispatcher returns the in-process action dispatcher.
func (h *Host) Dispatcher() *actions.Dispatcher { return h.dispatcher }

// Close cancels pending deferred reloads.
func (h *Host) Close() { h.reloads.stop() }

var errUnchanged = stderrors.New("config unchanged")

// SetConfig persists a serialized WidgetConfig. Nulls are stripped and
// remote images preprocessed first; when the result matches what is
// already stored nothing is written. Otherwise the nonce is bumped and,
// unless skipReload is set, every surface of the group is reloaded.
func (h *Host) SetConfig(ctx context.Context, group string, raw []byte, skipReload bool) (changed bool, err error) {
	compact, err := h.prepare(ctx, raw)
	if err != nil {
		metrics.ConfigWrites.WithLabelValues("failed").Inc()
		return false, errors.New("host.SetConfig", errors.KindParsing, group, err)
	}

	err = h.store.Update(ctx, group, func(v store.Values) error {
		if v[actions.ConfigKey] == string(compact) {
			return errUnchanged
		}
		v[actions.ConfigKey] = string(compact)
		actions.BumpNonce(v)
		return nil
	})
	switch {
	case stderrors.Is(err, errUnchanged):
		metrics.ConfigWrites.WithLabelValues("unchanged").Inc()
		log.Debug().Str("group", group).Str("hash", Hash(compact)).Msg("config unchanged, write skipped")
		return false, nil
	case err != nil:
		metrics.ConfigWrites.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Str("group", group).Msg("config write failed")
		return false, err
	}
	metrics.ConfigWrites.WithLabelValues("written").Inc()
	log.Debug().Str("group", group).Str("hash", Hash(compact)).Msg("config written")

	if !skipReload {
		h.Reload(ctx, group)
	}
	return true, nil
}

func (h *Host) prepare(ctx context.Context, raw []byte) ([]byte, error) {
	doc, err := element.DecodeRaw(raw)
	if err != nil {
		return nil, &errors.ParseError{Source: "config", DataType: "WidgetConfig", Got: string(raw), Err: errors.ErrInvalidConfig}
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, &errors.ParseError{Source: "config", DataType: "WidgetConfig", Got: doc, Err: errors.ErrInvalidConfig}
	}
	doc = element.StripNulls(doc)
	if h.images != nil {
		if n := h.images.Preprocess(ctx, doc); n > 0 {
			log.Debug().Int("images", n).Msg("remote images localized")
		}
	}
	return json.Marshal(doc)
}

// Snapshot is what a surface needs to decide whether to redraw.
type Snapshot struct {
	Raw   []byte
	Nonce uint64
}

// Key combines the content hash with the nonce. A surface is dirty when
// its key differs from the last rendered one, even if the bytes match.
func (s Snapshot) Key() string {
	return Hash(s.Raw) + ":" + strconv.FormatUint(s.Nonce, 10)
}

// Config parses the snapshot. A missing config yields (nil, nil).
func (s Snapshot) Config() (*element.Config, error) {
	if len(s.Raw) == 0 {
		return nil, nil
	}
	return element.Parse(s.Raw)
}

// Load reads the group's config and nonce from s. A missing config is an
// empty snapshot, not an error.
func Load(ctx context.Context, s store.Store, group string) (Snapshot, error) {
	var snap Snapshot
	raw, err := s.Get(ctx, group, actions.ConfigKey)
	switch {
	case errors.Is(err, errors.ErrNotFound):
	case err != nil:
		return snap, err
	default:
		snap.Raw = []byte(raw)
	}
	nonce, err := s.Get(ctx, group, actions.NonceKey)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return snap, err
	}
	snap.Nonce = actions.Nonce(store.Values{actions.NonceKey: nonce})
	return snap, nil
}

// GetConfig returns the stored snapshot for group.
func (h *Host) GetConfig(ctx context.Context, group string) (Snapshot, error) {
	return Load(ctx, h.store, group)
}

// Tap records a tap from a surface: matching checkboxes flip in the stored
// config (bumping the nonce), the event is queued, and in-process
// listeners receive it immediately. A toggling tap reloads the group.
func (h *Host) Tap(ctx context.Context, group string, ev actions.Event) (toggled bool, err error) {
	if ev.Action == "" {
		return false, errors.New("host.Tap", errors.KindAction, group, errors.ErrEmptyAction)
	}
	if ev.ID == "" {
		ev = actions.NewEvent(ev.Action, ev.Payload)
	}
	err = h.store.Update(ctx, group, func(v store.Values) error {
		toggled, err = actions.Apply(v, ev)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("group", group).Str("action", ev.Action).Msg("tap not recorded")
		return false, err
	}
	metrics.Taps.WithLabelValues(strconv.FormatBool(toggled)).Inc()
	log.Info().Str("group", group).Str("action", ev.Action).Bool("toggled", toggled).Msg("tap")

	if toggled {
		h.Reload(ctx, group)
	}
	ev.Source = actions.SourcePush
	if !h.dispatcher.Deliver(ev) {
		metrics.DuplicateActions.Inc()
	}
	return toggled, nil
}

// Drain empties the group's pending-action queue and returns its contents.
func (h *Host) Drain(ctx context.Context, group string) ([]actions.Event, error) {
	events, err := actions.Drain(ctx, h.store, group)
	if err != nil {
		return nil, err
	}
	metrics.QueueDepth.WithLabelValues(group).Set(float64(len(events)))
	return events, nil
}

// Reload asks every registered surface of group to reload. Calls closer
// together than the configured minimum interval are coalesced into one
// deferred reload.
func (h *Host) Reload(ctx context.Context, group string) {
	h.reloads.request(ctx, group)
}

// Hash returns a short content hash of a serialized config.
func Hash(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}
