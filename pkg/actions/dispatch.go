package actions

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/widgetkit/pkg/errors"
)

// DefaultDedupWindow is how long a delivered action+payload suppresses
// repeats.
const DefaultDedupWindow = 1200 * time.Millisecond

// Deduper suppresses repeats of the same action+payload within Window.
// The zero value uses DefaultDedupWindow.
type Deduper struct {
	Window time.Duration

	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewDeduper returns a deduper with the given window. A non-positive
// window uses DefaultDedupWindow.
func NewDeduper(window time.Duration) *Deduper {
	return &Deduper{Window: window}
}

// Admit reports whether ev should be acted on. Only admitted events start
// a new window; suppressed repeats do not extend it.
func (d *Deduper) Admit(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	if d.now != nil {
		now = d.now()
	}
	window := d.Window
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if d.seen == nil {
		d.seen = make(map[string]time.Time)
	}
	key := ev.Key()
	if last, ok := d.seen[key]; ok && now.Sub(last) < window {
		return false
	}
	d.seen[key] = now
	if len(d.seen) > 256 {
		for k, t := range d.seen {
			if now.Sub(t) >= window {
				delete(d.seen, k)
			}
		}
	}
	return true
}

// Subscription is an active listener registration.
type Subscription struct {
	d        *Dispatcher
	fn       func(Event)
	canceled atomic.Bool
}

// Cancel stops delivery to this subscription.
func (s *Subscription) Cancel() {
	if s.canceled.CompareAndSwap(false, true) {
		s.d.remove(s)
	}
}

// Dispatcher fans action events out to in-process listeners. Events pass
// through the deduper first, so the same tap observed by push and by queue
// polling reaches listeners once.
type Dispatcher struct {
	Dedup *Deduper

	mu   sync.Mutex
	subs []*Subscription
}

// NewDispatcher returns a dispatcher de-duplicating over window.
func NewDispatcher(window time.Duration) *Dispatcher {
	return &Dispatcher{Dedup: NewDeduper(window)}
}

// Subscribe registers fn for every admitted event.
func (d *Dispatcher) Subscribe(fn func(Event)) *Subscription {
	sub := &Subscription{d: d, fn: fn}
	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()
	return sub
}

func (d *Dispatcher) remove(sub *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subs {
		if s == sub {
			d.subs = append(d.subs[:i], d.subs[i+1:]...)
			return
		}
	}
}

// Listeners returns the number of active subscriptions.
func (d *Dispatcher) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Deliver hands ev to every listener unless it is a repeat. A panicking
// listener is reported and does not stop the others.
func (d *Dispatcher) Deliver(ev Event) bool {
	if d.Dedup != nil && !d.Dedup.Admit(ev) {
		return false
	}
	d.mu.Lock()
	subs := make([]*Subscription, len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()

	for _, sub := range subs {
		if sub.canceled.Load() {
			continue
		}
		func() {
			defer errors.Recover("actions.Dispatcher.Deliver")
			sub.fn(ev)
		}()
	}
	return true
}
