// Package actions implements the tap protocol shared by render surfaces and
// the owning application: the persisted pending-action queue, in-place
// toggle mutation of the persisted tree, the version nonce, and the
// de-duplicating push dispatcher.
//
// Surfaces and the application usually live in different processes, so
// everything here works on store.Values inside a store.Update critical
// section. Delivery is at-least-once; consumers de-duplicate with a
// Deduper.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/store"
)

// Persisted keys within a group.
const (
	ConfigKey = "__widget_config__"
	QueueKey  = "__widget_pending_actions__"
	NonceKey  = "__widget_nonce__"
)

// Source tells how an event reached the consumer.
type Source int

const (
	SourceQueue Source = iota
	SourcePush
)

func (s Source) String() string {
	if s == SourcePush {
		return "push"
	}
	return "queue"
}

// Event is one tap on an interactive leaf.
type Event struct {
	// ID is assigned locally and never persisted.
	ID      string
	Action  string
	Payload string
	Source  Source
	At      time.Time
}

// NewEvent returns an event stamped with a fresh ID and the current time.
func NewEvent(action, payload string) Event {
	return Event{ID: uuid.NewString(), Action: action, Payload: payload, At: time.Now()}
}

// Key is the de-duplication key: action and payload together.
func (e Event) Key() string { return e.Action + "::" + e.Payload }

type wireEvent struct {
	Action  string `json:"action"`
	Payload string `json:"payload,omitempty"`
}

// DecodeQueue parses a persisted queue. Entries may be bare action strings
// or {action, payload} objects; entries without an action are skipped.
// An empty or unparseable queue decodes to nil.
func DecodeQueue(raw string) []Event {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn().Err(err).Msg("discarding unparseable action queue")
		return nil
	}
	now := time.Now()
	out := make([]Event, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		var ev Event
		switch {
		case len(item) > 0 && item[0] == '"':
			if json.Unmarshal(item, &ev.Action) != nil {
				continue
			}
		case len(item) > 0 && item[0] == '{':
			var obj map[string]any
			if json.Unmarshal(item, &obj) != nil {
				continue
			}
			ev.Action, _ = obj["action"].(string)
			ev.Payload, _ = obj["payload"].(string)
		default:
			log.Warn().RawJSON("entry", item).Msg("skipping malformed queue entry")
			continue
		}
		if ev.Action == "" {
			continue
		}
		ev.ID = uuid.NewString()
		ev.At = now
		out = append(out, ev)
	}
	return out
}

// EncodeQueue serializes events. Events without a payload are written as
// bare strings so older consumers can still read them.
func EncodeQueue(events []Event) string {
	items := make([]any, 0, len(events))
	for _, ev := range events {
		if ev.Payload == "" {
			items = append(items, ev.Action)
		} else {
			items = append(items, wireEvent{Action: ev.Action, Payload: ev.Payload})
		}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

// Append adds ev to the queue held in v.
func Append(v store.Values, ev Event) {
	q := DecodeQueue(v[QueueKey])
	v[QueueKey] = EncodeQueue(append(q, ev))
}

// Take returns the queue held in v and replaces it with an empty one.
func Take(v store.Values) []Event {
	q := DecodeQueue(v[QueueKey])
	v[QueueKey] = "[]"
	return q
}

// Nonce returns the version token stored in v, or 0.
func Nonce(v store.Values) uint64 {
	n, _ := strconv.ParseUint(strings.TrimSpace(v[NonceKey]), 10, 64)
	return n
}

// BumpNonce increments the version token in v and returns the new value.
func BumpNonce(v store.Values) uint64 {
	n := Nonce(v) + 1
	v[NonceKey] = strconv.FormatUint(n, 10)
	return n
}

// Apply records a tap inside an Update critical section: it flips any
// matching checkbox in the persisted config (bumping the nonce when it
// does) and appends the event to the queue.
func Apply(v store.Values, ev Event) (toggled bool, err error) {
	if ev.Action == "" {
		return false, errors.ErrEmptyAction
	}
	if raw, ok := v[ConfigKey]; ok && raw != "" {
		updated, changed, err := Toggle([]byte(raw), ev.Action)
		if err != nil {
			log.Warn().Err(err).Str("action", ev.Action).Msg("toggle skipped: config does not parse")
		} else if changed {
			v[ConfigKey] = string(updated)
			BumpNonce(v)
			toggled = true
		}
	}
	Append(v, ev)
	return toggled, nil
}

// Enqueue appends ev to the group's queue.
func Enqueue(ctx context.Context, s store.Store, group string, ev Event) error {
	if ev.Action == "" {
		return errors.New("actions.Enqueue", errors.KindAction, group, errors.ErrEmptyAction)
	}
	return s.Update(ctx, group, func(v store.Values) error {
		Append(v, ev)
		return nil
	})
}

// Drain reads the whole queue and replaces it with an empty one in the
// same critical section.
func Drain(ctx context.Context, s store.Store, group string) ([]Event, error) {
	var out []Event
	err := s.Update(ctx, group, func(v store.Values) error {
		out = Take(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
