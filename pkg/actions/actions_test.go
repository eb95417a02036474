package actions

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/store"
)

const group = "group.com.example.tasks"

const checklist = `{"version":1,"small":{"type":"vstack","children":[
	{"type":"list","items":[
		{"text":"Milk","checked":false,"action":"toggle-milk"},
		{"text":"Eggs","isOn":true,"action":"toggle-eggs"},
		{"text":"Both","checked":true,"isOn":true,"action":"toggle-both"},
		{"text":"Plain","action":"toggle-plain"}
	]},
	{"type":"toggle","label":"Wifi","isOn":false,"action":"wifi"}
]}}`

func item(t *testing.T, raw []byte, i int) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	list := doc["small"].(map[string]any)["children"].([]any)[0].(map[string]any)
	return list["items"].([]any)[i].(map[string]any)
}

func TestDecodeQueueBothShapes(t *testing.T) {
	q := DecodeQueue(`["refresh", {"action":"open","payload":"42"}, {"action":""}, 7, {"payload":"x"}, {"action":"next"}]`)
	require.Len(t, q, 3)
	assert.Equal(t, "refresh", q[0].Action)
	assert.Empty(t, q[0].Payload)
	assert.Equal(t, "open", q[1].Action)
	assert.Equal(t, "42", q[1].Payload)
	assert.Equal(t, "next", q[2].Action)
	assert.NotEmpty(t, q[0].ID)
	assert.NotEqual(t, q[0].ID, q[1].ID)

	assert.Nil(t, DecodeQueue(""))
	assert.Nil(t, DecodeQueue("not json"))
}

func TestEncodeQueue(t *testing.T) {
	got := EncodeQueue([]Event{{Action: "refresh"}, {Action: "open", Payload: "42"}})
	assert.JSONEq(t, `["refresh",{"action":"open","payload":"42"}]`, got)
	assert.Equal(t, "[]", EncodeQueue(nil))
}

func TestToggleListItems(t *testing.T) {
	tests := []struct {
		name        string
		index       int
		action      string
		wantChecked any
		wantIsOn    any
	}{
		{"checked only", 0, "toggle-milk", true, nil},
		{"isOn only", 1, "toggle-eggs", nil, false},
		{"both keys", 2, "toggle-both", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, changed, err := Toggle([]byte(checklist), tt.action)
			require.NoError(t, err)
			require.True(t, changed)
			it := item(t, out, tt.index)
			assert.Equal(t, tt.wantChecked, it["checked"])
			assert.Equal(t, tt.wantIsOn, it["isOn"])
		})
	}
}

func TestToggleNoMatch(t *testing.T) {
	for _, action := range []string{"toggle-plain", "missing", ""} {
		out, changed, err := Toggle([]byte(checklist), action)
		require.NoError(t, err)
		assert.False(t, changed, action)
		assert.Equal(t, checklist, string(out))
	}
	_, _, err := Toggle([]byte(`[1]`), "x")
	assert.Error(t, err)
}

func TestToggleElementLeftAlone(t *testing.T) {
	out, changed, err := Toggle([]byte(checklist), "wifi")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, checklist, string(out))

	v := store.Values{ConfigKey: checklist}
	toggled, err := Apply(v, NewEvent("wifi", ""))
	require.NoError(t, err)
	assert.False(t, toggled)
	assert.Equal(t, checklist, v[ConfigKey])
	assert.Equal(t, uint64(0), Nonce(v))
	assert.JSONEq(t, `["wifi"]`, v[QueueKey])
}

func TestTogglePreservesUnknownFields(t *testing.T) {
	raw := `{"small":{"type":"list","custom":{"n":12345678901234567890},"items":[{"checked":false,"action":"a"}]}}`
	out, changed, err := Toggle([]byte(raw), "a")
	require.NoError(t, err)
	require.True(t, changed)
	assert.Contains(t, string(out), `"n":12345678901234567890`)
}

func TestDoubleTapRestoresAndBumpsNonce(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Set(ctx, group, ConfigKey, checklist))

	tap := func() {
		require.NoError(t, s.Update(ctx, group, func(v store.Values) error {
			toggled, err := Apply(v, NewEvent("toggle-milk", ""))
			assert.True(t, toggled)
			return err
		}))
	}

	tap()
	raw, _ := s.Get(ctx, group, ConfigKey)
	assert.Equal(t, true, item(t, []byte(raw), 0)["checked"])
	n, _ := s.Get(ctx, group, NonceKey)
	assert.Equal(t, "1", n)

	tap()
	raw, _ = s.Get(ctx, group, ConfigKey)
	assert.Equal(t, false, item(t, []byte(raw), 0)["checked"])
	n, _ = s.Get(ctx, group, NonceKey)
	assert.Equal(t, "2", n)

	q, _ := s.Get(ctx, group, QueueKey)
	assert.JSONEq(t, `["toggle-milk","toggle-milk"]`, q)
}

func TestApplyWithoutConfigOnlyQueues(t *testing.T) {
	v := store.Values{}
	toggled, err := Apply(v, NewEvent("refresh", "p"))
	require.NoError(t, err)
	assert.False(t, toggled)
	assert.Equal(t, uint64(0), Nonce(v))
	assert.JSONEq(t, `[{"action":"refresh","payload":"p"}]`, v[QueueKey])

	_, err = Apply(v, Event{})
	assert.True(t, errors.Is(err, errors.ErrEmptyAction))
}

func TestDrainTwice(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, Enqueue(ctx, s, group, NewEvent("refresh", "")))
	require.NoError(t, Enqueue(ctx, s, group, NewEvent("open", "7")))

	first, err := Drain(ctx, s, group)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "refresh", first[0].Action)
	assert.Equal(t, "7", first[1].Payload)

	second, err := Drain(ctx, s, group)
	require.NoError(t, err)
	assert.Empty(t, second)

	raw, _ := s.Get(ctx, group, QueueKey)
	assert.Equal(t, "[]", raw)

	assert.Error(t, Enqueue(ctx, s, group, Event{}))
}

func TestDeduperWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	d := &Deduper{Window: time.Second, now: func() time.Time { return now }}

	a := Event{Action: "open", Payload: "1"}
	b := Event{Action: "open", Payload: "2"}
	assert.True(t, d.Admit(a))
	assert.False(t, d.Admit(a))
	assert.True(t, d.Admit(b))

	now = now.Add(999 * time.Millisecond)
	assert.False(t, d.Admit(a))
	now = now.Add(time.Second)
	assert.True(t, d.Admit(a))
}

func TestDeduperQueuedCopyDoesNotExtendWindow(t *testing.T) {
	start := time.Unix(1000, 0)
	now := start
	d := &Deduper{Window: DefaultDedupWindow, now: func() time.Time { return now }}
	tap := Event{Action: "toggle-milk"}

	assert.True(t, d.Admit(tap), "pushed tap")
	now = start.Add(time.Second)
	assert.False(t, d.Admit(tap), "same tap read back from the queue")
	now = start.Add(1300 * time.Millisecond)
	assert.True(t, d.Admit(tap), "second tap after the window")
	now = start.Add(2 * time.Second)
	assert.False(t, d.Admit(tap), "queued copy of the second tap")
}

func TestDispatcher(t *testing.T) {
	d := NewDispatcher(time.Hour)
	var got []string
	sub := d.Subscribe(func(ev Event) { got = append(got, ev.Action) })
	d.Subscribe(func(Event) { panic("listener bug") })
	assert.Equal(t, 2, d.Listeners())

	assert.True(t, d.Deliver(NewEvent("a", "")))
	assert.False(t, d.Deliver(NewEvent("a", "")))
	assert.True(t, d.Deliver(NewEvent("b", "")))
	assert.Equal(t, []string{"a", "b"}, got)

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 1, d.Listeners())
	d.Deliver(NewEvent("c", ""))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestQueueSharedFileStore(t *testing.T) {
	dir := t.TempDir()
	writer, err := store.NewFile(dir)
	require.NoError(t, err)
	reader, err := store.NewFile(dir)
	require.NoError(t, err)
	ctx := context.Background()

	const taps = 200
	done := make(chan struct{})
	var drained []Event
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			evs, err := Drain(ctx, reader, group)
			assert.NoError(t, err)
			drained = append(drained, evs...)
			select {
			case <-done:
				return
			default:
			}
		}
	}()
	for i := 0; i < taps; i++ {
		require.NoError(t, Enqueue(ctx, writer, group, NewEvent("tap", "")))
	}
	close(done)
	wg.Wait()

	rest, err := Drain(ctx, reader, group)
	require.NoError(t, err)
	assert.Len(t, append(drained, rest...), taps)
}
