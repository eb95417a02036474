package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/store"
)

const group = "group.com.example.host"

type fakeSurface struct {
	id    string
	err   error
	panic bool
	calls atomic.Int32
}

func (f *fakeSurface) ID() string { return f.id }

func (f *fakeSurface) Reload(context.Context) error {
	f.calls.Add(1)
	if f.panic {
		panic("surface bug")
	}
	return f.err
}

type fakeImages struct{}

func (fakeImages) Preprocess(_ context.Context, doc any) int {
	small := doc.(map[string]any)["small"].(map[string]any)
	if small["type"] == "image" {
		small["localPath"] = "/cache/x.png"
		return 1
	}
	return 0
}

func TestSetConfigStripsNullsAndSkipsUnchanged(t *testing.T) {
	ctx := context.Background()
	h := New(store.NewMemory(), Options{})
	s := &fakeSurface{id: "a"}
	h.Registry().Register(group, s)

	changed, err := h.SetConfig(ctx, group, []byte(`{"small":{"type":"text","content":"hi","color":null},"medium":null}`), false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int32(1), s.calls.Load())

	snap, err := h.GetConfig(ctx, group)
	require.NoError(t, err)
	assert.JSONEq(t, `{"small":{"type":"text","content":"hi"}}`, string(snap.Raw))
	assert.Equal(t, uint64(1), snap.Nonce)

	changed, err = h.SetConfig(ctx, group, []byte(`{"medium":null,"small":{"content":"hi","type":"text"}}`), false)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, int32(1), s.calls.Load())

	changed, err = h.SetConfig(ctx, group, []byte(`{"small":{"type":"text","content":"bye"}}`), true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, int32(1), s.calls.Load(), "skipReload")
	snap, _ = h.GetConfig(ctx, group)
	assert.Equal(t, uint64(2), snap.Nonce)
}

func TestSetConfigRejectsNonObject(t *testing.T) {
	h := New(store.NewMemory(), Options{})
	for _, raw := range []string{`[1,2]`, `nope`, ``} {
		_, err := h.SetConfig(context.Background(), group, []byte(raw), false)
		assert.True(t, errors.Is(err, errors.ErrInvalidConfig), raw)
	}
}

func TestSetConfigPreprocessesImages(t *testing.T) {
	ctx := context.Background()
	h := New(store.NewMemory(), Options{Images: fakeImages{}})
	_, err := h.SetConfig(ctx, group, []byte(`{"small":{"type":"image","url":"https://x/y.png"}}`), true)
	require.NoError(t, err)
	snap, _ := h.GetConfig(ctx, group)
	assert.Contains(t, string(snap.Raw), `"localPath":"/cache/x.png"`)
}

func TestGetConfigMissing(t *testing.T) {
	h := New(store.NewMemory(), Options{})
	snap, err := h.GetConfig(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, snap.Raw)
	cfg, err := snap.Config()
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestSnapshotKeyChangesWithNonce(t *testing.T) {
	a := Snapshot{Raw: []byte(`{}`), Nonce: 1}
	b := Snapshot{Raw: []byte(`{}`), Nonce: 2}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), Snapshot{Raw: []byte(`{}`), Nonce: 1}.Key())
}

func TestTapTogglesQueuesAndPushes(t *testing.T) {
	ctx := context.Background()
	h := New(store.NewMemory(), Options{DedupWindow: time.Hour})
	s := &fakeSurface{id: "a"}
	h.Registry().Register(group, s)
	_, err := h.SetConfig(ctx, group, []byte(`{"small":{"type":"list","items":[{"text":"x","checked":false,"action":"tick"}]}}`), true)
	require.NoError(t, err)

	var pushed []actions.Event
	h.Dispatcher().Subscribe(func(ev actions.Event) { pushed = append(pushed, ev) })

	toggled, err := h.Tap(ctx, group, actions.Event{Action: "tick"})
	require.NoError(t, err)
	assert.True(t, toggled)
	assert.Equal(t, int32(1), s.calls.Load())
	require.Len(t, pushed, 1)
	assert.Equal(t, actions.SourcePush, pushed[0].Source)
	assert.NotEmpty(t, pushed[0].ID)

	snap, _ := h.GetConfig(ctx, group)
	assert.Contains(t, string(snap.Raw), `"checked":true`)
	assert.Equal(t, uint64(2), snap.Nonce)

	events, err := h.Drain(ctx, group)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "tick", events[0].Action)

	_, err = h.Tap(ctx, group, actions.Event{})
	assert.True(t, errors.Is(err, errors.ErrEmptyAction))
}

func TestReloadFanOutSurvivesFailures(t *testing.T) {
	h := New(store.NewMemory(), Options{})
	ok := &fakeSurface{id: "ok"}
	bad := &fakeSurface{id: "bad", err: fmt.Errorf("gone")}
	boom := &fakeSurface{id: "boom", panic: true}
	other := &fakeSurface{id: "other"}
	h.Registry().Register(group, ok)
	h.Registry().Register(group, bad)
	h.Registry().Register(group, boom)
	h.Registry().Register("group.other", other)

	h.Reload(context.Background(), group)
	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), bad.calls.Load())
	assert.Equal(t, int32(1), boom.calls.Load())
	assert.Equal(t, int32(0), other.calls.Load())
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	a := &fakeSurface{id: "a"}
	unregister := r.Register("g", a)
	r.Register("g", &fakeSurface{id: "b"})
	assert.Equal(t, 2, r.Len())
	unregister()
	unregister()
	assert.Equal(t, 1, r.Len())
	require.Len(t, r.Surfaces("g"), 1)
	assert.Equal(t, "b", r.Surfaces("g")[0].ID())
}

func TestThrottleCoalesces(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	done := make(chan struct{}, 4)
	th := newThrottle(100*time.Millisecond, func(_ context.Context, g string) {
		mu.Lock()
		calls = append(calls, g)
		mu.Unlock()
		done <- struct{}{}
	})
	defer th.stop()

	ctx := context.Background()
	th.request(ctx, "g")
	th.request(ctx, "g")
	th.request(ctx, "g")
	th.request(ctx, "h")

	mu.Lock()
	assert.Equal(t, []string{"g", "h"}, calls)
	mu.Unlock()

	<-done
	<-done
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deferred reload never ran")
	}
	select {
	case <-done:
		t.Fatal("deferred reloads were not coalesced")
	case <-time.After(250 * time.Millisecond):
	}
	mu.Lock()
	assert.Equal(t, []string{"g", "h", "g"}, calls)
	mu.Unlock()
}

func TestUpdaterTick(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	h := New(st, Options{DedupWindow: time.Hour})
	s := &fakeSurface{id: "a"}
	h.Registry().Register(group, s)

	var got []actions.Event
	h.Dispatcher().Subscribe(func(ev actions.Event) { got = append(got, ev) })

	n := 0
	u, err := NewUpdater(h, group, "", func(context.Context) ([]byte, error) {
		n++
		return []byte(fmt.Sprintf(`{"small":{"type":"text","content":"%d"}}`, n)), nil
	})
	require.NoError(t, err)

	require.NoError(t, actions.Enqueue(ctx, st, group, actions.NewEvent("refresh", "")))
	require.NoError(t, u.Tick(ctx))
	require.Len(t, got, 1)
	assert.Equal(t, actions.SourceQueue, got[0].Source)
	assert.Equal(t, int32(1), s.calls.Load(), "new config reloads")

	// A second copy of the same tap inside the window is dropped.
	require.NoError(t, actions.Enqueue(ctx, st, group, actions.NewEvent("refresh", "")))
	require.NoError(t, u.Tick(ctx))
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), s.calls.Load())

	// Another process bumps the nonce: the next tick reloads.
	u.Build = nil
	require.NoError(t, st.Update(ctx, group, func(v store.Values) error {
		actions.BumpNonce(v)
		return nil
	}))
	require.NoError(t, u.Tick(ctx))
	assert.Equal(t, int32(3), s.calls.Load())
	require.NoError(t, u.Tick(ctx))
	assert.Equal(t, int32(3), s.calls.Load())

	_, err = NewUpdater(h, group, "not a schedule", nil)
	assert.Error(t, err)
}
