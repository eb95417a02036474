package surface

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/host"
	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/store"
	"github.com/go-drift/widgetkit/pkg/theme"
)

const group = "group.com.example.surface"

type recorder struct{ plans []*layout.Plan }

func (r *recorder) Draw(p *layout.Plan) error {
	r.plans = append(r.plans, p)
	return nil
}

func TestRefreshDirtyCheck(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	rec := &recorder{}
	s := New(st, group, rec, Options{Family: element.Medium})
	assert.NotEmpty(t, s.ID())

	ran, err := s.Refresh(ctx, false)
	require.NoError(t, err)
	assert.True(t, ran)
	require.Len(t, rec.plans, 1)
	assert.Equal(t, layout.MessageNoConfig, rec.plans[0].Placeholder)

	ran, _ = s.Refresh(ctx, false)
	assert.False(t, ran, "nothing changed")

	require.NoError(t, st.Set(ctx, group, actions.ConfigKey, `{"small":{"type":"text","content":"hi"}}`))
	ran, _ = s.Refresh(ctx, false)
	assert.True(t, ran)
	assert.Equal(t, element.Small, s.Plan().Resolved)

	// Same bytes, new nonce: still dirty.
	require.NoError(t, st.Update(ctx, group, func(v store.Values) error {
		actions.BumpNonce(v)
		return nil
	}))
	ran, _ = s.Refresh(ctx, false)
	assert.True(t, ran)

	ran, _ = s.Refresh(ctx, true)
	assert.True(t, ran, "forced")
	assert.Len(t, rec.plans, 4)
}

func TestSetDarkMarksDirty(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := New(store.NewMemory(), group, rec, Options{})
	s.Refresh(ctx, false)
	s.SetDark(true)
	ran, _ := s.Refresh(ctx, false)
	assert.True(t, ran)
	assert.Equal(t, theme.DarkColorScheme().SystemBackground, rec.plans[1].Theme.ColorScheme.SystemBackground)
}

func TestRenderSurvivesPanicAndBackendError(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	boom := New(st, group, BackendFunc(func(*layout.Plan) error { panic("backend bug") }), Options{})
	ran, err := boom.Refresh(ctx, false)
	assert.True(t, ran)
	require.Error(t, err)
	assert.Nil(t, boom.Plan())

	failing := New(st, group, BackendFunc(func(*layout.Plan) error { return fmt.Errorf("disk full") }), Options{})
	_, err = failing.Refresh(ctx, false)
	require.Error(t, err)

	// A failed pass leaves the surface dirty so the next one retries.
	ran, _ = failing.Refresh(ctx, false)
	assert.True(t, ran)
}

func TestAttachReceivesHostReloads(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	h := host.New(st, host.Options{})
	rec := &recorder{}
	s := New(st, group, rec, Options{Family: element.Small})
	detach := Attach(h, s)

	_, err := h.SetConfig(ctx, group, []byte(`{"small":{"type":"list","items":[{"text":"a","checked":false,"action":"a"}]}}`), false)
	require.NoError(t, err)
	require.Len(t, rec.plans, 1)

	_, err = h.Tap(ctx, group, actions.Event{Action: "a"})
	require.NoError(t, err)
	require.Len(t, rec.plans, 2)
	row := rec.plans[1].Root.Children[0]
	require.NotNil(t, row.Checked)
	assert.True(t, *row.Checked)

	detach()
	h.Reload(ctx, group)
	assert.Len(t, rec.plans, 2)
}
