package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/rendering"
)

func TestTap_TogglesAndQueues(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	var pushed []actions.Event
	sub := tester.Host().Dispatcher().Subscribe(func(ev actions.Event) { pushed = append(pushed, ev) })
	defer sub.Cancel()

	require.NoError(t, tester.Tap(ByAction("milk")))

	// The toggle reloads the surface without an explicit pump.
	milk := tester.Find(ByAction("milk")).First()
	require.NotNil(t, milk.Checked)
	assert.True(t, *milk.Checked)

	require.Len(t, pushed, 1)
	assert.Equal(t, "milk", pushed[0].Action)

	events, err := tester.Drain()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "milk", events[0].Action)
}

func TestTap_PlainActionKeepsPayload(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	require.NoError(t, tester.Tap(ByText("Eggs")))
	events, err := tester.Drain()
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "eggs", events[0].Action)
	assert.Equal(t, "12", events[0].Payload)
}

func TestTap_LinkOpensURL(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(link)))

	require.NoError(t, tester.Tap(ByText("Open cart")))
	assert.Equal(t, []string{"https://example.com/cart"}, tester.Opened())

	events, err := tester.Drain()
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.True(t, tester.Find(ByKind(element.KindLink)).Exists())
}

func TestTap_Misses(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	assert.Error(t, tester.TapAt(rendering.Offset{X: 1, Y: 1}), "nothing pumped")

	require.NoError(t, tester.PumpConfig([]byte(groceries)))
	err := tester.Tap(ByText("Bread"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `ByText("Bread")`)

	assert.Error(t, tester.TapAt(rendering.Offset{X: -10, Y: -10}))
}
