package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/layout"
)

func TestFinders_TextAndAction(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	eggs := tester.Find(ByText("Eggs"))
	require.Equal(t, 1, eggs.Count())
	assert.Equal(t, "eggs", eggs.First().Action)
	assert.Equal(t, "12", eggs.First().Payload)
	assert.Nil(t, eggs.First().Checked)

	milk := tester.Find(ByTextContaining("Milk"))
	require.True(t, milk.Exists())
	require.NotNil(t, milk.First().Checked)
	assert.False(t, *milk.First().Checked)

	assert.Same(t, milk.First(), tester.Find(ByAction("milk")).First())
	assert.False(t, tester.Find(ByText("Bread")).Exists())
	assert.Nil(t, tester.Find(ByText("Bread")).FirstOrNil())
}

func TestFinders_DescendantAndAncestor(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	rows := tester.Find(Descendant(ByKind(element.KindList), ByRole(layout.RoleListRow)))
	assert.Equal(t, 2, rows.Count())
	assert.Equal(t, "Eggs", Text(rows.At(1)))

	lists := tester.Find(Ancestor(ByText("Eggs"), ByKind(element.KindList)))
	assert.Equal(t, 1, lists.Count())

	// A node is not its own ancestor.
	assert.False(t, tester.Find(Ancestor(ByText("Eggs"), ByText("Eggs"))).Exists())
}

func TestFinders_PanicsWithDescription(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	assert.PanicsWithValue(t, `Finder found no nodes: ByText("Bread")`, func() {
		tester.Find(ByText("Bread")).First()
	})
	assert.Panics(t, func() { tester.Find(ByAction("milk")).At(3) })
}

func TestFinders_BeforePump(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	r := tester.Find(ByPredicate(func(*layout.Node) bool { return true }))
	assert.False(t, r.Exists())
	assert.Empty(t, r.All())
}
