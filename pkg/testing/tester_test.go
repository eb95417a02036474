package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/layout"
)

func TestWidgetTester_NoConfigPlaceholder(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	assert.Nil(t, tester.Plan())

	require.NoError(t, tester.Pump())
	plan := tester.Plan()
	require.NotNil(t, plan)
	assert.Equal(t, layout.MessageNoConfig, plan.Placeholder)
	assert.True(t, tester.Find(ByRole(layout.RolePlaceholder)).Exists())
	assert.Equal(t, 1, tester.Frames())
}

func TestWidgetTester_PumpConfig(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	plan := tester.Plan()
	require.NotNil(t, plan)
	assert.Empty(t, plan.Placeholder)
	assert.Equal(t, layout.FamilySize(element.Small), plan.Size)
	assert.Equal(t, tester.Clock().Now(), plan.Now)
	assert.Equal(t, 1, tester.Find(ByKind(element.KindList)).Count())
	assert.Equal(t, 2, tester.Find(ByRole(layout.RoleListRow)).Count())
}

func TestWidgetTester_SetFamily(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))

	tester.SetFamily(element.Medium)
	require.NoError(t, tester.Pump())
	plan := tester.Plan()
	require.NotNil(t, plan)
	assert.Equal(t, element.Medium, plan.Family)
	assert.Equal(t, layout.FamilySize(element.Medium), plan.Size)
}

func TestWidgetTester_SetDark(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))
	assert.False(t, tester.Plan().Theme.Dark())

	tester.SetDark(true)
	require.NoError(t, tester.Pump())
	assert.True(t, tester.Plan().Theme.Dark())
}

func TestWidgetTester_ReloadOnlyWhenChanged(t *testing.T) {
	tester := NewWidgetTesterWithT(t)
	require.NoError(t, tester.PumpConfig([]byte(groceries)))
	frames := tester.Frames()

	// Rewriting the same tree is not a change, so nothing reloads.
	require.NoError(t, tester.PumpConfig([]byte(groceries)))
	assert.Equal(t, frames+1, tester.Frames(), "only the forced pump draws")
}
