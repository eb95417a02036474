package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/errors"
)

func TestParseInvalidTopLevel(t *testing.T) {
	for _, raw := range []string{``, `[]`, `"text"`, `42`, `{"small":`} {
		_, err := Parse([]byte(raw))
		require.Error(t, err, raw)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig, raw)
	}
}

func TestParseVersionDefault(t *testing.T) {
	cfg, err := Parse([]byte(`{"small":{"type":"text","content":"hi"}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)

	cfg, err = Parse([]byte(`{"version":3}`))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Version)
}

func TestRootFallback(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"small": {"type":"text","content":"s"},
		"large": {"type":"text","content":"l"}
	}`))
	require.NoError(t, err)

	tests := []struct {
		req  Family
		want Family
	}{
		{Small, Small},
		{Medium, Large},
		{Large, Large},
	}
	for _, tt := range tests {
		_, got, ok := cfg.Root(tt.req)
		require.True(t, ok)
		assert.Equal(t, tt.want, got, tt.req.String())
	}

	cfg, err = Parse([]byte(`{"medium":{"type":"spacer"}}`))
	require.NoError(t, err)
	_, got, ok := cfg.Root(Small)
	require.True(t, ok)
	assert.Equal(t, Medium, got)

	cfg, err = Parse([]byte(`{"small":null,"medium":5}`))
	require.NoError(t, err)
	_, _, ok = cfg.Root(Large)
	assert.False(t, ok)
}

func TestUnknownTypeDegrades(t *testing.T) {
	cfg, err := Parse([]byte(`{"small":{"type":"vstack","children":[
		{"type":"hologram","padding":4},
		{"type":"text","content":"ok"},
		{"type":"text","content":7}
	]}}`))
	require.NoError(t, err)

	root, _, _ := cfg.Root(Small)
	stack, ok := root.(*VStack)
	require.True(t, ok)
	require.Len(t, stack.Children, 3)

	u, ok := stack.Children[0].(*Unknown)
	require.True(t, ok)
	assert.Equal(t, "hologram", u.TypeName)
	assert.Equal(t, Uniform(4), u.Insets())

	txt, ok := stack.Children[1].(*Text)
	require.True(t, ok)
	assert.Equal(t, "ok", txt.Content)

	bad, ok := stack.Children[2].(*Unknown)
	require.True(t, ok)
	assert.Equal(t, "text", bad.TypeName)
	assert.Error(t, bad.Err)
}

func TestStyleFlattened(t *testing.T) {
	e := Decode([]byte(`{
		"type":"text","content":"x",
		"padding":{"top":1,"leading":2},
		"background":{"gradientType":"linear","colors":["#000","#fff"],"direction":"leadingToTrailing"},
		"cornerRadius":8,"opacity":1.5,"flex":2,
		"frame":{"width":40,"maxWidth":"infinity"},
		"border":{"color":{"light":"#111","dark":"#eee"}},
		"shadow":{}
	}`))
	txt, ok := e.(*Text)
	require.True(t, ok)

	assert.Equal(t, Padding{Top: 1, Leading: 2}, txt.Insets())
	require.NotNil(t, txt.Background.Gradient)
	assert.Equal(t, LeadingToTrailing, txt.Background.Gradient.Direction)
	assert.Equal(t, []string{"#000", "#fff"}, txt.Background.Gradient.Colors)
	assert.Equal(t, 8.0, txt.Radius())
	assert.Equal(t, 1.0, txt.Alpha())
	assert.Equal(t, 2.0, txt.FlexWeight())
	assert.Equal(t, 40.0, *txt.Frame.Width)
	assert.True(t, txt.Frame.MaxWidth.Infinite)
	assert.Equal(t, 1.0, txt.Border.LineWidth())
	assert.True(t, txt.Border.Color.IsAdaptive())
	assert.Equal(t, "#eee", txt.Border.Color.Pick(true))

	r, x, y := txt.Shadow.Params()
	assert.Equal(t, [3]float64{4, 0, 2}, [3]float64{r, x, y})
}

func TestBackgroundForms(t *testing.T) {
	var b Background
	require.NoError(t, b.UnmarshalJSON([]byte(`"systemBackground"`)))
	assert.Equal(t, "systemBackground", b.Color.Literal)

	b = Background{}
	require.NoError(t, b.UnmarshalJSON([]byte(`{"light":"#fff","dark":"#000"}`)))
	assert.Equal(t, "#000", b.Color.Pick(true))
	assert.Nil(t, b.Gradient)
}

func TestSpacerHasNoStyle(t *testing.T) {
	e := Decode([]byte(`{"type":"spacer","minLength":6}`))
	sp, ok := e.(*Spacer)
	require.True(t, ok)
	assert.Nil(t, sp.Base())
	assert.Equal(t, 1.0, StyleOf(sp).Alpha())
	assert.Equal(t, 6.0, *sp.MinLength)
}

func TestGridColumns(t *testing.T) {
	g := Decode([]byte(`{"type":"grid","columns":0}`)).(*Grid)
	assert.Equal(t, 1, g.ColumnCount())
	g = Decode([]byte(`{"type":"grid"}`)).(*Grid)
	assert.Equal(t, 2, g.ColumnCount())
}

func TestWalkAndInteractive(t *testing.T) {
	e := Decode([]byte(`{"type":"vstack","children":[
		{"type":"button","label":"Go","action":"go","payload":"1"},
		{"type":"link","action":"open","children":[{"type":"label","text":"L","action":"lab"}]}
	]}`))
	var actions []string
	Walk(e, func(n Element) bool {
		if in, ok := n.(Interactive); ok {
			a, _ := in.ActionRef()
			actions = append(actions, a)
		}
		return true
	})
	assert.Equal(t, []string{"go", "open", "lab"}, actions)
}

func TestDecodeYAML(t *testing.T) {
	src := []byte(`
version: 2
small:
  type: vstack
  spacing: 4
  children:
    - type: text
      content: Hello
    - type: gauge
      value: 0.4
      tint: {light: "#000", dark: "#fff"}
`)
	raw, err := DecodeYAML(src)
	require.NoError(t, err)

	cfg, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Version)
	root, _, ok := cfg.Root(Small)
	require.True(t, ok)
	stack := root.(*VStack)
	require.Len(t, stack.Children, 2)
	assert.Equal(t, 0.4, stack.Children[1].(*Gauge).Value)

	_, err = DecodeYAML([]byte("- a\n- b\n"))
	assert.Error(t, err)
}

func TestCompactJSON(t *testing.T) {
	out, err := CompactJSON([]byte(`{"b":null,"a":{"x":null,"y":[null,1.50]}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"y":[null,1.50]}}`, string(out))
	assert.Equal(t, `{"a":{"y":[null,1.50]}}`, string(out))
}

func TestKindRoundTrip(t *testing.T) {
	for k := KindVStack; k <= KindCanvas; k++ {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindUnknown, ParseKind("unknown"))
	assert.Equal(t, KindUnknown, ParseKind(""))
}

func TestListItemState(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		item         ListItem
		on, checkbox bool
	}{
		{ListItem{Text: "plain"}, false, false},
		{ListItem{Checked: &yes}, true, true},
		{ListItem{Checked: &no}, false, true},
		{ListItem{IsOn: &yes}, true, true},
		{ListItem{Checked: &no, IsOn: &yes}, true, true},
	}
	for _, tt := range tests {
		on, checkbox := tt.item.State()
		assert.Equal(t, tt.on, on)
		assert.Equal(t, tt.checkbox, checkbox)
	}
}
