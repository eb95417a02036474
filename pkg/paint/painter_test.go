package paint

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/layout"
	"github.com/go-drift/widgetkit/pkg/rendering"
	"github.com/go-drift/widgetkit/pkg/theme"
)

func record(t *testing.T, raw string, dark bool) (*layout.Plan, []rendering.DisplayOp) {
	t.Helper()
	plan := layout.ResolveRaw([]byte(raw), layout.Context{Family: element.Small, Theme: theme.For(dark)})
	rec := &rendering.PictureRecorder{}
	c := rec.BeginRecording(plan.Size)
	Render(c, plan)
	return plan, rec.EndRecording().Ops()
}

func opsOf[T rendering.DisplayOp](ops []rendering.DisplayOp) []T {
	var out []T
	for _, op := range ops {
		if v, ok := op.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestPaintClearsWithSystemBackground(t *testing.T) {
	_, ops := record(t, `{"small":{"type":"text","content":"hi"}}`, true)
	require.NotEmpty(t, ops)
	clear, ok := ops[0].(rendering.OpClear)
	require.True(t, ok)
	assert.Equal(t, theme.DarkColorScheme().SystemBackground, clear.Color)
}

func TestPaintButton(t *testing.T) {
	plan, ops := record(t, `{"small":{"type":"button","label":"Go","action":"go"}}`, false)

	rrects := opsOf[rendering.OpRRect](ops)
	require.Len(t, rrects, 1)
	assert.Equal(t, theme.LightColorScheme().Accent, rrects[0].Paint.Color)
	assert.Equal(t, 8.0, rrects[0].RRect.UniformRadius())

	texts := opsOf[rendering.OpText](ops)
	require.Len(t, texts, 1)
	assert.Equal(t, "Go", texts[0].Text)
	assert.Equal(t, rendering.ColorWhite, texts[0].Style.Color)
	run := plan.Root.Texts[0]
	assert.Greater(t, texts[0].Origin.Y, run.Rect.Top)
	assert.LessOrEqual(t, texts[0].Origin.Y, run.Rect.Bottom)
}

func TestPaintDecorationOrder(t *testing.T) {
	_, ops := record(t, `{"small":{"type":"shape","size":20,"background":"#00ff00",
		"shadow":{},"opacity":0.5,"border":{"color":"#0000ff","width":2},"clipShape":"circle"}}`, false)

	var kinds []string
	for _, op := range ops {
		switch op.(type) {
		case rendering.OpRRectShadow:
			kinds = append(kinds, "shadow")
		case rendering.OpSaveLayerAlpha:
			kinds = append(kinds, "layer")
		case rendering.OpClipRRect:
			kinds = append(kinds, "clip")
		case rendering.OpPath:
			kinds = append(kinds, "shape")
		case rendering.OpRRect:
			kinds = append(kinds, "rrect")
		}
	}
	assert.Equal(t, []string{"shadow", "layer", "rrect", "clip", "shape", "rrect"}, kinds)

	layer := opsOf[rendering.OpSaveLayerAlpha](ops)[0]
	assert.Equal(t, 0.5, layer.Alpha)

	rrects := opsOf[rendering.OpRRect](ops)
	assert.Equal(t, rendering.RGB(0, 0xff, 0), rrects[0].Paint.Color)
	assert.Equal(t, rendering.PaintStyleStroke, rrects[1].Paint.Style)
	assert.Equal(t, rendering.RGB(0, 0, 0xff), rrects[1].Paint.Color)

	shadow := opsOf[rendering.OpRRectShadow](ops)[0]
	assert.Equal(t, 4.0, shadow.Shadow.BlurRadius)
	assert.Equal(t, rendering.Offset{X: 0, Y: 2}, shadow.Shadow.Offset)

	saves := len(opsOf[rendering.OpSave](ops)) + len(opsOf[rendering.OpSaveLayerAlpha](ops))
	assert.Equal(t, saves, len(opsOf[rendering.OpRestore](ops)))
}

func TestPaintSkipsInvisibleNodes(t *testing.T) {
	_, ops := record(t, `{"small":{"type":"text","content":"ghost","opacity":0}}`, false)
	assert.Empty(t, opsOf[rendering.OpText](ops))
}

func TestPaintPlaceholder(t *testing.T) {
	_, ops := record(t, `not json`, false)
	texts := opsOf[rendering.OpText](ops)
	require.NotEmpty(t, texts)
	assert.Equal(t, layout.MessageInvalidConfig, texts[0].Text)
}

func TestPaintImageGlyphAndBitmap(t *testing.T) {
	_, ops := record(t, `{"small":{"type":"image","alt":"Zed"}}`, false)
	assert.Empty(t, opsOf[rendering.OpImage](ops))
	texts := opsOf[rendering.OpText](ops)
	require.Len(t, texts, 1)
	assert.Equal(t, "Z", texts[0].Text)

	// 1x1 red PNG.
	const px = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8DwHwAFBQIAX8jx0gAAAABJRU5ErkJggg=="
	_, ops = record(t, `{"small":{"type":"image","data":"`+px+`","size":30}}`, false)
	imgs := opsOf[rendering.OpImage](ops)
	require.Len(t, imgs, 1)
	assert.InDelta(t, 30, imgs[0].Dst.Width(), 1e-9)
}

func TestImageRect(t *testing.T) {
	box := rendering.RectFromLTWH(0, 0, 100, 50)
	wide := image.Rect(0, 0, 200, 50)

	fit := ImageRect("fit", box, wide)
	assert.InDelta(t, 100, fit.Width(), 1e-9)
	assert.InDelta(t, 25, fit.Height(), 1e-9)
	assert.InDelta(t, 12.5, fit.Top, 1e-9)

	fill := ImageRect("fill", box, wide)
	assert.InDelta(t, 200, fill.Width(), 1e-9)
	assert.InDelta(t, 50, fill.Height(), 1e-9)

	assert.Equal(t, box, ImageRect("stretch", box, wide))
	assert.Equal(t, box, ImageRect("", box, image.Rectangle{}))
}

func TestPaintTextAlignment(t *testing.T) {
	rec := &rendering.PictureRecorder{}
	c := rec.BeginRecording(rendering.Size{Width: 100, Height: 100})
	l := rendering.LayoutText("ab", rendering.TextStyle{FontSize: 10, Color: rendering.ColorBlack}, 0, 0)
	rect := rendering.RectFromLTWH(0, 0, 100, l.Size.Height)

	paintText(c, layout.TextRun{Layout: l, Rect: rect, Align: layout.TextAlignTrailing})
	paintText(c, layout.TextRun{Layout: l, Rect: rect, Align: layout.TextAlignCenter})
	texts := opsOf[rendering.OpText](rec.EndRecording().Ops())
	require.Len(t, texts, 2)
	assert.InDelta(t, 100-l.Lines[0].Width, texts[0].Origin.X, 1e-9)
	assert.InDelta(t, (100-l.Lines[0].Width)/2, texts[1].Origin.X, 1e-9)
}
