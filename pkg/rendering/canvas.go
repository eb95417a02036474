package rendering

import "image"

// Canvas receives drawing commands. Backends rasterize, serialize or record
// them; the painter in pkg/paint only ever talks to this interface.
type Canvas interface {
	// Save pushes the current transform and clip state.
	Save()

	// SaveLayerAlpha saves a new layer with the given opacity (0.0 to 1.0).
	// All drawing until the matching Restore() call will be composited with this opacity.
	SaveLayerAlpha(bounds Rect, alpha float64)

	// Restore pops the most recent transform and clip state.
	Restore()

	// Translate moves the origin by the given offset.
	Translate(dx, dy float64)

	// Scale scales the coordinate system by the given factors.
	Scale(sx, sy float64)

	// ClipRect restricts future drawing to the given rectangle.
	ClipRect(rect Rect)

	// ClipRRect restricts future drawing to the given rounded rectangle.
	ClipRRect(rrect RRect)

	// Clear fills the entire canvas with the given color.
	Clear(color Color)

	// DrawRect draws a rectangle with the provided paint.
	DrawRect(rect Rect, paint Paint)

	// DrawRRect draws a rounded rectangle with the provided paint.
	DrawRRect(rrect RRect, paint Paint)

	// DrawCircle draws a circle with the provided paint.
	DrawCircle(center Offset, radius float64, paint Paint)

	// DrawLine draws a line segment with the provided paint.
	DrawLine(start, end Offset, paint Paint)

	// DrawArc draws an arc of the oval. Angles are degrees clockwise from +x.
	// With useCenter the arc is closed through the center as a wedge.
	DrawArc(oval Rect, startDeg, sweepDeg float64, useCenter bool, paint Paint)

	// DrawPath draws a path with the provided paint.
	DrawPath(path *Path, paint Paint)

	// DrawText draws a single line of text. The origin is the baseline point
	// the style's anchor refers to.
	DrawText(text string, origin Offset, style TextStyle)

	// DrawImage draws an image scaled into dst.
	DrawImage(img image.Image, dst Rect)

	// DrawRRectShadow draws a shadow behind a rounded rectangle.
	DrawRRectShadow(rrect RRect, shadow BoxShadow)

	// Size returns the size of the canvas in pixels.
	Size() Size
}

// AnchorOffset returns how far left of the origin text of the given width
// starts for an anchor.
func AnchorOffset(anchor TextAnchor, width float64) float64 {
	switch anchor {
	case AnchorMiddle:
		return width / 2
	case AnchorEnd:
		return width
	default:
		return 0
	}
}
