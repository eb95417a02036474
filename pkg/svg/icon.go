// Package svg loads SVG icons and rasterizes them so they can flow through
// the image chain like any decoded bitmap.
package svg

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/go-drift/widgetkit/pkg/rendering"
)

const (
	// defaultSide is used when an icon declares no viewBox.
	defaultSide = 24
	// maxSide caps the intrinsic raster size.
	maxSide = 512
)

// Icon is a parsed SVG document. Rasterizing is serialized per icon because
// the underlying renderer keeps the target rect on the icon.
type Icon struct {
	mu      sync.Mutex
	icon    *oksvg.SvgIcon
	viewBox rendering.Rect
}

// Load parses an SVG from r. Unsupported elements are skipped.
func Load(r io.Reader) (*Icon, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("svg: %w", err)
	}
	vb := icon.ViewBox
	return &Icon{
		icon:    icon,
		viewBox: rendering.RectFromLTWH(vb.X, vb.Y, vb.W, vb.H),
	}, nil
}

// LoadBytes parses an SVG from data.
func LoadBytes(data []byte) (*Icon, error) {
	return Load(bytes.NewReader(data))
}

// LoadFile parses an SVG file.
func LoadFile(path string) (*Icon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("svg: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Sniff reports whether data looks like an SVG document.
func Sniff(data []byte) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	head = bytes.TrimSpace(head)
	if !bytes.HasPrefix(head, []byte("<")) {
		return false
	}
	return bytes.Contains(head, []byte("<svg"))
}

// ViewBox returns the icon's viewBox.
func (i *Icon) ViewBox() rendering.Rect { return i.viewBox }

// IntrinsicSize is the viewBox size, defaulted and capped for rasterizing.
func (i *Icon) IntrinsicSize() (w, h int) {
	vw, vh := i.viewBox.Width(), i.viewBox.Height()
	if vw <= 0 || vh <= 0 {
		return defaultSide, defaultSide
	}
	if long := math.Max(vw, vh); long > maxSide {
		vw, vh = vw*maxSide/long, vh*maxSide/long
	}
	return max(1, int(math.Round(vw))), max(1, int(math.Round(vh)))
}

// Rasterize renders the icon into a w×h image, scaled to fit and centered.
func (i *Icon) Rasterize(w, h int) *image.RGBA {
	w, h = max(w, 1), max(h, 1)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	vw, vh := i.viewBox.Width(), i.viewBox.Height()
	if vw <= 0 || vh <= 0 {
		vw, vh = float64(w), float64(h)
	}
	s := math.Min(float64(w)/vw, float64(h)/vh)
	tw, th := vw*s, vh*s

	i.mu.Lock()
	defer i.mu.Unlock()
	i.icon.SetTarget((float64(w)-tw)/2, (float64(h)-th)/2, tw, th)
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	i.icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img
}

// Image rasterizes the icon at its intrinsic size.
func (i *Icon) Image() *image.RGBA {
	return i.Rasterize(i.IntrinsicSize())
}
