package draw

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"

	"github.com/go-drift/widgetkit/pkg/element"
	"github.com/go-drift/widgetkit/pkg/svg"
)

// ImageSource names the link of the resolution chain that produced an image.
type ImageSource int

const (
	SourceGlyph ImageSource = iota
	SourceData
	SourceFile
	SourceCache
	SourceAsset
)

func (s ImageSource) String() string {
	switch s {
	case SourceData:
		return "data"
	case SourceFile:
		return "file"
	case SourceCache:
		return "cache"
	case SourceAsset:
		return "asset"
	default:
		return "glyph"
	}
}

// RemoteLookup finds already-cached bytes for a remote URL without fetching.
type RemoteLookup interface {
	Lookup(url string) (path string, ok bool)
}

// AssetLookup finds a bundled image by name.
type AssetLookup func(name string) (image.Image, bool)

// ResolvedImage is the outcome of the image chain. Exactly one of Image
// and Glyph is set.
type ResolvedImage struct {
	Image  image.Image
	Glyph  string
	Source ImageSource
}

// ImageResolver walks the image chain: inline data, local path, cached
// remote bytes, bundled asset (with name variants), then glyph fallback.
type ImageResolver struct {
	Remote RemoteLookup
	Assets AssetLookup
}

// Resolve never fails; the last link always yields a glyph.
func (r *ImageResolver) Resolve(el *element.Image) ResolvedImage {
	if el.Data != "" {
		img, err := DecodeData(el.Data)
		if err == nil {
			return ResolvedImage{Image: img, Source: SourceData}
		}
		log.Debug().Err(err).Msg("inline image data did not decode")
	}
	if el.LocalPath != "" {
		if img, err := DecodeFile(el.LocalPath); err == nil {
			return ResolvedImage{Image: img, Source: SourceFile}
		}
	}
	if r != nil && r.Remote != nil && el.URL != "" {
		if path, ok := r.Remote.Lookup(el.URL); ok {
			if img, err := DecodeFile(path); err == nil {
				return ResolvedImage{Image: img, Source: SourceCache}
			}
		}
	}
	if r != nil && r.Assets != nil {
		for _, name := range AssetNames(el.SystemName) {
			if img, ok := r.Assets(name); ok {
				return ResolvedImage{Image: img, Source: SourceAsset}
			}
		}
	}
	return ResolvedImage{Glyph: Glyph(el.SystemName, el.Alt, el.Label), Source: SourceGlyph}
}

// DecodeData decodes base64 image bytes, with or without a data: URL prefix.
func DecodeData(s string) (image.Image, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexByte(s, ','); i >= 0 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return nil, err
		}
	}
	return DecodeBytes(raw)
}

// DecodeFile decodes an image file.
func DecodeFile(path string) (image.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(raw)
}

// DecodeBytes decodes PNG, JPEG, GIF, WebP or SVG bytes. SVG documents are
// rasterized at their intrinsic size.
func DecodeBytes(raw []byte) (image.Image, error) {
	if svg.Sniff(raw) {
		icon, err := svg.LoadBytes(raw)
		if err != nil {
			return nil, err
		}
		return icon.Image(), nil
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	return img, err
}

// assetExts are tried in order for each asset name.
var assetExts = []string{".png", ".svg", ".jpg", ".webp"}

// DirAssets returns an AssetLookup over the images in dir. SVG assets are
// parsed once and kept in icons; a nil cache parses on every lookup.
func DirAssets(dir string, icons *svg.IconCache) AssetLookup {
	return func(name string) (image.Image, bool) {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return nil, false
		}
		for _, ext := range assetExts {
			path := filepath.Join(dir, name+ext)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			var (
				img image.Image
				err error
			)
			if ext == ".svg" {
				img, err = icons.Image(path, func() (*svg.Icon, error) { return svg.LoadFile(path) })
			} else {
				img, err = DecodeFile(path)
			}
			if err != nil {
				log.Warn().Err(err).Str("asset", path).Msg("asset did not decode")
				continue
			}
			return img, true
		}
		return nil, false
	}
}
