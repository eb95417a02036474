package svg

import (
	"errors"
	"image"
	"sync"

	"golang.org/x/sync/singleflight"
)

// IconCache caches parsed icons and their intrinsic rasters by key, so asset
// directories are parsed once per process.
type IconCache struct {
	mu     sync.Mutex
	items  map[string]*cached
	flight singleflight.Group
}

type cached struct {
	icon *Icon
	img  *image.RGBA
}

// NewIconCache creates an empty icon cache.
func NewIconCache() *IconCache {
	return &IconCache{items: make(map[string]*cached)}
}

// Get returns a cached icon or loads it with loader. Concurrent misses for
// one key share a single load. A nil cache calls loader directly.
func (c *IconCache) Get(key string, loader func() (*Icon, error)) (*Icon, error) {
	e, err := c.entry(key, loader)
	if err != nil {
		return nil, err
	}
	return e.icon, nil
}

// Image returns the icon's raster at intrinsic size, rendered once per key.
func (c *IconCache) Image(key string, loader func() (*Icon, error)) (image.Image, error) {
	e, err := c.entry(key, loader)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

// Len reports the number of cached icons.
func (c *IconCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *IconCache) entry(key string, loader func() (*Icon, error)) (*cached, error) {
	if loader == nil {
		return nil, errors.New("svg: loader is nil")
	}
	load := func() (*cached, error) {
		icon, err := loader()
		if err != nil {
			return nil, err
		}
		if icon == nil {
			return nil, errors.New("svg: loader returned no icon")
		}
		return &cached{icon: icon, img: icon.Image()}, nil
	}
	if c == nil {
		return load()
	}

	c.mu.Lock()
	e := c.items[key]
	c.mu.Unlock()
	if e != nil {
		return e, nil
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		c.mu.Lock()
		have := c.items[key]
		c.mu.Unlock()
		if have != nil {
			return have, nil
		}
		e, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.items[key] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*cached), nil
}
