package cmd

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/cmd/widgetkit/internal/cache"
	"github.com/go-drift/widgetkit/cmd/widgetkit/internal/config"
	"github.com/go-drift/widgetkit/pkg/draw"
	"github.com/go-drift/widgetkit/pkg/host"
	"github.com/go-drift/widgetkit/pkg/imagecache"
	"github.com/go-drift/widgetkit/pkg/store"
	"github.com/go-drift/widgetkit/pkg/svg"
)

// app is the wired runtime behind a command: one store, the image cache
// and a host over them.
type app struct {
	cfg    *config.Config
	store  store.Store
	images *imagecache.Cache
	icons  *svg.IconCache
	host   *host.Host
}

// open wires the runtime from c's config.
func (c *cli) open() (*app, error) {
	return openApp(c.cfg, nil)
}

// openApp wires cfg. A nil client uses the image cache's own.
func openApp(cfg *config.Config, client *http.Client) (*app, error) {
	dir := cfg.Store.Dir
	if dir == "" && cfg.Store.Backend != "memory" && cfg.Store.Backend != "redis" {
		d, err := cache.DataDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	s, err := store.Open(store.Config{
		Backend:       cfg.Store.Backend,
		Dir:           dir,
		RedisAddr:     cfg.Store.Redis.Addr,
		RedisPassword: cfg.Store.Redis.Password,
		RedisDB:       cfg.Store.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	imageDir, err := cache.ImageDir()
	if err != nil {
		s.Close()
		return nil, err
	}
	images, err := imagecache.New(imagecache.Options{
		Dir:            imageDir,
		TTL:            cfg.Images.TTL,
		MaxBytes:       cfg.Images.MaxBytes,
		ConnectTimeout: cfg.Images.ConnectTimeout,
		ReadTimeout:    cfg.Images.ReadTimeout,
		MemoryEntries:  cfg.Images.MemoryEntries,
		Client:         client,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open image cache: %w", err)
	}

	a := &app{
		cfg:    cfg,
		store:  s,
		images: images,
		icons:  svg.NewIconCache(),
	}
	a.host = host.New(s, host.Options{
		Images:            images,
		MinReloadInterval: cfg.Reload.MinInterval,
		DedupWindow:       cfg.Actions.DedupWindow,
	})
	log.Debug().Str("group", cfg.Group).Str("store", cfg.Store.Backend).Str("images", imageDir).Msg("runtime ready")
	return a, nil
}

// resolver is the image chain used when laying out plans.
func (a *app) resolver() *draw.ImageResolver {
	r := &draw.ImageResolver{Remote: a.images}
	if a.cfg.Assets != "" {
		r.Assets = draw.DirAssets(a.cfg.Assets, a.icons)
	}
	return r
}

func (a *app) Close() error {
	a.host.Close()
	return a.store.Close()
}
