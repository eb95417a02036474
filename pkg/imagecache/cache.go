// Package imagecache downloads remote widget images to local files so
// render surfaces never touch the network.
//
// Files are named by the SHA-256 of the URL plus an extension guessed from
// the URL. A file younger than its TTL is reused; a TTL of zero keeps a
// fetched file forever. When a refresh fails the stale file is returned
// if there is one. A small LRU in front of the directory skips the stat on
// hot URLs, and concurrent fetches of one URL share a single request.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/go-drift/widgetkit/pkg/errors"
	"github.com/go-drift/widgetkit/pkg/metrics"
)

// Defaults.
const (
	DefaultTTL            = 15 * time.Minute
	DefaultMaxBytes       = 3 << 20
	DefaultConnectTimeout = 8 * time.Second
	DefaultReadTimeout    = 10 * time.Second
	DefaultMemoryEntries  = 80
)

// Options configures a Cache. Zero fields take the defaults.
type Options struct {
	Dir            string
	TTL            time.Duration
	MaxBytes       int64
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MemoryEntries  int
	// Client overrides the HTTP client built from the timeouts.
	Client *http.Client
}

type entry struct {
	path    string
	fetched time.Time
}

// Cache is a TTL image cache backed by a directory.
type Cache struct {
	dir      string
	ttl      time.Duration
	maxBytes int64
	client   *http.Client
	mem      *lru.Cache[string, entry]
	flight   singleflight.Group
	now      func() time.Time
}

// New creates the cache directory and returns a cache over it.
func New(opts Options) (*Cache, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("imagecache: empty directory")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("imagecache: %w", err)
	}
	if opts.TTL < 0 {
		opts.TTL = 0
	} else if opts.TTL == 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.MemoryEntries <= 0 {
		opts.MemoryEntries = DefaultMemoryEntries
	}
	mem, err := lru.New[string, entry](opts.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("imagecache: %w", err)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{
			Timeout: opts.ConnectTimeout + opts.ReadTimeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: opts.ConnectTimeout}).DialContext,
				TLSHandshakeTimeout:   opts.ConnectTimeout,
				ResponseHeaderTimeout: opts.ReadTimeout,
			},
		}
	}
	return &Cache{
		dir:      opts.Dir,
		ttl:      opts.TTL,
		maxBytes: opts.MaxBytes,
		client:   client,
		mem:      mem,
		now:      time.Now,
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// DefaultTTL returns the TTL used when a node does not set one.
func (c *Cache) DefaultTTL() time.Duration { return c.ttl }

// IsRemote reports whether url is an http(s) URL.
func IsRemote(url string) bool {
	url = strings.TrimSpace(url)
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// FileName is the cache file name for url.
func FileName(url string) string {
	url = strings.TrimSpace(url)
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:]) + "." + extension(url)
}

func extension(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.Contains(lower, ".jpg"), strings.Contains(lower, ".jpeg"):
		return "jpg"
	case strings.Contains(lower, ".webp"):
		return "webp"
	default:
		return "png"
	}
}

// Path is where url is cached.
func (c *Cache) Path(url string) string { return filepath.Join(c.dir, FileName(url)) }

// Lookup returns the cached file for url without fetching, regardless of
// age. It backs the render-time image chain.
func (c *Cache) Lookup(url string) (string, bool) {
	if !IsRemote(url) {
		return "", false
	}
	url = strings.TrimSpace(url)
	if e, ok := c.mem.Get(url); ok {
		return e.path, true
	}
	path := c.Path(url)
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		c.mem.Add(url, entry{path: path, fetched: info.ModTime()})
		return path, true
	}
	return "", false
}

// EnsureLocal returns a local file holding url's bytes, fetching when the
// cached copy is missing or older than ttl. A ttl of zero keeps a fetched
// file forever. On fetch failure a stale file is returned when present.
func (c *Cache) EnsureLocal(ctx context.Context, url string, ttl time.Duration) (string, bool) {
	if !IsRemote(url) {
		return "", false
	}
	url = strings.TrimSpace(url)
	if ttl < 0 {
		ttl = 0
	}
	now := c.now()
	if e, ok := c.mem.Get(url); ok && fresh(now, e.fetched, ttl) {
		metrics.ImageCache.WithLabelValues("memory").Inc()
		return e.path, true
	}
	path := c.Path(url)
	info, err := os.Stat(path)
	haveFile := err == nil && info.Size() > 0
	if haveFile && fresh(now, info.ModTime(), ttl) {
		metrics.ImageCache.WithLabelValues("disk").Inc()
		log.Debug().Str("url", url).Dur("age", now.Sub(info.ModTime())).Msg("image cache hit")
		c.mem.Add(url, entry{path: path, fetched: info.ModTime()})
		return path, true
	}

	_, err, _ = c.flight.Do(url, func() (any, error) {
		return nil, c.fetch(ctx, url, path)
	})
	if err == nil {
		metrics.ImageCache.WithLabelValues("fetched").Inc()
		c.mem.Add(url, entry{path: path, fetched: c.now()})
		return path, true
	}
	errors.Report(errors.New("imagecache.EnsureLocal", errors.KindNetwork, "", err))
	if haveFile {
		metrics.ImageCache.WithLabelValues("stale").Inc()
		log.Warn().Err(err).Str("url", url).Msg("image refresh failed, serving stale file")
		return path, true
	}
	metrics.ImageCache.WithLabelValues("miss").Inc()
	return "", false
}

func fresh(now, at time.Time, ttl time.Duration) bool {
	if ttl == 0 {
		return true
	}
	age := now.Sub(at)
	return age >= 0 && age < ttl
}

func (c *Cache) fetch(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	if int64(len(data)) > c.maxBytes {
		return fmt.Errorf("fetch %s: body exceeds %d bytes", url, c.maxBytes)
	}
	if len(data) == 0 {
		return fmt.Errorf("fetch %s: empty body", url)
	}

	tmp, err := os.CreateTemp(c.dir, ".fetch-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(name)
		if werr != nil {
			return werr
		}
		return cerr
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	log.Debug().Str("url", url).Int("bytes", len(data)).Msg("image cache refreshed")
	return nil
}
