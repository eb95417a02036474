package imagecache

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/draw"
)

var _ draw.RemoteLookup = (*Cache)(nil)

type server struct {
	*httptest.Server
	hits   atomic.Int32
	status atomic.Int32
	body   []byte
	gate   chan struct{}
}

func newServer(t *testing.T, body []byte) *server {
	s := &server{body: body}
	s.status.Store(http.StatusOK)
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if s.gate != nil {
			<-s.gate
		}
		w.WriteHeader(int(s.status.Load()))
		w.Write(s.body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newCache(t *testing.T, opts Options) *Cache {
	t.Helper()
	opts.Dir = t.TempDir()
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func TestFileName(t *testing.T) {
	tests := []struct{ url, ext string }{
		{"https://x.test/a.JPG", ".jpg"},
		{"https://x.test/a.jpeg?s=1", ".jpg"},
		{"https://x.test/a.webp", ".webp"},
		{"https://x.test/avatar", ".png"},
	}
	for _, tt := range tests {
		name := FileName(tt.url)
		assert.True(t, strings.HasSuffix(name, tt.ext), tt.url)
		assert.Len(t, name, 64+len(tt.ext))
	}
	assert.Equal(t, FileName("https://x.test/a.png"), FileName("  https://x.test/a.png "))
}

func TestEnsureLocalFetchesOnceWithinTTL(t *testing.T) {
	srv := newServer(t, []byte("png-bytes"))
	c := newCache(t, Options{})

	path, ok := c.EnsureLocal(context.Background(), srv.URL+"/a.png", time.Minute)
	require.True(t, ok)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	again, ok := c.EnsureLocal(context.Background(), srv.URL+"/a.png", time.Minute)
	require.True(t, ok)
	assert.Equal(t, path, again)
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestEnsureLocalRefetchesAfterTTL(t *testing.T) {
	srv := newServer(t, []byte("v1"))
	c := newCache(t, Options{})
	url := srv.URL + "/a.png"

	_, ok := c.EnsureLocal(context.Background(), url, time.Minute)
	require.True(t, ok)

	c.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, ok = c.EnsureLocal(context.Background(), url, time.Minute)
	require.True(t, ok)
	assert.Equal(t, int32(2), srv.hits.Load())

	// A zero TTL never expires.
	c.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	_, ok = c.EnsureLocal(context.Background(), url, 0)
	require.True(t, ok)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestEnsureLocalServesStaleOnFailure(t *testing.T) {
	srv := newServer(t, []byte("good"))
	c := newCache(t, Options{})
	url := srv.URL + "/a.png"

	path, ok := c.EnsureLocal(context.Background(), url, time.Second)
	require.True(t, ok)

	srv.status.Store(http.StatusInternalServerError)
	c.now = func() time.Time { return time.Now().Add(time.Hour) }
	stale, ok := c.EnsureLocal(context.Background(), url, time.Second)
	require.True(t, ok)
	assert.Equal(t, path, stale)
	data, _ := os.ReadFile(stale)
	assert.Equal(t, "good", string(data))
}

func TestEnsureLocalRejects(t *testing.T) {
	srv := newServer(t, []byte("0123456789"))
	c := newCache(t, Options{MaxBytes: 4})

	_, ok := c.EnsureLocal(context.Background(), srv.URL+"/big.png", time.Minute)
	assert.False(t, ok, "oversized body")

	c2 := newCache(t, Options{})
	srv.status.Store(http.StatusNotFound)
	_, ok = c2.EnsureLocal(context.Background(), srv.URL+"/missing.png", time.Minute)
	assert.False(t, ok, "non-2xx")

	_, ok = c2.EnsureLocal(context.Background(), "file:///etc/passwd", time.Minute)
	assert.False(t, ok, "non-http")
}

func TestEnsureLocalCoalescesConcurrentFetches(t *testing.T) {
	srv := newServer(t, []byte("img"))
	srv.gate = make(chan struct{})
	c := newCache(t, Options{})
	url := srv.URL + "/a.png"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := c.EnsureLocal(context.Background(), url, time.Minute)
			assert.True(t, ok)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(srv.gate)
	wg.Wait()
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestLookup(t *testing.T) {
	srv := newServer(t, []byte("img"))
	c := newCache(t, Options{})
	url := srv.URL + "/a.png"

	_, ok := c.Lookup(url)
	assert.False(t, ok)
	path, _ := c.EnsureLocal(context.Background(), url, time.Minute)

	// A fresh cache over the same directory finds the file on disk.
	c2, err := New(Options{Dir: c.Dir()})
	require.NoError(t, err)
	got, ok := c2.Lookup(url)
	require.True(t, ok)
	assert.Equal(t, path, got)
}

func TestPreprocess(t *testing.T) {
	srv := newServer(t, []byte("img"))
	c := newCache(t, Options{})

	raw := `{"small":{"type":"vstack","children":[
		{"type":"image","url":"` + srv.URL + `/a.png"},
		{"type":"image","url":"` + srv.URL + `/b.png","data":"AAAA"},
		{"type":"image","url":"` + srv.URL + `/c.png","localPath":"/keep.png"},
		{"type":"image","systemName":"star"}
	]}}`
	var doc any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, 1, c.Preprocess(context.Background(), doc))
	kids := doc.(map[string]any)["small"].(map[string]any)["children"].([]any)
	assert.Equal(t, c.Path(srv.URL+"/a.png"), kids[0].(map[string]any)["localPath"])
	assert.Nil(t, kids[1].(map[string]any)["localPath"])
	assert.Equal(t, "/keep.png", kids[2].(map[string]any)["localPath"])
}

func TestTTLOf(t *testing.T) {
	def := 15 * time.Minute
	assert.Equal(t, 1500*time.Millisecond, TTLOf(map[string]any{"cacheTtlMs": 1500.0}, def))
	assert.Equal(t, 30*time.Second, TTLOf(map[string]any{"cacheTtlSec": json.Number("30")}, def))
	assert.Equal(t, time.Duration(0), TTLOf(map[string]any{"cacheTtlMs": 0.0, "cacheTtlSec": 5.0}, def))
	assert.Equal(t, def, TTLOf(map[string]any{}, def))
}
