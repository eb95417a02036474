package cmd

import (
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/cmd/widgetkit/internal/cache"
	"github.com/go-drift/widgetkit/cmd/widgetkit/internal/config"
	"github.com/go-drift/widgetkit/pkg/store"
)

const testGroup = "group.test"

const groceries = `{"small":{"type":"list","items":[{"text":"Milk","checked":false,"action":"milk"}]}}`

func newTestApp(t *testing.T, backend, dir string) *app {
	t.Helper()
	cache.SetCacheDir(t.TempDir())
	t.Cleanup(func() { cache.SetCacheDir("") })

	cfg := &config.Config{Group: testGroup, Store: config.StoreConfig{Backend: backend, Dir: dir}}
	a, err := openApp(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func newTestServer(t *testing.T) (*httptest.Server, *app) {
	t.Helper()
	a := newTestApp(t, "memory", "")
	ts := httptest.NewServer(newServer(a, testGroup).routes())
	t.Cleanup(ts.Close)
	return ts, a
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestServeConfigRoundTrip(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, _ := do(t, http.MethodGet, ts.URL+"/config", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := do(t, http.MethodPut, ts.URL+"/config", groceries)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(t, `{"changed":true}`, body)

	resp, body = do(t, http.MethodPut, ts.URL+"/config", groceries)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"changed":false}`, body)

	resp, body = do(t, http.MethodGet, ts.URL+"/config", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, groceries, body)
	assert.NotEmpty(t, resp.Header.Get("ETag"))

	resp, _ = do(t, http.MethodPut, ts.URL+"/config", `[1, 2]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeRender(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, http.MethodPut, ts.URL+"/config", groceries)

	resp, body := do(t, http.MethodGet, ts.URL+"/render/medium.png", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 676, 316), img.Bounds())

	resp, body = do(t, http.MethodGet, ts.URL+"/render/small.svg?dark=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "<svg")
	assert.Contains(t, body, "Milk</text>")

	resp, body = do(t, http.MethodGet, ts.URL+"/render/small.txt", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Milk")
	assert.NotContains(t, body, "\x1b[", "served text carries no color codes")

	tests := []struct {
		path   string
		status int
	}{
		{"/render/huge.png", http.StatusNotFound},
		{"/render/small.gif", http.StatusNotFound},
		{"/render/small", http.StatusNotFound},
		{"/render/small.png?scale=0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, _ := do(t, http.MethodGet, ts.URL+tt.path, "")
		assert.Equal(t, tt.status, resp.StatusCode, tt.path)
	}
}

func TestServeTap(t *testing.T) {
	ts, a := newTestServer(t)
	do(t, http.MethodPut, ts.URL+"/config", groceries)

	resp, _ := do(t, http.MethodPost, ts.URL+"/tap", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, ts.URL+"/tap", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, http.MethodPost, ts.URL+"/tap", `{"action":"milk"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.JSONEq(t, `{"toggled":true}`, body)

	events, err := a.host.Drain(context.Background(), testGroup)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "milk", events[0].Action)
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var m wsMessage
		require.NoError(t, conn.ReadJSON(&m))
		if m.Type == typ {
			return m
		}
	}
}

func TestServeWebsocketPushesActions(t *testing.T) {
	ts, a := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	hello := readUntil(t, conn, "reload")
	assert.Equal(t, testGroup, hello.Group)
	require.Eventually(t, func() bool { return a.host.Registry().Len() == 1 }, time.Second, 10*time.Millisecond)

	resp, _ := do(t, http.MethodPost, ts.URL+"/tap", `{"action":"refresh","payload":"1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	m := readUntil(t, conn, "action")
	require.NotNil(t, m.Event)
	assert.Equal(t, "refresh", m.Event.Action)
	assert.Equal(t, "1", m.Event.Payload)
	assert.Equal(t, "push", m.Event.Source)
	assert.NotEmpty(t, m.Event.ID)

	// Taps sent over the socket take the same path.
	require.NoError(t, conn.WriteJSON(wsMessage{Type: "tap", Action: "open", Payload: "x"}))
	m = readUntil(t, conn, "action")
	assert.Equal(t, "open", m.Event.Action)

	// A config write reloads connected clients.
	do(t, http.MethodPut, ts.URL+"/config", groceries)
	m = readUntil(t, conn, "reload")
	assert.Equal(t, uint64(1), m.Nonce)

	conn.Close()
	assert.Eventually(t, func() bool { return a.host.Registry().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServeMetricsAndHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, http.MethodGet, ts.URL+"/render/small.txt", "")

	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "widgetkit_renders_total")

	resp, _ = do(t, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

type countingReloader struct{ n atomic.Int32 }

func (c *countingReloader) ID() string { return "counter" }

func (c *countingReloader) Reload(context.Context) error {
	c.n.Add(1)
	return nil
}

func TestFollowReloadsOnFileChange(t *testing.T) {
	dir := t.TempDir()
	a := newTestApp(t, "file", dir)
	r := &countingReloader{}
	defer a.host.Registry().Register(testGroup, r)()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop, err := follow(ctx, a, testGroup, "")
	require.NoError(t, err)
	defer stop()

	// Another process writes the group.
	other, err := store.NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, other.Set(context.Background(), testGroup, "k", "v"))

	assert.Eventually(t, func() bool { return r.n.Load() > 0 }, 3*time.Second, 20*time.Millisecond)
}
