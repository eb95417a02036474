package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/actions"
	"github.com/go-drift/widgetkit/pkg/imagecache"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "go.mod"), "module github.com/acme/Shopping-List\n\ngo 1.24\n")

	cfg, err := Load(New(), "", dir)
	require.NoError(t, err)

	assert.Equal(t, "group.com.github.acme.shoppinglist", cfg.Group)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, imagecache.DefaultTTL, cfg.Images.TTL)
	assert.Equal(t, int64(imagecache.DefaultMaxBytes), cfg.Images.MaxBytes)
	assert.Equal(t, actions.DefaultDedupWindow, cfg.Actions.DedupWindow)
	assert.Zero(t, cfg.Reload.MinInterval)
	assert.Equal(t, "@every 1s", cfg.Updater.Schedule)
	assert.Equal(t, DefaultServeAddr, cfg.Serve.Addr)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), `
group: group.test
store:
  backend: sqlite
  redis:
    db: 3
images:
  ttl: 2m
reload:
  minInterval: 15m
log:
  level: debug
`)
	t.Setenv("WIDGETKIT_STORE_BACKEND", "memory")
	t.Setenv("WIDGETKIT_ACTIONS_DEDUPWINDOW", "500ms")

	cfg, err := Load(New(), "", dir)
	require.NoError(t, err)

	assert.Equal(t, "group.test", cfg.Group)
	assert.Equal(t, "memory", cfg.Store.Backend, "env beats file")
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, 2*time.Minute, cfg.Images.TTL)
	assert.Equal(t, 15*time.Minute, cfg.Reload.MinInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Actions.DedupWindow)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"), ".")
	require.Error(t, err)
}

func TestDefaultGroupOutsideModule(t *testing.T) {
	// The temp dir has no go.mod above it on a normal test host.
	dir := t.TempDir()
	if _, err := FindProjectRoot(dir); err == nil {
		t.Skip("temp dir sits inside a Go module")
	}
	assert.Equal(t, "group.com.example.widgetkit", DefaultGroup(dir))
}

func TestDefaultAppID(t *testing.T) {
	tests := []struct {
		module, name, want string
	}{
		{"github.com/go-drift/widgetkit", "widgetkit", "com.github.godrift.widgetkit"},
		{"example.org/2fa", "2fa", "org.example.2fa"},
		{"localmod", "localmod", "com.example.localmod"},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultAppID(tt.module, tt.name))
		})
	}
}
