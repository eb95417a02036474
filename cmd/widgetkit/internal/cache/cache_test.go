package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"v0.1.0", "v0.1.0"},
		{"0.1.0", "v0.1.0"},
		{"widgetkit-v0.1.0", "v0.1.0"},
		{"v0.2.0-rc1", "v0.2.0-rc1"},
		{"v0.2.0+build.5", "v0.2.0"},
		{"0.1.0-dev", ""},
		{"v0.2.1-0.20260122153045-abc123def456", ""},
		{"v1.2", ""},
		{"", ""},
		{"garbage", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeVersion(tt.in))
		})
	}
}

func TestRootPriority(t *testing.T) {
	t.Cleanup(func() { SetCacheDir("") })

	env := t.TempDir()
	t.Setenv(EnvCacheDir, env)
	root, err := Root()
	require.NoError(t, err)
	assert.Equal(t, env, root)

	flag := t.TempDir()
	SetCacheDir(flag)
	root, err = Root()
	require.NoError(t, err)
	assert.Equal(t, flag, root)
}

func TestImageDirVersioned(t *testing.T) {
	t.Cleanup(func() {
		SetCacheDir("")
		SetGlobal("")
	})
	root := t.TempDir()
	SetCacheDir(root)

	SetGlobal("0.3.0-dev")
	dir, err := ImageDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "images", DevVersion), dir)

	SetGlobal("v1.4.2")
	dir, err = ImageDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "images", "v1.4.2"), dir)
	assert.Equal(t, "v1.4.2", RawVersion())

	data, err := DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data"), data)
}
