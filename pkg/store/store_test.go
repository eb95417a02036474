package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/widgetkit/pkg/errors"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	file, err := NewFile(t.TempDir())
	require.NoError(t, err)
	sq, err := NewSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": sq,
	}
}

func TestSanitizeGroup(t *testing.T) {
	tests := []struct{ in, want string }{
		{"group.com.example.app", "group.com.example.app"},
		{"group/com example", "group_com_example"},
		{"a-b_c", "a-b_c"},
		{"", "default"},
		{"é", "_"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeGroup(tt.in), tt.in)
	}
}

func TestStoreConformance(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			runConformance(t, s)
		})
	}
}

func runConformance(t *testing.T, s Store) {
	ctx := context.Background()
	group := "group.test." + t.Name()

	_, err := s.Get(ctx, group, "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, s.Set(ctx, group, "a", "1"))
	v, err := s.Get(ctx, group, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	// Other groups are isolated.
	_, err = s.Get(ctx, group+".other", "a")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, s.Update(ctx, group, func(v Values) error {
		assert.Equal(t, "1", v["a"])
		v["b"] = "2"
		delete(v, "a")
		return nil
	}))
	_, err = s.Get(ctx, group, "a")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	v, err = s.Get(ctx, group, "b")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	// A failing update writes nothing.
	boom := fmt.Errorf("boom")
	err = s.Update(ctx, group, func(v Values) error {
		v["b"] = "changed"
		return boom
	})
	assert.Equal(t, boom, err)
	v, _ = s.Get(ctx, group, "b")
	assert.Equal(t, "2", v)

	// Concurrent increments under Update never lose a write.
	require.NoError(t, s.Set(ctx, group, "n", "0"))
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Update(ctx, group, func(v Values) error {
				var n int
				fmt.Sscan(v["n"], &n)
				v["n"] = fmt.Sprint(n + 1)
				return nil
			}))
		}()
	}
	wg.Wait()
	v, err = s.Get(ctx, group, "n")
	require.NoError(t, err)
	assert.Equal(t, "20", v)
}

func TestFileLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "group/x y", "k", "v"))

	path := filepath.Join(dir, "widgets", "group_x_y.json")
	assert.Equal(t, path, s.Path("group/x y"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"k":"v"}`, string(data))

	matches, _ := filepath.Glob(filepath.Join(dir, "widgets", "*.tmp"))
	assert.Empty(t, matches)
}

func TestFileCorruptIsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path("g"), []byte("{nope"), 0o644))

	_, err = s.Get(context.Background(), "g", "k")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	require.NoError(t, s.Set(context.Background(), "g", "k", "v"))
	v, err := s.Get(context.Background(), "g", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestFileWatchDebounces(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)
	s.Debounce = 150 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan string, 16)
	require.NoError(t, s.Watch(ctx, func(g string) { got <- g }))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Set(ctx, "group.watch", "k", fmt.Sprint(i)))
	}

	select {
	case g := <-got:
		assert.Equal(t, "group.watch", g)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
	select {
	case <-got:
		t.Fatal("burst was not coalesced")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(Config{Backend: "etcd"})
	require.Error(t, err)

	s, err := Open(Config{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)
}

func TestFileUpdateAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFile(dir)
	require.NoError(t, err)
	b, err := NewFile(dir)
	require.NoError(t, err)

	ctx := context.Background()
	incr := func(s *File) error {
		return s.Update(ctx, "group.shared", func(v Values) error {
			n := 0
			fmt.Sscan(v["n"], &n)
			v["n"] = fmt.Sprint(n + 1)
			return nil
		})
	}

	const perStore = 100
	var wg sync.WaitGroup
	for _, s := range []*File{a, b} {
		for i := 0; i < perStore; i++ {
			wg.Add(1)
			go func(s *File) {
				defer wg.Done()
				assert.NoError(t, incr(s))
			}(s)
		}
	}
	wg.Wait()

	got, err := a.Get(ctx, "group.shared", "n")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(2*perStore), got)

	_, err = os.Stat(filepath.Join(dir, "widgets", "group.shared.lock"))
	assert.NoError(t, err)
}

func TestFileUpdateCanceledWhileLocked(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFile(dir)
	require.NoError(t, err)
	b, err := NewFile(dir)
	require.NoError(t, err)

	held := make(chan struct{})
	release := make(chan struct{})
	go a.Update(context.Background(), "g", func(Values) error {
		close(held)
		<-release
		return nil
	})
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = b.Set(ctx, "g", "k", "v")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
