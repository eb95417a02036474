package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedis connects to the server named by WIDGETKIT_REDIS_ADDR.
func setupRedis(t *testing.T) *Redis {
	addr := os.Getenv("WIDGETKIT_REDIS_ADDR")
	if addr == "" {
		t.Skip("WIDGETKIT_REDIS_ADDR not set")
	}
	r, err := NewRedis(RedisConfig{Addr: addr, Prefix: "widgetkit-test-" + uuid.NewString()})
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRedisConformance(t *testing.T) {
	r := setupRedis(t)
	runConformance(t, r)
	r.Client().Del(context.Background(), r.key("group.test."+t.Name()))
}

func TestRedisWatch(t *testing.T) {
	r := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	require.NoError(t, r.Watch(ctx, func(g string) { got <- g }))
	require.NoError(t, r.Set(ctx, "group/watch", "k", "v"))
	defer r.Client().Del(context.Background(), r.key("group/watch"))

	select {
	case g := <-got:
		assert.Equal(t, "group_watch", g)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}
}
