// Package store persists widget configs and pending-action queues.
//
// A Store is an opaque string key-value space partitioned by group. Every
// backend serializes Update calls for the same group, so read-modify-write
// sequences such as toggle mutation, queue append and queue drain never
// interleave within one process. The file backend also holds an OS lock
// per group and the Redis backend uses optimistic transactions, so separate
// processes sharing a directory or server are safe too.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-drift/widgetkit/pkg/errors"
)

// Values is the full key-value content of one group.
type Values map[string]string

// Clone returns a shallow copy of v. A nil map clones to an empty one.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// Store is the key-value collaborator shared by the owning application and
// every render surface.
type Store interface {
	// Get returns the value stored under key, or errors.ErrNotFound.
	Get(ctx context.Context, group, key string) (string, error)
	// Set stores value under key.
	Set(ctx context.Context, group, key, value string) error
	// Update runs fn against the group's values under the group lock and
	// persists whatever fn leaves in the map. When fn returns an error
	// nothing is written.
	Update(ctx context.Context, group string, fn func(Values) error) error
	// Close releases backend resources.
	Close() error
}

// Notifier is implemented by backends that can signal changes made by
// other processes.
type Notifier interface {
	// Watch calls fn with the group whose values changed until ctx ends.
	Watch(ctx context.Context, fn func(group string)) error
}

// SanitizeGroup maps a group identifier onto a name that is safe for file
// names and table keys. Characters outside [A-Za-z0-9._-] become '_'; an
// empty result becomes "default".
func SanitizeGroup(group string) string {
	var b strings.Builder
	b.Grow(len(group))
	for _, r := range group {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "default"
	}
	return b.String()
}

// groupLocks hands out one mutex per sanitized group.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (g *groupLocks) lock(group string) func() {
	g.mu.Lock()
	if g.locks == nil {
		g.locks = make(map[string]*sync.Mutex)
	}
	l, ok := g.locks[group]
	if !ok {
		l = &sync.Mutex{}
		g.locks[group] = l
	}
	g.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of "memory", "file", "sqlite" or "redis".
	Backend string
	// Dir is the data directory for the file and sqlite backends.
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open constructs the backend named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		return NewFile(cfg.Dir)
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(cfg.Dir)
	case "redis":
		return NewRedis(RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	default:
		return nil, errors.New("store.Open", errors.KindStorage, "", fmt.Errorf("unknown backend %q", cfg.Backend))
	}
}

func storageErr(op, group string, err error) error {
	if err == nil {
		return nil
	}
	return errors.New(op, errors.KindStorage, group, err)
}
