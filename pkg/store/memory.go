package store

import (
	"context"
	"sync"

	"github.com/go-drift/widgetkit/pkg/errors"
)

// Memory is an in-process Store. It is the same-process desktop case and
// the default in tests.
type Memory struct {
	locks groupLocks

	mu     sync.RWMutex
	groups map[string]Values
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{groups: make(map[string]Values)}
}

func (m *Memory) Get(_ context.Context, group, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.groups[SanitizeGroup(group)][key]
	if !ok {
		return "", errors.ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(ctx context.Context, group, key, value string) error {
	return m.Update(ctx, group, func(v Values) error {
		v[key] = value
		return nil
	})
}

func (m *Memory) Update(ctx context.Context, group string, fn func(Values) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	safe := SanitizeGroup(group)
	unlock := m.locks.lock(safe)
	defer unlock()

	m.mu.RLock()
	vals := m.groups[safe].Clone()
	m.mu.RUnlock()

	if err := fn(vals); err != nil {
		return err
	}

	m.mu.Lock()
	m.groups[safe] = vals
	m.mu.Unlock()
	return nil
}

func (m *Memory) Close() error { return nil }
