package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/go-drift/widgetkit/pkg/errors"
)

// RedisConfig holds connection settings for the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces keys and the change channel. Defaults to "widgetkit".
	Prefix string
}

// Redis stores each group as a hash and publishes the group name on a
// change channel after every write, so surfaces in other processes can
// reload.
type Redis struct {
	rdb    *redis.Client
	prefix string
	locks  groupLocks
	// MaxRetries bounds optimistic transaction retries in Update.
	MaxRetries int
}

// NewRedis connects and pings the server.
func NewRedis(cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, storageErr("store.NewRedis", "", fmt.Errorf("redis ping failed: %w", err))
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "widgetkit"
	}
	return &Redis{rdb: rdb, prefix: prefix, MaxRetries: 8}, nil
}

func (r *Redis) key(group string) string { return r.prefix + ":group:" + SanitizeGroup(group) }

func (r *Redis) channel() string { return r.prefix + ":changed" }

func (r *Redis) Get(ctx context.Context, group, key string) (string, error) {
	v, err := r.rdb.HGet(ctx, r.key(group), key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", errors.ErrNotFound
	}
	if err != nil {
		return "", storageErr("store.Redis.Get", group, err)
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, group, key, value string) error {
	if err := r.rdb.HSet(ctx, r.key(group), key, value).Err(); err != nil {
		return storageErr("store.Redis.Set", group, err)
	}
	r.publish(ctx, group)
	return nil
}

// Update reads the hash under WATCH and rewrites it in MULTI/EXEC,
// retrying when another client changed the hash in between.
func (r *Redis) Update(ctx context.Context, group string, fn func(Values) error) error {
	key := r.key(group)
	unlock := r.locks.lock(SanitizeGroup(group))
	defer unlock()

	var fnErr error
	txf := func(tx *redis.Tx) error {
		before, err := tx.HGetAll(ctx, key).Result()
		if err != nil && !stderrors.Is(err, redis.Nil) {
			return err
		}
		after := Values(before).Clone()
		if fnErr = fn(after); fnErr != nil {
			return fnErr
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			var removed []string
			for k := range before {
				if _, ok := after[k]; !ok {
					removed = append(removed, k)
				}
			}
			if len(removed) > 0 {
				pipe.HDel(ctx, key, removed...)
			}
			if len(after) > 0 {
				fields := make(map[string]any, len(after))
				for k, v := range after {
					fields[k] = v
				}
				pipe.HSet(ctx, key, fields)
			}
			return nil
		})
		return err
	}

	for i := 0; i <= r.MaxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			r.publish(ctx, group)
			return nil
		}
		if fnErr != nil {
			return fnErr
		}
		if !stderrors.Is(err, redis.TxFailedErr) {
			return storageErr("store.Redis.Update", group, err)
		}
	}
	return storageErr("store.Redis.Update", group, fmt.Errorf("transaction retries exhausted"))
}

func (r *Redis) publish(ctx context.Context, group string) {
	if err := r.rdb.Publish(ctx, r.channel(), SanitizeGroup(group)).Err(); err != nil {
		log.Warn().Err(err).Str("group", group).Msg("redis change publish failed")
	}
}

// Watch subscribes to the change channel and calls fn for every published
// group until ctx ends.
func (r *Redis) Watch(ctx context.Context, fn func(group string)) error {
	sub := r.rdb.Subscribe(ctx, r.channel())
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return storageErr("store.Redis.Watch", "", err)
	}
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn(strings.TrimSpace(msg.Payload))
			}
		}
	}()
	return nil
}

// Client exposes the underlying client.
func (r *Redis) Client() *redis.Client { return r.rdb }

func (r *Redis) Close() error { return r.rdb.Close() }
