package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pfrederiksen/venue-events/internal/event"
)

// RedisStore keeps snapshots as JSON strings in Redis
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to addr and checks the connection with a PING.
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() // nolint:errcheck
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return NewRedisStoreWithClient(client, prefix), nil
}

// NewRedisStoreWithClient uses an existing client. An empty prefix means DefaultRedisPrefix.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(feed string) (string, error) {
	name, err := feedName(feed)
	if err != nil {
		return "", err
	}
	return s.prefix + "snapshot:" + name, nil
}

// Load reads the feed's snapshot from Redis
func (s *RedisStore) Load(ctx context.Context, feed string) (*event.Snapshot, error) {
	key, err := s.key(feed)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", key, err)
	}

	return decodeSnapshot(data)
}

// Save writes the feed's snapshot to Redis without expiry
func (s *RedisStore) Save(ctx context.Context, feed string, snapshot *event.Snapshot) error {
	key, err := s.key(feed)
	if err != nil {
		return err
	}

	data, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", key, err)
	}
	return nil
}
