package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "maze:session:"
	redisLockSuffix = ":lock"
)

// RedisPersistence stores sessions as JSON strings in Redis. Saves are
// serialized per session with a redsync mutex so several server instances
// can share one store.
type RedisPersistence struct {
	client *redis.Client
	locker *redsync.Redsync
	ttl    time.Duration
}

// NewRedisPersistence creates a Redis-backed store. A zero ttl keeps
// sessions until they are deleted.
func NewRedisPersistence(client *redis.Client, ttl time.Duration) *RedisPersistence {
	pool := goredis.NewPool(client)
	return &RedisPersistence{
		client: client,
		locker: redsync.New(pool),
		ttl:    ttl,
	}
}

func (rp *RedisPersistence) key(id string) string {
	return redisKeyPrefix + strings.ToLower(id)
}

// Save writes the session under its key while holding the session lock
func (rp *RedisPersistence) Save(ctx context.Context, data *PersistedSessionData) error {
	if data == nil {
		return fmt.Errorf("session cannot be nil")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	key := rp.key(data.ID)
	mutex := rp.locker.NewMutex(key+redisLockSuffix, redsync.WithExpiry(5*time.Second))
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to lock session %s: %w", data.ID, err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	if err := rp.client.Set(ctx, key, payload, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session %s: %w", data.ID, err)
	}
	return nil
}

// Load reads a session by ID
func (rp *RedisPersistence) Load(ctx context.Context, id string) (*PersistedSessionData, error) {
	payload, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	return &data, nil
}

// Delete removes a session key
func (rp *RedisPersistence) Delete(ctx context.Context, id string) error {
	n, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// ListAll scans for session keys
func (rp *RedisPersistence) ListAll(ctx context.Context) ([]string, error) {
	var ids []string
	iter := rp.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if strings.HasSuffix(key, redisLockSuffix) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(key, redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return ids, nil
}

// Exists checks whether a session key is present
func (rp *RedisPersistence) Exists(ctx context.Context, id string) bool {
	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}
