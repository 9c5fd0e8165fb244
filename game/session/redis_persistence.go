package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/wricardo/maze-runner/game/service"
)

const (
	// default prefix for redis keys
	defaultRedisPrefix = "maze"

	// session key string format
	sessionKeyFmt = "%s:session:%s"

	redisOpTimeout = 3 * time.Second
)

// RedisPersistence implements SessionPersistence on top of Redis. Writes
// are guarded by a redsync mutex per session so several server instances
// can share one store.
type RedisPersistence struct {
	client *redis.Client
	locker *redsync.Redsync
	prefix string
	ttl    time.Duration
}

// NewRedisPersistence wraps client. A zero ttl keeps sessions forever.
func NewRedisPersistence(client *redis.Client, prefix string, ttl time.Duration) *RedisPersistence {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisPersistence{
		client: client,
		locker: redsync.New(goredis.NewPool(client)),
		prefix: prefix,
		ttl:    ttl,
	}
}

// Ping checks the connection to Redis.
func (rp *RedisPersistence) Ping(ctx context.Context) error {
	return rp.client.Ping(ctx).Err()
}

// Save persists a session as a JSON document
func (rp *RedisPersistence) Save(sess *service.Session) error {
	data, err := marshalSession(sess, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	key := rp.key(sess.ID)
	mutex := rp.locker.NewMutex(key+":lock", redsync.WithExpiry(redisOpTimeout))
	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to lock session %s: %w", sess.ID, err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(context.Background())
	}()

	if err := rp.client.Set(ctx, key, data, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session %s: %w", sess.ID, err)
	}
	return nil
}

// Load retrieves a session by ID
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	return unmarshalSession(data)
}

// Delete removes a session key
func (rp *RedisPersistence) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	removed, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	prefix := rp.key("")
	var ids []string
	iter := rp.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), prefix)
		if id == "" || strings.Contains(id, ":") {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return ids, nil
}

// Exists checks if a session key is present
func (rp *RedisPersistence) Exists(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && n > 0
}

func (rp *RedisPersistence) key(id string) string {
	return fmt.Sprintf(sessionKeyFmt, rp.prefix, strings.ToLower(id))
}
