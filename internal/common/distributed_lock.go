package common

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// DistributedLock is the cross-process mutual-exclusion primitive guarding
// the catalog sync run. TryAcquire never blocks or retries: a held lock is
// reported to the caller, not queued behind.
type DistributedLock interface {
	// TryAcquire attempts to take the named lock without waiting.
	// Returns false when another holder owns it.
	TryAcquire(ctx context.Context, key string) (bool, error)

	// Release frees the named lock. Safe to call when not held.
	Release(ctx context.Context, key string) error
}

// ---------------------------------------------------------------------------
// Redis TTL lock
// ---------------------------------------------------------------------------

// RedisLock implements DistributedLock with SET NX PX. The TTL is a safety
// net against a crashed holder; normal runs release explicitly.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration

	mu     sync.Mutex
	tokens map[string]string
}

var _ DistributedLock = (*RedisLock)(nil)

// releaseScript deletes the key only if this process still owns it, so an
// expired-and-reacquired lock is never released out from under a new holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisLock creates a Redis-backed distributed lock
func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisLock{
		client: client,
		ttl:    ttl,
		tokens: make(map[string]string),
	}
}

func (l *RedisLock) TryAcquire(ctx context.Context, key string) (bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey(key), token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis lock acquire failed: %w", err)
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.tokens[key] = token
	l.mu.Unlock()
	return true, nil
}

func (l *RedisLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, held := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()

	if !held {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client, []string{lockKey(key)}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("redis lock release failed: %w", err)
	}
	return nil
}

func lockKey(key string) string {
	return "lock:" + key
}

// ---------------------------------------------------------------------------
// Postgres advisory lock
// ---------------------------------------------------------------------------

// AdvisoryLock implements DistributedLock with pg_try_advisory_lock. Session
// advisory locks belong to a connection, so each held key pins a dedicated
// connection until released.
type AdvisoryLock struct {
	db *sqlx.DB

	mu    sync.Mutex
	conns map[string]*sqlx.Conn
}

var _ DistributedLock = (*AdvisoryLock)(nil)

// NewAdvisoryLock creates a Postgres advisory-lock backed distributed lock
func NewAdvisoryLock(db *sqlx.DB) *AdvisoryLock {
	return &AdvisoryLock{
		db:    db,
		conns: make(map[string]*sqlx.Conn),
	}
}

func (l *AdvisoryLock) TryAcquire(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.conns[key]; held {
		return false, nil
	}

	conn, err := l.db.Connx(ctx)
	if err != nil {
		return false, fmt.Errorf("advisory lock: failed to pin connection: %w", err)
	}

	var acquired bool
	if err := conn.GetContext(ctx, &acquired, "SELECT pg_try_advisory_lock($1)", lockID(key)); err != nil {
		conn.Close()
		return false, fmt.Errorf("advisory lock acquire failed: %w", err)
	}

	if !acquired {
		conn.Close()
		return false, nil
	}

	l.conns[key] = conn
	return true, nil
}

func (l *AdvisoryLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	conn, held := l.conns[key]
	delete(l.conns, key)
	l.mu.Unlock()

	if !held {
		return nil
	}
	defer conn.Close()

	var released bool
	if err := conn.GetContext(ctx, &released, "SELECT pg_advisory_unlock($1)", lockID(key)); err != nil {
		return fmt.Errorf("advisory lock release failed: %w", err)
	}
	return nil
}

// lockID hashes the lock name into the bigint keyspace advisory locks use
func lockID(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}
