package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// SessionStore persists wizard snapshots so a session survives a restart
// or moves between server instances.
type SessionStore interface {
	Save(ctx context.Context, snap Snapshot, ttl time.Duration) error
	// Load returns ErrSessionNotFound for a missing or expired session.
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps snapshots in process memory.
type MemorySessionStore struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	data    []byte
	expires time.Time
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemorySessionStore) Save(_ context.Context, snap Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[snap.ID] = memoryItem{data: data, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Load(_ context.Context, id string) (Snapshot, error) {
	m.mu.Lock()
	item, ok := m.items[id]
	if ok && m.now().After(item.expires) {
		delete(m.items, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	var snap Snapshot
	err := json.Unmarshal(item.data, &snap)
	return snap, err
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

const redisKeyPrefix = "autoboard:wizard:"

// RedisSessionStore keeps snapshots as JSON strings with a redis TTL.
type RedisSessionStore struct {
	c *redis.Client
}

func NewRedisSessionStore(c *redis.Client) *RedisSessionStore { return &RedisSessionStore{c: c} }

func redisKey(id string) string { return redisKeyPrefix + id }

func (r *RedisSessionStore) Save(ctx context.Context, snap Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := r.c.Set(ctx, redisKey(snap.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("saving wizard session %s: %w", snap.ID, err)
	}
	return nil
}

func (r *RedisSessionStore) Load(ctx context.Context, id string) (Snapshot, error) {
	data, err := r.c.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, ErrSessionNotFound
		}
		return Snapshot{}, fmt.Errorf("loading wizard session %s: %w", id, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding wizard session %s: %w", id, err)
	}
	return snap, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return r.c.Del(ctx, redisKey(id)).Err()
}
