package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// errCodeNotFound is the store-level miss; the service maps it to the
// user-facing invalid-code error.
var errCodeNotFound = errors.New("otp: code not found")

// Store holds live codes with a TTL. Redis backs it when configured; the
// in-memory store covers demo mode and tests.
type Store interface {
	Set(ctx context.Context, key, code string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

const namespace = "otp"

// RedisStore keeps codes under namespaced keys with Redis-managed expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key, code string, ttl time.Duration) error {
	return s.client.Set(ctx, namespace+":"+key, code, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, namespace+":"+key).Result()
	if err == redis.Nil {
		return "", errCodeNotFound
	}
	return val, err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, namespace+":"+key).Err()
}

type memoryEntry struct {
	code    string
	expires time.Time
}

// MemoryStore is a process-local Store with lazy expiry.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Set(_ context.Context, key, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = memoryEntry{code: code, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.codes[key]
	if !ok || time.Now().After(e.expires) {
		delete(s.codes, key)
		return "", errCodeNotFound
	}
	return e.code, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, key)
	return nil
}
