package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// ErrNoPointer is returned by a PointerStore that holds no pointer.
var ErrNoPointer = errors.New("no session pointer stored")

const pointerKey = "servirhc:session:current"

// PointerStore keeps the durable pointer to the logged-in user between
// process restarts.
type PointerStore interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	Load(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}

// MemoryStore keeps the pointer in a go-cache. When file is set, every change
// is flushed to that file and the cache is seeded from it on creation.
type MemoryStore struct {
	cache *cache.Cache
	file  string
}

// NewMemoryStore returns a memory pointer store, persisted to file when file
// is not empty.
func NewMemoryStore(file string) (*MemoryStore, error) {
	s := &MemoryStore{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
		file:  file,
	}
	if file == "" {
		return s, nil
	}
	if err := s.cache.LoadFile(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		// Unreadable pointer files are discarded.
		_ = os.Remove(file)
	}
	return s, nil
}

func (s *MemoryStore) Save(_ context.Context, token string, ttl time.Duration) error {
	s.cache.Set(pointerKey, token, ttl)
	return s.flush()
}

func (s *MemoryStore) Load(_ context.Context) (string, error) {
	v, ok := s.cache.Get(pointerKey)
	if !ok {
		return "", ErrNoPointer
	}
	token, ok := v.(string)
	if !ok {
		return "", ErrNoPointer
	}
	return token, nil
}

func (s *MemoryStore) Delete(_ context.Context) error {
	s.cache.Delete(pointerKey)
	return s.flush()
}

func (s *MemoryStore) flush() error {
	if s.file == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.file), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := s.cache.SaveFile(s.file); err != nil {
		return fmt.Errorf("failed to persist session pointer: %w", err)
	}
	return os.Chmod(s.file, 0o600)
}

// RedisStore keeps the pointer under a single key with the session TTL.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the redis server at url.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Save(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, pointerKey, token, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, pointerKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoPointer
	}
	return token, err
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, pointerKey).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
