package scripture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChapterCache stores encoded chapters by key. Get reports a miss with ok=false.
type ChapterCache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte) error
}

// CachedFetcher serves repeated chapter requests from a ChapterCache.
// Cache errors are logged and never fail a fetch.
type CachedFetcher struct {
	next      Fetcher
	cache     ChapterCache
	namespace string
	log       *slog.Logger
}

// NewCachedFetcher wraps next. namespace separates translations sharing a cache.
func NewCachedFetcher(next Fetcher, cache ChapterCache, namespace string, log *slog.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache, namespace: namespace, log: log}
}

func (f *CachedFetcher) key(book string, chapter int) string {
	return fmt.Sprintf("bible-study:chapter:%s:%s:%d", f.namespace, book, chapter)
}

// FetchChapter implements Fetcher.
func (f *CachedFetcher) FetchChapter(ctx context.Context, book string, chapter int) (*ChapterData, error) {
	key := f.key(book, chapter)

	raw, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		f.log.Warn("chapter cache read failed", slog.String("key", key), slog.Any("error", err))
	}
	if ok {
		var data ChapterData
		if err := json.Unmarshal(raw, &data); err == nil {
			return &data, nil
		}
		f.log.Warn("discarding undecodable cached chapter", slog.String("key", key))
	}

	data, err := f.next.FetchChapter(ctx, book, chapter)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(data)
	if err == nil {
		err = f.cache.Set(ctx, key, encoded)
	}
	if err != nil {
		f.log.Warn("chapter cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return data, nil
}

// MemoryCache is a process-local ChapterCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[key]
	return data, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

// RedisCache is a ChapterCache backed by Redis with a fixed TTL.
type RedisCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{redis: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	return c.redis.Set(ctx, key, data, c.ttl).Err()
}
