package cache

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"suma/internal/repository"
)

// CommentCache memoizes formatted AI comments by cache key.
// Entries never expire; a miss is (""; false; nil).
type CommentCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, comment string) error
}

type memoryCommentCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCommentCache creates a process-lifetime comment cache
func NewMemoryCommentCache() CommentCache {
	return &memoryCommentCache{entries: make(map[string]string)}
}

func (c *memoryCommentCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCommentCache) Set(_ context.Context, key, comment string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = comment
	return nil
}

type redisCommentCache struct {
	client *redis.Client
}

// NewRedisCommentCache shares formatted comments between server instances
func NewRedisCommentCache(client *redis.Client) CommentCache {
	return &redisCommentCache{client: client}
}

func (c *redisCommentCache) key(cacheKey string) string {
	return "ai:comment:" + cacheKey
}

func (c *redisCommentCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *redisCommentCache) Set(ctx context.Context, key, comment string) error {
	// no TTL: cache entries are never invalidated
	return c.client.Set(ctx, c.key(key), comment, 0).Err()
}

type storeCommentCache struct {
	store  repository.Store
	prefix string
}

// NewStoreCommentCache keeps comments in a client storage backend, so a
// local profile remembers them across runs. Entries are namespaced by the
// language tag of the formatter that produced them.
func NewStoreCommentCache(store repository.Store, lang string) CommentCache {
	return &storeCommentCache{store: store, prefix: "suma-ai-comment:" + lang + ":"}
}

func (c *storeCommentCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.store.Get(ctx, c.prefix+key)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *storeCommentCache) Set(ctx context.Context, key, comment string) error {
	return c.store.Set(ctx, c.prefix+key, comment)
}
