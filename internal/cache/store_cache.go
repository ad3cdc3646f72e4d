package cache

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"suma/internal/repository"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore keeps client storage keys in Redis under "storage:"
func NewRedisStore(client *redis.Client) repository.Store {
	return &redisStore{client: client, prefix: "storage:"}
}

func (s *redisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "redis.get(%s)", key)
	}
	return v, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(s.client.Set(ctx, s.prefix+key, value, 0).Err(), "redis.set(%s)", key)
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return errors.Wrapf(s.client.Del(ctx, s.prefix+key).Err(), "redis.delete(%s)", key)
}
