package cache

import (
	"context"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

// EventCounter ranks collected event types by volume
type EventCounter interface {
	Increment(ctx context.Context, counts map[string]int) error
	Top(ctx context.Context, limit int) ([]EventCount, error)
}

// EventCount represents a single ranked event type
type EventCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	Rank  int    `json:"rank"`
}

const eventCounterKey = "metrics:event_types"

type redisEventCounter struct {
	client *redis.Client
}

// NewRedisEventCounter keeps the counters in a Redis ZSET
func NewRedisEventCounter(client *redis.Client) EventCounter {
	return &redisEventCounter{client: client}
}

func (c *redisEventCounter) Increment(ctx context.Context, counts map[string]int) error {
	pipe := c.client.TxPipeline()
	for eventType, n := range counts {
		pipe.ZIncrBy(ctx, eventCounterKey, float64(n), eventType)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisEventCounter) Top(ctx context.Context, limit int) ([]EventCount, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, eventCounterKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]EventCount, len(results))
	for i, z := range results {
		entries[i] = EventCount{
			Type:  z.Member.(string),
			Count: int(z.Score),
			Rank:  i + 1,
		}
	}
	return entries, nil
}

type memoryEventCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryEventCounter creates a process-local counter
func NewMemoryEventCounter() EventCounter {
	return &memoryEventCounter{counts: make(map[string]int)}
}

func (c *memoryEventCounter) Increment(_ context.Context, counts map[string]int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for eventType, n := range counts {
		c.counts[eventType] += n
	}
	return nil
}

func (c *memoryEventCounter) Top(_ context.Context, limit int) ([]EventCount, error) {
	c.mu.Lock()
	entries := make([]EventCount, 0, len(c.counts))
	for eventType, n := range c.counts {
		entries = append(entries, EventCount{Type: eventType, Count: n})
	}
	c.mu.Unlock()

	// same order as ZREVRANGE: score desc, then member desc
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Type > entries[j].Type
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
