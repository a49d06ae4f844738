package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSequence implements ports.SequenceGenerator on a Redis counter.
// INCR is atomic, so route numbers stay unique and monotonic across service
// instances without coordinating through the database.
type RedisSequence struct {
	client *redis.Client
	prefix string
}

func NewRedisSequence(client *redis.Client, prefix string) *RedisSequence {
	if prefix == "" {
		prefix = "dispatch:seq"
	}
	return &RedisSequence{client: client, prefix: prefix}
}

func (s *RedisSequence) Next(ctx context.Context, name string) (int64, error) {
	n, err := s.client.Incr(ctx, s.prefix+":"+name).Result()
	if err != nil {
		return 0, fmt.Errorf("next sequence %q: %w", name, err)
	}
	return n, nil
}
