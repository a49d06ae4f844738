package sequence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSequence(t *testing.T) *RedisSequence {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSequence(client, "test:seq")
}

func TestNextIsMonotonic(t *testing.T) {
	seq := newTestSequence(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		n, err := seq.Next(ctx, "route_number")
		require.NoError(t, err)
		require.Greater(t, n, prev)
		prev = n
	}
}

func TestNamedCountersAreIndependent(t *testing.T) {
	seq := newTestSequence(t)
	ctx := context.Background()

	a1, err := seq.Next(ctx, "a")
	require.NoError(t, err)
	a2, err := seq.Next(ctx, "a")
	require.NoError(t, err)
	b1, err := seq.Next(ctx, "b")
	require.NoError(t, err)

	require.Equal(t, int64(1), a1)
	require.Equal(t, int64(2), a2)
	require.Equal(t, int64(1), b1)
}

func TestNextFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	seq := NewRedisSequence(client, "")

	mr.Close()

	_, err := seq.Next(context.Background(), "route_number")
	require.Error(t, err)
}
