package ratelimiter_test

import (
	"context"
	"testing"

	"github.com/callegarimattia/battleship/internal/ratelimiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterAllowsUpToBoundThenBlocks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bounds := map[ratelimiter.Kind]ratelimiter.Bound{
		ratelimiter.KindChatSend: {N: 3, Window: 10_000},
	}
	l := ratelimiter.NewMemoryLimiter(ctx, bounds)

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "conn-1", ratelimiter.KindChatSend)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i)
	}

	ok, err := l.Allow(ctx, "conn-1", ratelimiter.KindChatSend)
	require.NoError(t, err)
	assert.False(t, ok, "fourth attempt within the window should be blocked")
}

func TestMemoryLimiterIsolatesConnectionsAndKinds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := ratelimiter.NewMemoryLimiter(ctx, map[ratelimiter.Kind]ratelimiter.Bound{
		ratelimiter.KindChatSend:   {N: 1, Window: 10_000},
		ratelimiter.KindShot:       {N: 1, Window: 10_000},
	})

	ok, err := l.Allow(ctx, "conn-1", ratelimiter.KindChatSend)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Allow(ctx, "conn-2", ratelimiter.KindChatSend)
	require.NoError(t, err)
	assert.True(t, ok, "a different connection has its own bucket")

	ok, err = l.Allow(ctx, "conn-1", ratelimiter.KindShot)
	require.NoError(t, err)
	assert.True(t, ok, "a different action kind has its own bucket")
}

func TestUnboundedKindIsAlwaysAllowed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := ratelimiter.NewMemoryLimiter(ctx, map[ratelimiter.Kind]ratelimiter.Bound{})

	for i := 0; i < 100; i++ {
		ok, err := l.Allow(ctx, "conn-1", ratelimiter.KindSearchJoin)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
