package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeMatchReturnsOldestTwo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := queue.NewMemoryStore()

	base := time.Now()
	entries := []queue.Entry{
		{PlayerID: "p1", Token: "t1", JoinedAt: base},
		{PlayerID: "p2", Token: "t2", JoinedAt: base.Add(time.Second)},
		{PlayerID: "p3", Token: "t3", JoinedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, s.Upsert(ctx, e))
	}

	a, b, ok, err := s.TakeMatch(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "p1", a.PlayerID)
	assert.Equal(t, "p2", b.PlayerID)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTakeMatchFalseWhenFewerThanTwo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := queue.NewMemoryStore()
	require.NoError(t, s.Upsert(ctx, queue.Entry{PlayerID: "solo", JoinedAt: time.Now()}))

	_, _, ok, err := s.TakeMatch(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTakeTimedOutRemovesOnlyOlderEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := queue.NewMemoryStore()

	now := time.Now()
	require.NoError(t, s.Upsert(ctx, queue.Entry{PlayerID: "old", JoinedAt: now.Add(-time.Minute)}))
	require.NoError(t, s.Upsert(ctx, queue.Entry{PlayerID: "new", JoinedAt: now}))

	taken, err := s.TakeTimedOut(ctx, now.Add(-30*time.Second), 10)
	require.NoError(t, err)
	require.Len(t, taken, 1)
	assert.Equal(t, "old", taken[0].PlayerID)

	remaining, err := s.GetByPlayerID(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, "new", remaining.PlayerID)
}

func TestParkAndPromote(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := queue.NewMemoryStore()

	e := queue.Entry{PlayerID: "p1", Token: "tok", JoinedAt: time.Now()}
	require.NoError(t, s.Upsert(ctx, e))
	require.NoError(t, s.Park(ctx, e, time.Minute))

	_, err := s.GetByPlayerID(ctx, "p1")
	assert.ErrorIs(t, err, queue.ErrNotFound)

	promoted, err := s.PromoteParked(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "p1", promoted.PlayerID)

	_, err = s.GetParked(ctx, "tok")
	assert.ErrorIs(t, err, queue.ErrNotFound)
}

func TestParkedEntryExpiresAfterTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := queue.NewMemoryStore()

	e := queue.Entry{PlayerID: "p1", Token: "tok", JoinedAt: time.Now()}
	require.NoError(t, s.Park(ctx, e, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := s.GetParked(ctx, "tok")
	assert.ErrorIs(t, err, queue.ErrNotFound)
}
