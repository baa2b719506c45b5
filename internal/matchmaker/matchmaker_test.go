package matchmaker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/callegarimattia/battleship/internal/matchmaker"
	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/callegarimattia/battleship/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
}

func (n *recordingNotifier) Notify(playerID, eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, playerID+":"+eventType)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type noopPublisher struct{}

func (noopPublisher) Publish(room.Event) {}

func TestMatchmakerPairsTwoWaitingPlayers(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), queue.Entry{PlayerID: "p1", Nickname: "Alice", JoinedAt: time.Now()}))
	require.NoError(t, store.Upsert(context.Background(), queue.Entry{PlayerID: "p2", Nickname: "Bob", JoinedAt: time.Now()}))

	rooms := room.NewRegistry(room.DefaultConfig(), noopPublisher{}, nil)
	notifier := &recordingNotifier{}
	cfg := matchmaker.DefaultConfig()
	cfg.TickInterval = 10 * time.Millisecond

	mm := matchmaker.New(store, rooms, notifier, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	go mm.Run(ctx)

	require.Eventually(t, func() bool {
		return rooms.Len() == 1
	}, time.Second, 5*time.Millisecond)

	assert.GreaterOrEqual(t, notifier.count(), 2)

	n, err := store.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMatchmakerFallsBackSoloPlayerToBot(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStore()
	require.NoError(t, store.Upsert(context.Background(), queue.Entry{
		PlayerID: "solo", Nickname: "Solo", JoinedAt: time.Now().Add(-time.Hour),
	}))

	rooms := room.NewRegistry(room.DefaultConfig(), noopPublisher{}, nil)
	notifier := &recordingNotifier{}
	cfg := matchmaker.DefaultConfig()
	cfg.TickInterval = 10 * time.Millisecond
	cfg.SoloTimeout = time.Millisecond

	mm := matchmaker.New(store, rooms, notifier, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	go mm.Run(ctx)

	require.Eventually(t, func() bool {
		return rooms.Len() == 1
	}, time.Second, 5*time.Millisecond)
}
