package reconnect_test

import (
	"context"
	"testing"
	"time"

	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/callegarimattia/battleship/internal/reconnect"
	"github.com/callegarimattia/battleship/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopPublisher struct{}

func (noopPublisher) Publish(room.Event) {}

func TestMintAndVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	c := reconnect.New([]byte("test-secret"), time.Minute, room.NewRegistry(room.DefaultConfig(), noopPublisher{}, nil), queue.NewMemoryStore())

	token, err := c.Mint("p1")
	require.NoError(t, err)

	playerID, err := c.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "p1", playerID)
}

func TestVerifyRejectsGarbageToken(t *testing.T) {
	t.Parallel()

	c := reconnect.New([]byte("test-secret"), time.Minute, room.NewRegistry(room.DefaultConfig(), noopPublisher{}, nil), queue.NewMemoryStore())

	_, err := c.Verify("not-a-jwt")
	assert.ErrorIs(t, err, reconnect.ErrInvalidToken)
}

func TestResolveFindsActiveRoomAndResumes(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStore()
	rooms := room.NewRegistry(room.DefaultConfig(), noopPublisher{}, nil)
	c := reconnect.New([]byte("test-secret"), time.Minute, rooms, store)

	token, err := c.Mint("p1")
	require.NoError(t, err)

	e := rooms.Create("room-x",
		room.PlayerInit{PlayerID: "p1", Nickname: "Alice", ReconnectToken: token},
		room.PlayerInit{PlayerID: "p2", Nickname: "Bob", ReconnectToken: "tok-2"},
		false,
	)
	require.NoError(t, e.Disconnect("p1"))

	outcome, err := c.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "room", outcome.Kind)
	assert.Equal(t, "room-x", outcome.RoomID)
}

func TestResolveRejectsTokenStillConnected(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStore()
	rooms := room.NewRegistry(room.DefaultConfig(), noopPublisher{}, nil)
	c := reconnect.New([]byte("test-secret"), time.Minute, rooms, store)

	token, err := c.Mint("p1")
	require.NoError(t, err)

	rooms.Create("room-y",
		room.PlayerInit{PlayerID: "p1", Nickname: "Alice", ReconnectToken: token},
		room.PlayerInit{PlayerID: "p2", Nickname: "Bob", ReconnectToken: "tok-2"},
		false,
	)

	_, err = c.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, reconnect.ErrTokenInUse)
}

func TestResolvePromotesParkedEntry(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStore()
	rooms := room.NewRegistry(room.DefaultConfig(), noopPublisher{}, nil)
	c := reconnect.New([]byte("test-secret"), time.Minute, rooms, store)

	token, err := c.Mint("solo")
	require.NoError(t, err)

	require.NoError(t, store.Park(context.Background(), queue.Entry{PlayerID: "solo", Nickname: "Solo", Token: token}, time.Minute))

	outcome, err := c.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "waiting", outcome.Kind)
	assert.Equal(t, "solo", outcome.PlayerID)
}

func TestResolveReturnsNoneForUnknownToken(t *testing.T) {
	t.Parallel()

	store := queue.NewMemoryStore()
	rooms := room.NewRegistry(room.DefaultConfig(), noopPublisher{}, nil)
	c := reconnect.New([]byte("test-secret"), time.Minute, rooms, store)

	token, err := c.Mint("ghost")
	require.NoError(t, err)

	outcome, err := c.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "none", outcome.Kind)
}
