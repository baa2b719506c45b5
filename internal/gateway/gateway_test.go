package gateway_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/callegarimattia/battleship/internal/env"
	"github.com/callegarimattia/battleship/internal/gateway"
	"github.com/callegarimattia/battleship/internal/matchmaker"
	"github.com/callegarimattia/battleship/internal/model"
	"github.com/callegarimattia/battleship/internal/protocol"
	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/callegarimattia/battleship/internal/reconnect"
	"github.com/callegarimattia/battleship/internal/room"
)

// wsClient wraps a raw gorilla/websocket connection with helpers for
// sending typed envelopes and waiting for a specific event type.
type wsClient struct {
	t    *testing.T
	conn *gorillaws.Conn
}

func dial(t *testing.T, url string) *wsClient {
	t.Helper()
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(eventType string, data any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(protocol.Envelope{Type: eventType, Data: data}))
}

// await reads envelopes until one matches wantType or the deadline passes.
func (c *wsClient) await(wantType string, deadline time.Duration) protocol.Envelope {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(deadline))
	for {
		var env protocol.Envelope
		err := c.conn.ReadJSON(&env)
		require.NoError(c.t, err, "waiting for %s", wantType)
		if env.Type == wantType {
			return env
		}
	}
}

func fullFleetSpec() []model.SerializedShip {
	return []model.SerializedShip{
		{Size: 4, Origin: model.Coordinate{X: 0, Y: 0}, Orientation: model.Horizontal},
		{Size: 3, Origin: model.Coordinate{X: 0, Y: 2}, Orientation: model.Horizontal},
		{Size: 3, Origin: model.Coordinate{X: 0, Y: 4}, Orientation: model.Horizontal},
		{Size: 2, Origin: model.Coordinate{X: 0, Y: 6}, Orientation: model.Horizontal},
		{Size: 2, Origin: model.Coordinate{X: 3, Y: 6}, Orientation: model.Horizontal},
		{Size: 2, Origin: model.Coordinate{X: 6, Y: 6}, Orientation: model.Horizontal},
		{Size: 1, Origin: model.Coordinate{X: 0, Y: 8}, Orientation: model.Horizontal},
		{Size: 1, Origin: model.Coordinate{X: 2, Y: 8}, Orientation: model.Horizontal},
		{Size: 1, Origin: model.Coordinate{X: 4, Y: 8}, Orientation: model.Horizontal},
		{Size: 1, Origin: model.Coordinate{X: 6, Y: 8}, Orientation: model.Horizontal},
	}
}

func newTestHarness(t *testing.T) (url string, store queue.Store, rooms *room.Registry) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store = queue.NewMemoryStore()
	hub := gateway.NewHub()
	rooms = room.NewRegistry(room.DefaultConfig(), hub, nil)
	rc := reconnect.New([]byte("test-secret"), time.Minute, rooms, store)
	gw := gateway.New(ctx, hub, store, rooms, rc, nil, &env.Config{ReconnectGrace: 30 * time.Second})

	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	go gw.Run(stop)

	mm := matchmaker.New(store, rooms, hub, matchmaker.Config{
		TickInterval: 10 * time.Millisecond,
		SoloTimeout:  time.Hour,
		BotBatchSize: 8,
	})
	go mm.Run(ctx)

	ts := httptest.NewServer(gw)
	t.Cleanup(ts.Close)

	return "ws" + strings.TrimPrefix(ts.URL, "http"), store, rooms
}

func TestTwoPlayersMatchAndPlaceShips(t *testing.T) {
	t.Parallel()

	url, _, _ := newTestHarness(t)

	alice := dial(t, url)
	bob := dial(t, url)

	alice.send(protocol.EventSearchJoin, protocol.SearchJoinPayload{Nickname: "Alice"})
	bob.send(protocol.EventSearchJoin, protocol.SearchJoinPayload{Nickname: "Bob"})

	alice.await(protocol.EventQueued, time.Second)
	bob.await(protocol.EventQueued, time.Second)

	matched := alice.await(protocol.EventMatched, 2*time.Second)
	bob.await(protocol.EventMatched, 2*time.Second)
	require.NotEmpty(t, matched.Type)

	alice.send(protocol.EventPlaceShips, protocol.PlaceShipsPayload{Board: fullFleetSpec()})
	bob.send(protocol.EventPlaceShips, protocol.PlaceShipsPayload{Board: fullFleetSpec()})

	state := alice.await(protocol.EventGameState, 2*time.Second)
	require.NotNil(t, state.Data)
}

func TestUnknownEventProducesError(t *testing.T) {
	t.Parallel()

	url, _, _ := newTestHarness(t)
	alice := dial(t, url)

	alice.send("not:a:real:event", map[string]string{})

	env := alice.await(protocol.EventGameError, time.Second)
	require.Equal(t, protocol.CodeInvalidPayload, env.Data.(map[string]interface{})["code"])
}
