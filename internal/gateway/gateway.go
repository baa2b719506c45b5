package gateway

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/callegarimattia/battleship/internal/env"
	"github.com/callegarimattia/battleship/internal/protocol"
	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/callegarimattia/battleship/internal/ratelimiter"
	"github.com/callegarimattia/battleship/internal/reconnect"
	"github.com/callegarimattia/battleship/internal/room"
)

// Gateway is the C10 session gateway: it upgrades incoming HTTP requests to
// WebSocket connections and wires each resulting session to the shared
// queue store, room registry, reconnect coordinator, and rate limiter.
type Gateway struct {
	hub       *Hub
	store     queue.Store
	rooms     *room.Registry
	reconnect *reconnect.Coordinator
	limiter   ratelimiter.Limiter
	cfg       *env.Config
	ctx       context.Context
}

// New builds a Gateway around an already-constructed Hub. The caller builds
// the Hub first (with NewHub) and wires it into the room registry as its
// Publisher and into the matchmaker as its Notifier before calling New,
// since both of those need a Hub to exist before a room or a queue entry
// does. Run the returned Gateway with Hub.Run before serving traffic.
func New(ctx context.Context, hub *Hub, store queue.Store, rooms *room.Registry, rc *reconnect.Coordinator, limiter ratelimiter.Limiter, cfg *env.Config) *Gateway {
	return &Gateway{
		hub:       hub,
		store:     store,
		rooms:     rooms,
		reconnect: rc,
		limiter:   limiter,
		cfg:       cfg,
		ctx:       ctx,
	}
}

// Hub exposes the connection hub so callers can wire it as a
// room.Publisher (room engines) and matchmaker.Notifier (the matchmaker).
func (g *Gateway) Hub() *Hub { return g.hub }

// Run starts the hub's connection-bookkeeping loop. Blocks until stop is
// closed; intended to run in its own goroutine.
func (g *Gateway) Run(stop <-chan struct{}) {
	g.hub.Run(stop)
}

// ServeHTTP upgrades the request to a WebSocket connection and spawns the
// read/write pumps for the new session.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gateway: upgrade failed: %v", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan protocol.Envelope, sendBufferSize),
		hub:  g.hub,
	}

	g.hub.register <- c

	s := &session{c: c, g: g}
	go s.writePump()
	go s.readPump()
}
