// Package gateway implements C10: the WebSocket session layer that sits
// between a client connection and the room engine / matchmaking queue. It
// owns the per-connection read/write pumps, the identity binding state
// machine (unbound -> queued -> in a room), and the translation between
// protocol.Envelope wire messages and calls into the room/queue/reconnect
// packages.
package gateway

import (
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/callegarimattia/battleship/internal/protocol"
	"github.com/callegarimattia/battleship/internal/room"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 54 * time.Second
	sendBufferSize = 256
)

func isAllowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		log.Printf("gateway: rejecting malformed Origin %q", origin)
		return false
	}

	if r.Host == u.Host {
		return true
	}

	if strings.HasPrefix(u.Host, "localhost:") || strings.HasPrefix(u.Host, "127.0.0.1:") ||
		u.Host == "localhost" || u.Host == "127.0.0.1" {
		return true
	}

	log.Printf("gateway: rejecting WebSocket connection from origin %q", origin)
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isAllowedOrigin,
	EnableCompression: true,
}

// client is one live WebSocket connection. A client starts unbound (no
// PlayerID) and is assigned one the moment search:join resolves an
// identity, per spec.md §4.8/§4.7.
type client struct {
	id   string
	conn *websocket.Conn
	send chan protocol.Envelope

	hub *Hub

	mu       sync.Mutex
	playerID string
	roomID   string
}

func (c *client) setBinding(playerID, roomID string) {
	c.mu.Lock()
	c.playerID = playerID
	c.roomID = roomID
	c.mu.Unlock()
}

func (c *client) binding() (playerID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID, c.roomID
}

func (c *client) deliver(env protocol.Envelope) bool {
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// Hub tracks every live connection and every player-id-to-connection
// binding, and is the one piece of the gateway that implements
// room.Publisher (fan events out to the right socket) and
// matchmaker.Notifier (deliver a queue-stage event to a waiting player).
//
// Connection bookkeeping follows the same register/unregister channel
// pattern as a classic Go WebSocket hub; routing is keyed by player id
// rather than broadcast to everyone, since every event here is addressed.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]*client // connection id -> client
	byPlayerID   map[string]*client // player id -> client, once bound

	register   chan *client
	unregister chan *client

	nextID int
}

// NewHub creates an empty connection hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*client),
		byPlayerID: make(map[string]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run processes register/unregister events until stop is closed.
func (h *Hub) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				if pid, _ := c.binding(); pid != "" {
					if cur, ok := h.byPlayerID[pid]; ok && cur == c {
						delete(h.byPlayerID, pid)
					}
				}
				close(c.send)
			}
			h.mu.Unlock()
		}
	}
}

// bind associates playerID with c, superseding any previous connection
// bound to the same player (e.g. the old socket from before a reconnect).
func (h *Hub) bind(playerID string, c *client) {
	h.mu.Lock()
	h.byPlayerID[playerID] = c
	h.mu.Unlock()
}

func (h *Hub) connectionFor(playerID string) (*client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.byPlayerID[playerID]
	return c, ok
}

// Notify implements matchmaker.Notifier: deliver a queue-stage event to a
// specific player's connection, if one is currently attached.
func (h *Hub) Notify(playerID, eventType string, payload any) {
	c, ok := h.connectionFor(playerID)
	if !ok {
		return
	}
	if !c.deliver(protocol.Envelope{Type: eventType, Data: payload}) {
		log.Printf("gateway: dropped %s for player %s, send buffer full", eventType, playerID)
	}
}

// Publish implements room.Publisher. The engine always addresses an event
// to one slot's player id — per-recipient masking happens inside the
// engine, not here — so there is no broadcast case to handle.
func (h *Hub) Publish(ev room.Event) {
	if ev.ToPlayerID == "" {
		log.Printf("gateway: dropped unaddressed %s event for room %s", ev.Type, ev.RoomID)
		return
	}
	h.deliverTo(ev.ToPlayerID, protocol.Envelope{Type: ev.Type, Data: ev.Payload})
}

func (h *Hub) deliverTo(playerID string, env protocol.Envelope) {
	c, ok := h.connectionFor(playerID)
	if !ok {
		return
	}
	if !c.deliver(env) {
		log.Printf("gateway: dropped %s for player %s, send buffer full", env.Type, playerID)
	}
}
