// Package client provides a WebSocket client for the Battleship gateway
// protocol, used by the CLI and the Discord relay.
package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/callegarimattia/battleship/internal/chat"
	"github.com/callegarimattia/battleship/internal/model"
	"github.com/callegarimattia/battleship/internal/protocol"
)

// Client is a single WebSocket connection to the gateway. Every inbound
// envelope is pushed onto Events; callers range over it to drive their own
// UI loop.
type Client struct {
	conn   *websocket.Conn
	Events <-chan protocol.Envelope
}

// Connect dials the gateway's WebSocket endpoint and starts its read pump.
// baseURL may be an http(s) or ws(s) URL; path defaults to "/ws".
func Connect(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if u.Path == "" {
		u.Path = "/ws"
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}

	events := make(chan protocol.Envelope, 16)
	c := &Client{conn: conn, Events: events}

	go c.readPump(events)

	return c, nil
}

func (c *Client) readPump(events chan<- protocol.Envelope) {
	defer close(events)
	defer c.conn.Close()

	for {
		var env protocol.Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		events <- env
	}
}

// Close terminates the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) send(eventType string, data any) error {
	return c.conn.WriteJSON(protocol.Envelope{Type: eventType, Data: data})
}

// JoinQueue sends search:join, optionally presenting a reconnect token
// from a previous session.
func (c *Client) JoinQueue(nickname, reconnectToken string) error {
	return c.send(protocol.EventSearchJoin, protocol.SearchJoinPayload{
		Nickname: nickname, ReconnectToken: reconnectToken,
	})
}

// CancelQueue sends search:cancel.
func (c *Client) CancelQueue() error {
	return c.send(protocol.EventSearchCancel, protocol.CancelPayload{})
}

// PlaceShips sends game:place_ships for roomID.
func (c *Client) PlaceShips(roomID string, board []model.SerializedShip) error {
	return c.send(protocol.EventPlaceShips, protocol.PlaceShipsPayload{RoomID: roomID, Board: board})
}

// Shoot sends game:shot at coord in roomID.
func (c *Client) Shoot(roomID string, coord model.Coordinate) error {
	return c.send(protocol.EventShot, protocol.ShotPayload{RoomID: roomID, Coord: coord})
}

// Cancel sends game:cancel for roomID.
func (c *Client) Cancel(roomID string) error {
	return c.send(protocol.EventCancel, protocol.CancelPayload{RoomID: roomID})
}

// SendChat sends chat:send for roomID.
func (c *Client) SendChat(roomID string, draft chat.Draft) error {
	return c.send(protocol.EventChatSend, protocol.ChatSendPayload{
		RoomID: roomID, Kind: draft.Kind, Text: draft.Text, Emoji: draft.Emoji, GifID: draft.GifID,
	})
}

// Decode re-marshals an envelope's any-typed Data (decoded by
// encoding/json into a generic map) into a concrete payload struct.
func Decode[T any](env protocol.Envelope) (T, error) {
	var out T
	b, err := json.Marshal(env.Data)
	if err != nil {
		return out, err
	}
	return out, json.Unmarshal(b, &out)
}

// WaitFor blocks until an envelope of wantType arrives, discarding everything
// else in between. It returns early with ok=false on a game:error envelope
// (returned as-is), when the channel closes, or when timeout elapses. For CLI/bot
// call sites that drive a synchronous request/response shape over the
// otherwise asynchronous event stream.
func (c *Client) WaitFor(wantType string, timeout time.Duration) (protocol.Envelope, bool) {
	deadline := time.After(timeout)
	for {
		select {
		case env, ok := <-c.Events:
			if !ok {
				return protocol.Envelope{}, false
			}
			if env.Type == wantType || strings.HasPrefix(env.Type, "game:error") {
				return env, env.Type == wantType
			}
		case <-deadline:
			return protocol.Envelope{}, false
		}
	}
}
