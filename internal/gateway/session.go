package gateway

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/callegarimattia/battleship/internal/chat"
	"github.com/callegarimattia/battleship/internal/protocol"
	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/callegarimattia/battleship/internal/ratelimiter"
	"github.com/callegarimattia/battleship/internal/reconnect"
	"github.com/callegarimattia/battleship/internal/room"
)

// session owns message dispatch for one connection: payload decoding,
// rate limiting, the unbound/queued/room identity state machine, and
// translating sentinel errors into game:error envelopes.
type session struct {
	c *client
	g *Gateway
}

func (s *session) readPump() {
	defer func() {
		s.onDisconnect()
		s.g.hub.unregister <- s.c
		s.c.conn.Close()
	}()

	s.c.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.c.conn.SetPongHandler(func(string) error {
		s.c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env protocol.Envelope
		if err := s.c.conn.ReadJSON(&env); err != nil {
			break
		}
		s.dispatch(env)
	}
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-s.c.send:
			s.c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			s.c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) dispatch(env protocol.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("gateway: recovered panic handling %s: %v", env.Type, r)
		}
	}()

	if !s.allow(ratelimiter.Kind(rateKindFor(env.Type))) {
		if env.Type == protocol.EventChatSend {
			s.sendChatRateLimited()
		} else {
			s.sendError("", protocol.CodeRateLimited, "rate limit exceeded")
		}
		return
	}

	switch env.Type {
	case protocol.EventSearchJoin:
		s.handleSearchJoin(env.Data)
	case protocol.EventSearchCancel:
		s.handleSearchCancel()
	case protocol.EventPlaceShips:
		s.handlePlaceShips(env.Data)
	case protocol.EventShot:
		s.handleShot(env.Data)
	case protocol.EventCancel:
		s.handleCancel(env.Data)
	case protocol.EventChatSend:
		s.handleChatSend(env.Data)
	default:
		s.countInvalid()
		s.sendError("", protocol.CodeInvalidPayload, "unknown event type")
	}
}

// rateKindFor maps a wire event name to its rate-limit bucket. Unknown
// events still consume the invalid_requests bucket.
func rateKindFor(eventType string) string {
	switch eventType {
	case protocol.EventSearchJoin:
		return string(ratelimiter.KindSearchJoin)
	case protocol.EventPlaceShips:
		return string(ratelimiter.KindPlaceShips)
	case protocol.EventShot:
		return string(ratelimiter.KindShot)
	case protocol.EventCancel:
		return string(ratelimiter.KindCancel)
	case protocol.EventChatSend:
		return string(ratelimiter.KindChatSend)
	default:
		return string(ratelimiter.KindInvalidRequests)
	}
}

func (s *session) allow(kind ratelimiter.Kind) bool {
	if s.g.limiter == nil {
		return true
	}
	ok, err := s.g.limiter.Allow(s.g.ctx, s.c.id, kind)
	if err != nil {
		log.Printf("gateway: rate limiter error: %v", err)
		return true
	}
	return ok
}

func (s *session) countInvalid() {
	if !s.allow(ratelimiter.KindInvalidRequests) {
		s.sendError("", protocol.CodeSoftBan, "too many invalid requests")
		s.c.conn.Close()
	}
}

// sendChatRateLimited delivers a chat:message-channel notice for a tripped
// chat rate limit. Unlike every other rate limit, this one never produces a
// game:error envelope.
func (s *session) sendChatRateLimited() {
	_, roomID := s.c.binding()
	s.c.deliver(protocol.Envelope{Type: protocol.EventChatMessage, Data: protocol.ChatMessagePayload{
		RoomID: roomID,
		Message: chat.Message{
			Kind:      chat.KindSystem,
			Code:      protocol.CodeChatRateLimited,
			Text:      "chat rate limit exceeded",
			CreatedAt: time.Now(),
		},
	}})
}

func (s *session) sendError(roomID, code, message string) {
	s.c.deliver(protocol.Envelope{Type: protocol.EventGameError, Data: protocol.ErrorPayload{
		RoomID: roomID, Code: code, Message: message,
	}})
}

func decodePayload[T any](raw any) (T, error) {
	var out T
	b, err := json.Marshal(raw)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}

func (s *session) handleSearchJoin(raw any) {
	payload, err := decodePayload[protocol.SearchJoinPayload](raw)
	if err != nil {
		s.countInvalid()
		s.sendError("", protocol.CodeInvalidPayload, "malformed search:join payload")
		return
	}

	if payload.ReconnectToken != "" {
		if s.resumeFromToken(payload.ReconnectToken) {
			return
		}
	}

	playerID := uuid.NewString()
	nickname := payload.Nickname
	if nickname == "" {
		nickname = "Captain"
	}

	token, err := s.g.reconnect.Mint(playerID)
	if err != nil {
		s.sendError("", protocol.CodeGeneral, "could not issue reconnect token")
		return
	}

	entry := queue.Entry{PlayerID: playerID, Nickname: nickname, JoinedAt: time.Now(), Token: token}
	if err := s.g.store.Upsert(s.g.ctx, entry); err != nil {
		s.sendError("", protocol.CodeGeneral, "could not join queue")
		return
	}

	s.c.setBinding(playerID, "")
	s.g.hub.bind(playerID, s.c)

	s.c.deliver(protocol.Envelope{Type: protocol.EventQueued, Data: protocol.QueuedPayload{
		PlayerID:       playerID,
		JoinedAt:       entry.JoinedAt,
		ReconnectToken: token,
	}})
}

// resumeFromToken attempts spec.md §4.8's reconnect lookup. Returns true if
// it fully handled the connection (bound to a room, promoted from parked,
// or rejected as already in use); false means the token was invalid,
// expired or matched nothing, reconnect_token_expired has been sent, and the
// caller should fall through to treating this as a fresh join.
func (s *session) resumeFromToken(token string) bool {
	outcome, err := s.g.reconnect.Resolve(s.g.ctx, token)
	if err != nil {
		if errors.Is(err, reconnect.ErrTokenInUse) {
			s.sendError("", protocol.CodeReconnectTokenInUse, "reconnect token already bound to an active session")
			return true
		}
		s.sendError("", protocol.CodeReconnectTokenExpired, "reconnect token is invalid or expired")
		return false
	}

	switch outcome.Kind {
	case "room":
		s.c.setBinding(outcome.PlayerID, outcome.RoomID)
		s.g.hub.bind(outcome.PlayerID, s.c)

		e, ok := s.g.rooms.Get(outcome.RoomID)
		if !ok {
			s.sendError("", protocol.CodeGeneral, "room no longer exists")
			return true
		}
		snap := e.Snapshot()
		opponent := opponentNickname(snap, outcome.PlayerID)
		s.c.deliver(protocol.Envelope{Type: protocol.EventMatched, Data: protocol.MatchedPayload{
			RoomID: outcome.RoomID, Opponent: opponent, VsBot: snap.VsBot,
			ReconnectToken: token, Message: "reconnected",
		}})
		s.c.deliver(protocol.Envelope{Type: protocol.EventChatHistory, Data: protocol.ChatHistoryPayload{
			RoomID: outcome.RoomID, Messages: e.ChatHistory(),
		}})
		return true
	case "waiting":
		s.c.setBinding(outcome.PlayerID, "")
		s.g.hub.bind(outcome.PlayerID, s.c)
		s.c.deliver(protocol.Envelope{Type: protocol.EventQueued, Data: protocol.QueuedPayload{
			PlayerID: outcome.PlayerID, ReconnectToken: token, Recovered: true,
		}})
		return true
	default:
		s.sendError("", protocol.CodeReconnectTokenExpired, "reconnect token is invalid or expired")
		return false
	}
}

func opponentNickname(snap room.Room, playerID string) string {
	for _, slot := range snap.Slots {
		if slot != nil && slot.PlayerID != playerID {
			return slot.Nickname
		}
	}
	return ""
}

func (s *session) handleSearchCancel() {
	playerID, roomID := s.c.binding()
	if playerID == "" {
		return
	}
	if roomID != "" {
		return
	}
	if err := s.g.store.RemoveByPlayerID(s.g.ctx, playerID); err != nil {
		s.sendError("", protocol.CodeGeneral, "could not leave queue")
		return
	}
	s.c.deliver(protocol.Envelope{Type: protocol.EventCancelled, Data: protocol.CancelledPayload{
		Reason: "manual_cancel",
	}})
}

func (s *session) engineFor(roomID string) (*room.Engine, bool) {
	if roomID == "" {
		return nil, false
	}
	return s.g.rooms.Get(roomID)
}

func (s *session) handlePlaceShips(raw any) {
	playerID, roomID := s.c.binding()
	payload, err := decodePayload[protocol.PlaceShipsPayload](raw)
	if err != nil {
		s.countInvalid()
		s.sendError(roomID, protocol.CodeInvalidPayload, "malformed game:place_ships payload")
		return
	}
	if payload.RoomID != "" && payload.RoomID != roomID {
		s.sendError(payload.RoomID, protocol.CodeRoomMismatch, "not your room")
		return
	}

	e, ok := s.engineFor(roomID)
	if !ok {
		s.sendError(roomID, protocol.CodeRoomMismatch, "no active room")
		return
	}
	if err := e.PlaceShips(playerID, payload.Board); err != nil {
		s.sendError(roomID, room.CodeFor(err), err.Error())
	}
}

func (s *session) handleShot(raw any) {
	playerID, roomID := s.c.binding()
	payload, err := decodePayload[protocol.ShotPayload](raw)
	if err != nil {
		s.countInvalid()
		s.sendError(roomID, protocol.CodeInvalidPayload, "malformed game:shot payload")
		return
	}
	if payload.RoomID != "" && payload.RoomID != roomID {
		s.sendError(payload.RoomID, protocol.CodeRoomMismatch, "not your room")
		return
	}

	e, ok := s.engineFor(roomID)
	if !ok {
		s.sendError(roomID, protocol.CodeRoomMismatch, "no active room")
		return
	}
	if err := e.Shoot(playerID, payload.Coord); err != nil {
		s.sendError(roomID, room.CodeFor(err), err.Error())
	}
}

func (s *session) handleCancel(raw any) {
	playerID, roomID := s.c.binding()
	payload, err := decodePayload[protocol.CancelPayload](raw)
	if err != nil {
		s.countInvalid()
		s.sendError(roomID, protocol.CodeInvalidPayload, "malformed game:cancel payload")
		return
	}
	if payload.RoomID != "" && payload.RoomID != roomID {
		s.sendError(payload.RoomID, protocol.CodeRoomMismatch, "not your room")
		return
	}

	e, ok := s.engineFor(roomID)
	if !ok {
		s.sendError(roomID, protocol.CodeRoomMismatch, "no active room")
		return
	}
	if err := e.Cancel(playerID); err != nil {
		s.sendError(roomID, room.CodeFor(err), err.Error())
	}
}

func (s *session) handleChatSend(raw any) {
	playerID, roomID := s.c.binding()
	payload, err := decodePayload[protocol.ChatSendPayload](raw)
	if err != nil {
		s.countInvalid()
		s.sendError(roomID, protocol.CodeChatInvalidPayload, "malformed chat:send payload")
		return
	}
	if payload.RoomID != "" && payload.RoomID != roomID {
		s.sendError(payload.RoomID, protocol.CodeChatRoomMismatch, "not your room")
		return
	}

	e, ok := s.engineFor(roomID)
	if !ok {
		s.sendError(roomID, protocol.CodeChatRoomMismatch, "no active room")
		return
	}

	draft := chat.Draft{Kind: payload.Kind, Text: payload.Text, Emoji: payload.Emoji, GifID: payload.GifID}
	if err := e.SendChat(playerID, draft); err != nil {
		s.sendError(roomID, room.CodeFor(err), err.Error())
	}
}

// onDisconnect notifies the room engine (if any) that this player's socket
// dropped, starting its reconnect grace window, and drops any waiting
// queue entry into the parked set so a reconnect can resume it.
func (s *session) onDisconnect() {
	playerID, roomID := s.c.binding()
	if playerID == "" {
		return
	}

	if roomID != "" {
		if e, ok := s.engineFor(roomID); ok {
			_ = e.Disconnect(playerID)
		}
		return
	}

	entry, err := s.g.store.GetByPlayerID(s.g.ctx, playerID)
	if err != nil {
		return
	}
	_ = s.g.store.RemoveByPlayerID(s.g.ctx, playerID)
	_ = s.g.store.Park(s.g.ctx, entry, s.g.cfg.ReconnectGrace)
}
