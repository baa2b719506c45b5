// Package protocol defines the wire-level event names, payload shapes, and
// error codes shared by the gateway, matchmaker, room engine, reconnect
// coordinator, and chat broker. Keeping these in a leaf package lets each of
// those depend on the wire shapes without depending on each other.
package protocol

import (
	"time"

	"github.com/callegarimattia/battleship/internal/chat"
	"github.com/callegarimattia/battleship/internal/model"
)

// Inbound (client -> server) event names.
const (
	EventSearchJoin    = "search:join"
	EventSearchCancel  = "search:cancel"
	EventPlaceShips    = "game:place_ships"
	EventShot          = "game:shot"
	EventCancel        = "game:cancel"
	EventChatSend      = "chat:send"
)

// Outbound (server -> client) event names.
const (
	EventQueued      = "queue:queued"
	EventMatched     = "queue:matched"
	EventGameState   = "game:state"
	EventGameTurn    = "game:turn"
	EventShotResult  = "game:shot_result"
	EventGameOver    = "game:over"
	EventCancelled   = "game:cancelled"
	EventGameError   = "game:error"
	EventChatHistory = "chat:history"
	EventChatMessage = "chat:message"
)

// Stable error codes, surfaced via game:error (chat_rate_limited is carried
// in a chat:message instead).
const (
	CodeReconnectGrace        = "reconnect_grace"
	CodeReconnectRestored     = "reconnect_restored"
	CodeReconnectTokenExpired = "reconnect_token_expired"
	CodeReconnectTokenInUse   = "reconnect_token_in_use"
	CodeInvalidPayload        = "invalid_payload"
	CodeInvalidShipPlacement  = "invalid_ship_placement"
	CodeNotYourTurn           = "not_your_turn"
	CodeAlreadyShot           = "already_shot"
	CodeNotInPlaying          = "not_in_playing"
	CodeNotInSetup            = "not_in_setup"
	CodeRoomMismatch          = "room_mismatch"
	CodeRateLimited           = "rate_limited"
	CodeChatInvalidPayload    = "chat_invalid_payload"
	CodeChatRateLimited       = "chat_rate_limited"
	CodeChatNotAllowed        = "chat_not_allowed"
	CodeChatRoomMismatch      = "chat_room_mismatch"
	CodeSoftBan               = "soft_ban"
	CodeGeneral               = "general"
)

// Envelope is the outer shape of every message on the wire: a typed event
// name plus a structured payload.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// --- Inbound payloads ---

// SearchJoinPayload is the body of search:join.
type SearchJoinPayload struct {
	Nickname       string `json:"nickname,omitempty"`
	ReconnectToken string `json:"reconnectToken,omitempty"`
}

// PlaceShipsPayload is the body of game:place_ships.
type PlaceShipsPayload struct {
	RoomID string                 `json:"roomId"`
	Board  []model.SerializedShip `json:"board"`
}

// ShotPayload is the body of game:shot.
type ShotPayload struct {
	RoomID string           `json:"roomId"`
	Coord  model.Coordinate `json:"coord"`
}

// CancelPayload is the body of game:cancel.
type CancelPayload struct {
	RoomID string `json:"roomId"`
}

// ChatSendPayload is the body of chat:send.
type ChatSendPayload struct {
	RoomID string    `json:"roomId"`
	Kind   chat.Kind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Emoji  string    `json:"emoji,omitempty"`
	GifID  string    `json:"gifId,omitempty"`
}

// --- Outbound payloads ---

// QueuedPayload is the body of queue:queued.
type QueuedPayload struct {
	PlayerID       string    `json:"playerId"`
	JoinedAt       time.Time `json:"joinedAt"`
	TimeoutMs      int64     `json:"timeoutMs"`
	ReconnectToken string    `json:"reconnectToken"`
	Recovered      bool      `json:"recovered,omitempty"`
	Message        string    `json:"message,omitempty"`
}

// MatchedPayload is the body of queue:matched.
type MatchedPayload struct {
	RoomID         string `json:"roomId"`
	Opponent       string `json:"opponent"`
	VsBot          bool   `json:"vsBot"`
	ReconnectToken string `json:"reconnectToken"`
	YouReady       bool   `json:"youReady"`
	OpponentReady  bool   `json:"opponentReady"`
	Message        string `json:"message,omitempty"`
}

// StatePayload is the body of game:state: a full per-player snapshot.
type StatePayload struct {
	RoomID        string                `json:"roomId"`
	Phase         string                `json:"phase"`
	Turn          string                `json:"turn,omitempty"`
	YourBoard     model.SerializedBoard `json:"yourBoard"`
	OpponentBoard model.SerializedBoard `json:"opponentBoard"`
	YouReady      bool                  `json:"youReady"`
	OpponentReady bool                  `json:"opponentReady"`
	YourShots     int                   `json:"yourShots"`
	OpponentShots int                   `json:"opponentShots"`
}

// TurnPayload is the body of game:turn.
type TurnPayload struct {
	RoomID    string `json:"roomId"`
	Turn      string `json:"turn"`
	YourTurn  bool   `json:"yourTurn"`
	Phase     string `json:"phase"`
	GameOver  bool   `json:"gameOver,omitempty"`
	Winner    string `json:"winner,omitempty"`
}

// ShotResultPayload is the body of game:shot_result.
type ShotResultPayload struct {
	RoomID   string           `json:"roomId"`
	Shooter  string           `json:"shooter"`
	Coord    model.Coordinate `json:"coord"`
	Outcome  string           `json:"outcome"`
	ShipID   *int             `json:"shipId,omitempty"`
	GameOver bool             `json:"gameOver,omitempty"`
}

// OverPayload is the body of game:over.
type OverPayload struct {
	RoomID     string `json:"roomId"`
	Winner     string `json:"winner,omitempty"`
	Phase      string `json:"phase"`
	TotalShots int    `json:"totalShots"`
	Reason     string `json:"reason"`
	Message    string `json:"message,omitempty"`
}

// CancelledPayload is the body of game:cancelled.
type CancelledPayload struct {
	RoomID  string `json:"roomId,omitempty"`
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// ErrorPayload is the body of game:error.
type ErrorPayload struct {
	RoomID      string `json:"roomId,omitempty"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	RemainingMs int64  `json:"remainingMs,omitempty"`
}

// ChatHistoryPayload is the body of chat:history.
type ChatHistoryPayload struct {
	RoomID   string         `json:"roomId"`
	Messages []chat.Message `json:"messages"`
}

// ChatMessagePayload is the body of chat:message.
type ChatMessagePayload struct {
	RoomID  string       `json:"roomId"`
	Message chat.Message `json:"message"`
}
