package room

import (
	"errors"

	"github.com/callegarimattia/battleship/internal/chat"
	"github.com/callegarimattia/battleship/internal/protocol"
)

// Sentinel errors returned by Engine operations. The gateway translates
// these into a stable protocol error code via CodeFor.
var (
	ErrUnknownPlayer         = errors.New("room: player not in this room")
	ErrNotInSetup            = errors.New("room: not in setup phase")
	ErrAlreadyReady          = errors.New("room: player already ready")
	ErrInvalidShipPlacement  = errors.New("room: invalid ship placement")
	ErrNotInPlaying          = errors.New("room: not in playing phase")
	ErrNotYourTurn           = errors.New("room: not your turn")
	ErrInvalidCoord          = errors.New("room: coordinate out of bounds")
	ErrAlreadyShot           = errors.New("room: cell already shot")
	ErrReconnectGrace        = errors.New("room: opponent is in reconnect grace")
	ErrRoomOver              = errors.New("room: room is already over")
	ErrReconnectTokenInUse   = errors.New("room: reconnect token already bound to an active session")
	ErrInvalidReconnectToken = errors.New("room: reconnect token does not match")
)

// CodeFor maps a sentinel error returned by the engine to the stable wire
// error code the gateway should report via game:error.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrUnknownPlayer):
		return protocol.CodeRoomMismatch
	case errors.Is(err, chat.ErrInvalidPayload):
		return protocol.CodeChatInvalidPayload
	case errors.Is(err, chat.ErrNotAllowed):
		return protocol.CodeChatNotAllowed
	case errors.Is(err, ErrNotInSetup):
		return protocol.CodeNotInSetup
	case errors.Is(err, ErrAlreadyReady):
		return protocol.CodeInvalidShipPlacement
	case errors.Is(err, ErrInvalidShipPlacement):
		return protocol.CodeInvalidShipPlacement
	case errors.Is(err, ErrNotInPlaying):
		return protocol.CodeNotInPlaying
	case errors.Is(err, ErrNotYourTurn):
		return protocol.CodeNotYourTurn
	case errors.Is(err, ErrInvalidCoord):
		return protocol.CodeInvalidPayload
	case errors.Is(err, ErrAlreadyShot):
		return protocol.CodeAlreadyShot
	case errors.Is(err, ErrReconnectGrace):
		return protocol.CodeReconnectGrace
	case errors.Is(err, ErrReconnectTokenInUse):
		return protocol.CodeReconnectTokenInUse
	case errors.Is(err, ErrInvalidReconnectToken):
		return protocol.CodeReconnectTokenExpired
	default:
		return protocol.CodeGeneral
	}
}
