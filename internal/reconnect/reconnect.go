// Package reconnect implements C8: minting and verifying the signed
// reconnect token a client presents to rebind to its room, queue, or parked
// entry after a dropped connection, and the four-step lookup order spec.md
// §4.8 requires.
package reconnect

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/callegarimattia/battleship/internal/room"
)

var (
	// ErrInvalidToken is returned for a malformed, unsigned, or expired token.
	ErrInvalidToken = errors.New("reconnect: invalid token")
	// ErrTokenInUse is returned when a token is presented by a second,
	// still-connected session.
	ErrTokenInUse = errors.New("reconnect: token already bound to an active session")
)

// claims is the JWT payload minted for a reconnect token.
type claims struct {
	PlayerID string `json:"playerId"`
	TokenID  string `json:"tokenId"`
	jwt.RegisteredClaims
}

// Coordinator mints and verifies reconnect tokens and resolves them against
// the room registry and queue store, per spec.md §4.8's lookup order:
// active room -> parked entry -> waiting entry -> fresh token.
type Coordinator struct {
	secret []byte
	ttl    time.Duration
	rooms  *room.Registry
	queue  queue.Store
}

// New creates a Coordinator. secret signs and verifies every token; ttl
// bounds the JWT's own expiry, which should be generous relative to any
// single grace window since a token may be reused across several
// disconnect/resume cycles within one match.
func New(secret []byte, ttl time.Duration, rooms *room.Registry, store queue.Store) *Coordinator {
	return &Coordinator{secret: secret, ttl: ttl, rooms: rooms, queue: store}
}

// Mint issues a fresh signed token for playerID.
func (c *Coordinator) Mint(playerID string) (string, error) {
	now := time.Now()
	claims := claims{
		PlayerID: playerID,
		TokenID:  uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify checks a token's signature and expiry and returns the player id it
// was minted for.
func (c *Coordinator) Verify(tokenString string) (playerID string, err error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	cl, ok := parsed.Claims.(*claims)
	if !ok || cl.PlayerID == "" {
		return "", ErrInvalidToken
	}
	return cl.PlayerID, nil
}

// Outcome describes where a resolved token landed.
type Outcome struct {
	Kind     string // "room", "waiting" (also for a promoted parked entry), or "none"
	RoomID   string
	PlayerID string
}

// Resolve implements spec.md §4.8's lookup order for a presented token:
// first an active room (resume in place), then a parked queue entry
// (promote back to waiting), then an already-waiting entry (no-op, already
// queued), and finally nothing — the caller should treat the token as
// expired and let the client request a fresh one.
func (c *Coordinator) Resolve(ctx context.Context, tokenString string) (Outcome, error) {
	playerID, err := c.Verify(tokenString)
	if err != nil {
		return Outcome{}, err
	}

	for _, e := range c.rooms.All() {
		snap := e.Snapshot()
		for _, slot := range snap.Slots {
			if slot != nil && slot.PlayerID == playerID && slot.ReconnectToken == tokenString {
				if slot.Connected {
					return Outcome{}, ErrTokenInUse
				}
				if resumeErr := e.Resume(playerID, tokenString); resumeErr != nil {
					return Outcome{}, resumeErr
				}
				return Outcome{Kind: "room", RoomID: snap.ID, PlayerID: playerID}, nil
			}
		}
	}

	if parked, parkErr := c.queue.GetParked(ctx, tokenString); parkErr == nil {
		promoted, promoteErr := c.queue.PromoteParked(ctx, tokenString)
		if promoteErr != nil {
			return Outcome{}, promoteErr
		}
		_ = parked
		return Outcome{Kind: "waiting", PlayerID: promoted.PlayerID}, nil
	}

	if waiting, waitErr := c.queue.GetByToken(ctx, tokenString); waitErr == nil {
		return Outcome{Kind: "waiting", PlayerID: waiting.PlayerID}, nil
	}

	return Outcome{Kind: "none", PlayerID: playerID}, nil
}
