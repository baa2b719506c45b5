// Package queue implements the matchmaking waiting list (C4): an ordered
// FIFO of players waiting for an opponent, plus a parked set of entries
// belonging to players who disconnected while still queued.
package queue

import (
	"context"
	"errors"
	"time"
)

// Entry is a single queued player.
type Entry struct {
	PlayerID string    `json:"playerId"`
	Nickname string    `json:"nickname"`
	JoinedAt time.Time `json:"joinedAt"`
	Token    string    `json:"token"`
}

// ErrNotFound is returned when a lookup finds no matching entry.
var ErrNotFound = errors.New("queue: entry not found")

// Store is the C4 contract. Implementations must make TakeMatch and
// TakeTimedOut atomic with respect to concurrent callers — the in-memory
// implementation does this with a mutex, the Redis implementation with a
// server-side script.
type Store interface {
	// Upsert inserts or replaces the waiting entry for e.PlayerID.
	Upsert(ctx context.Context, e Entry) error
	// RemoveByPlayerID deletes the waiting entry for playerID, if any.
	RemoveByPlayerID(ctx context.Context, playerID string) error
	// RemoveByToken deletes the waiting entry addressed by token, if any.
	RemoveByToken(ctx context.Context, token string) error
	// GetByToken looks up a waiting entry by reconnect token.
	GetByToken(ctx context.Context, token string) (Entry, error)
	// GetByPlayerID looks up a waiting entry by player id.
	GetByPlayerID(ctx context.Context, playerID string) (Entry, error)

	// Park moves an entry out of waiting into the parked set, keyed by
	// token, with a TTL equal to the reconnect grace window.
	Park(ctx context.Context, e Entry, ttl time.Duration) error
	// GetParked looks up a parked entry by token; ErrNotFound once expired.
	GetParked(ctx context.Context, token string) (Entry, error)
	// PromoteParked removes a parked entry and re-inserts it into waiting
	// with a refreshed JoinedAt, returning the promoted entry.
	PromoteParked(ctx context.Context, token string) (Entry, error)

	// TakeMatch atomically removes and returns the two oldest waiting
	// entries. ok is false if fewer than two entries are waiting.
	TakeMatch(ctx context.Context) (a, b Entry, ok bool, err error)
	// TakeTimedOut atomically removes and returns every waiting entry whose
	// JoinedAt is at or before cutoff, up to limit entries.
	TakeTimedOut(ctx context.Context, cutoff time.Time, limit int) ([]Entry, error)

	// Len reports the number of entries currently waiting.
	Len(ctx context.Context) (int, error)
}
