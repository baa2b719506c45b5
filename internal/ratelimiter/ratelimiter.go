// Package ratelimiter implements C3: per-connection, per-action-kind rate
// limiting. The in-process implementation wraps golang.org/x/time/rate; a
// Redis-backed implementation is available when counters must be shared
// across server instances.
package ratelimiter

import "context"

// Kind identifies an action subject to its own rate limit bucket.
type Kind string

// The action kinds spec.md names, with their recommended defaults.
const (
	KindSearchJoin       Kind = "search_join"
	KindPlaceShips       Kind = "game_place_ships"
	KindShot             Kind = "game_shot"
	KindCancel           Kind = "game_cancel"
	KindChatSend         Kind = "chat_send"
	KindReconnectAttempt Kind = "reconnect_attempt"
	KindInvalidRequests  Kind = "invalid_requests"
)

// Bound is a fixed-window/leaky-bucket allowance: N events per window.
type Bound struct {
	N      int
	Window Window
}

// Window is a duration expressed in milliseconds, avoiding a direct
// time.Duration import in the default-table literal below for readability.
type Window = int64

// DefaultBounds holds spec.md §4.3's recommended defaults, in milliseconds.
var DefaultBounds = map[Kind]Bound{
	KindSearchJoin:       {N: 3, Window: 10_000},
	KindPlaceShips:       {N: 5, Window: 10_000},
	KindShot:             {N: 10, Window: 5_000},
	KindCancel:           {N: 5, Window: 30_000},
	KindChatSend:         {N: 6, Window: 10_000},
	KindReconnectAttempt: {N: 6, Window: 30_000},
	KindInvalidRequests:  {N: 20, Window: 60_000},
}

// SoftBanThreshold is the invalid_requests count at which the gateway
// escalates to a soft ban and closes the connection.
const SoftBanThreshold = 20

// Limiter decides whether an action of the given kind, for the given key
// (typically a connection id), is currently allowed.
type Limiter interface {
	Allow(ctx context.Context, key string, kind Kind) (bool, error)
}
