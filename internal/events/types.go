package events

import "time"

// EventType represents the kind of telemetry record being published.
type EventType string

// EventType possible values. The C11 event sink is append-only telemetry for
// match lifecycle and security events; it never drives game logic.
const (
	EventMatchStarted    EventType = "match.started"
	EventMatchEnded       EventType = "match.ended"
	EventRateLimitTripped EventType = "security.rate_limit_tripped"
	EventSoftBan          EventType = "security.soft_ban"
	EventInvalidPayload   EventType = "security.invalid_payload"
)

// GameEvent is a single telemetry record published to the bus.
type GameEvent struct {
	Type      EventType
	MatchID   string
	PlayerID  string // the player who triggered the event, if any
	TargetID  string // reserved for point-to-point delivery; unused by the sink
	Data      any
	Timestamp time.Time
}

// MatchStartedData is the payload of an EventMatchStarted record.
type MatchStartedData struct {
	Opponent string
	VsBot    bool
}

// MatchEndedData is the payload of an EventMatchEnded record.
type MatchEndedData struct {
	Winner string
	Reason string
}

// SecurityEventData is the payload of the security.* records.
type SecurityEventData struct {
	Kind    string // e.g. the rate-limited action kind, or "soft_ban"
	Detail  string
}
