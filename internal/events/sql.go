package events

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

// Sink is anything that can durably record a GameEvent. Recording is
// best-effort: a Sink implementation must never return an error that would
// block the caller, and Attach already isolates the bus from panics inside
// a Sink.
type Sink interface {
	Record(evt *GameEvent)
}

// SQLSink is an append-only retention sink backed by database/sql, intended
// for use with modernc.org/sqlite. Schema bootstrapping and retention
// pruning beyond the create-if-missing statement here are treated as
// external collaborators, matching the rest of this system's persistence
// boundary.
type SQLSink struct {
	db *sql.DB
}

// NewSQLSink creates the events table if it doesn't already exist and
// returns a ready-to-use SQLSink.
func NewSQLSink(db *sql.DB) (*SQLSink, error) {
	const schema = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL,
	match_id TEXT NOT NULL,
	player_id TEXT,
	data TEXT,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_match_id ON events(match_id);
CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at);
`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &SQLSink{db: db}, nil
}

// Record inserts evt as a new row. Failures are logged, never propagated —
// the event path must never block the game path on a storage hiccup.
func (s *SQLSink) Record(evt *GameEvent) {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		log.Printf("events: marshal %s for match %s: %v", evt.Type, evt.MatchID, err)
		return
	}

	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = s.db.Exec(
		`INSERT INTO events (type, match_id, player_id, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(evt.Type), evt.MatchID, evt.PlayerID, string(data), ts,
	)
	if err != nil {
		log.Printf("events: insert %s for match %s: %v", evt.Type, evt.MatchID, err)
	}
}

// Attach subscribes sink to every event on bus, recovering from any panic
// inside Record so a misbehaving sink can never take down a room's writer.
func Attach(bus EventBus, sink Sink) Subscription {
	return bus.Subscribe("*", func(evt *GameEvent) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("events: sink panicked recording %s: %v", evt.Type, r)
			}
		}()
		sink.Record(evt)
	})
}
