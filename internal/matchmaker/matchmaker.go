// Package matchmaker implements C6: a periodic ticker that drains the
// queue store two-at-a-time into fresh rooms, and falls back solo players
// who have waited past the configured timeout into a bot room.
package matchmaker

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/callegarimattia/battleship/internal/protocol"
	"github.com/callegarimattia/battleship/internal/queue"
	"github.com/callegarimattia/battleship/internal/room"
)

// Notifier delivers a queue-stage event to a specific player, independent
// of any room — a player in queue:join has no room yet.
type Notifier interface {
	Notify(playerID, eventType string, payload any)
}

// Config bounds the matchmaker's loop and solo-timeout behavior.
type Config struct {
	TickInterval time.Duration
	SoloTimeout  time.Duration
	BotBatchSize int
}

// DefaultConfig returns spec.md §4.6's documented defaults.
func DefaultConfig() Config {
	return Config{
		TickInterval: 500 * time.Millisecond,
		SoloTimeout:  60 * time.Second,
		BotBatchSize: 8,
	}
}

// Matchmaker drains the queue store on a fixed interval.
type Matchmaker struct {
	store    queue.Store
	rooms    *room.Registry
	notifier Notifier
	cfg      Config

	stop chan struct{}
}

// New creates a Matchmaker. Call Run in its own goroutine to start the loop.
func New(store queue.Store, rooms *room.Registry, notifier Notifier, cfg Config) *Matchmaker {
	return &Matchmaker{store: store, rooms: rooms, notifier: notifier, cfg: cfg, stop: make(chan struct{})}
}

// Run blocks, ticking until ctx is done or Stop is called.
func (m *Matchmaker) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.tick(ctx)
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends the loop.
func (m *Matchmaker) Stop() {
	close(m.stop)
}

func (m *Matchmaker) tick(ctx context.Context) {
	m.drainMatches(ctx)
	m.drainSoloTimeouts(ctx)
}

func (m *Matchmaker) drainMatches(ctx context.Context) {
	for {
		p1, p2, ok, err := m.store.TakeMatch(ctx)
		if err != nil {
			log.Printf("matchmaker: take match: %v", err)
			return
		}
		if !ok {
			return
		}
		m.createRoom(p1, p2, false)
	}
}

func (m *Matchmaker) drainSoloTimeouts(ctx context.Context) {
	cutoff := time.Now().Add(-m.cfg.SoloTimeout)
	entries, err := m.store.TakeTimedOut(ctx, cutoff, m.cfg.BotBatchSize)
	if err != nil {
		log.Printf("matchmaker: take timed out: %v", err)
		return
	}
	for _, e := range entries {
		bot := queue.Entry{PlayerID: "bot-" + uuid.NewString(), Nickname: "Admiral Bot"}
		m.createRoom(e, bot, true)
	}
}

func (m *Matchmaker) createRoom(p1, p2 queue.Entry, vsBot bool) {
	id := uuid.NewString()
	e := m.rooms.Create(id,
		room.PlayerInit{PlayerID: p1.PlayerID, Nickname: p1.Nickname, ReconnectToken: p1.Token},
		room.PlayerInit{PlayerID: p2.PlayerID, Nickname: p2.Nickname, ReconnectToken: p2.Token},
		vsBot,
	)

	log.Printf("matchmaker: created room %s (vsBot=%v) for %s and %s", id, vsBot, p1.PlayerID, p2.PlayerID)

	snap := e.Snapshot()
	m.notifier.Notify(p1.PlayerID, protocol.EventMatched, protocol.MatchedPayload{
		RoomID: id, Opponent: p2.Nickname, VsBot: vsBot,
		ReconnectToken: p1.Token, YouReady: snap.Slots[0].Ready, OpponentReady: snap.Slots[1].Ready,
	})
	if !vsBot {
		m.notifier.Notify(p2.PlayerID, protocol.EventMatched, protocol.MatchedPayload{
			RoomID: id, Opponent: p1.Nickname, VsBot: vsBot,
			ReconnectToken: p2.Token, YouReady: snap.Slots[1].Ready, OpponentReady: snap.Slots[0].Ready,
		})
	}
}
