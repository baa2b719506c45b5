// Package ai implements the bot opponent's shot-selection policy: a
// hunt/target/track state machine that plays against a model.Board without
// ever mutating it directly. Board mutation stays the caller's
// responsibility, via model.Board.ReceiveShot, exactly as the room engine
// applies a human player's shot.
package ai

import (
	"math/rand/v2"

	"github.com/callegarimattia/battleship/internal/model"
)

// Mode is the bot's current targeting phase.
type Mode int

// The three modes the bot cycles through while hunting a fleet.
const (
	ModeIdle Mode = iota
	ModeTarget
	ModeTrack
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeTarget:
		return "target"
	case ModeTrack:
		return "track"
	default:
		return "unknown"
	}
}

// direction is an inferred line of attack once two hits share a row or column.
type direction struct{ dx, dy int }

// State is the bot's opaque memory, created fresh per game. It holds no
// reference to the board it plays against.
type State struct {
	Mode Mode

	// candidates is the queue of untried neighbors of confirmed hits,
	// populated in TARGET mode.
	candidates []model.Coordinate

	// hits is the ordered buffer of confirmed hits for the ship currently
	// being pursued. Cleared on sink.
	hits []model.Coordinate

	dir             *direction
	forwardBlocked  bool
	backwardBlocked bool

	// triedEnd remembers which end of the line was tried last in TRACK mode,
	// so a miss can mark the correct side blocked.
	triedEnd int // 1 = forward, -1 = backward

	paritySeed int

	huntAttempts int
}

// NewState creates a fresh AiState. paritySeed should be 0 or 1 and is fixed
// for the lifetime of the bot's game.
func NewState(paritySeed int) *State {
	return &State{Mode: ModeIdle, paritySeed: paritySeed % 2}
}

const maxHuntAttempts = 60

// NextShot selects the next coordinate to fire at, given the opponent board
// as the bot currently knows it (i.e. which cells are already shot) and the
// bot's own state. It returns {-1,-1} if every board cell has been shot.
func NextShot(board *model.Board, s *State) model.Coordinate {
	switch s.Mode {
	case ModeTrack:
		if c, ok := s.nextTrackShot(board); ok {
			return c
		}
		s.Mode = ModeTarget
		fallthrough
	case ModeTarget:
		if c, ok := s.nextTargetShot(board); ok {
			return c
		}
		s.Mode = ModeIdle
		fallthrough
	default:
		return s.nextHuntShot(board)
	}
}

func (s *State) nextTrackShot(board *model.Board) (model.Coordinate, bool) {
	if s.dir == nil || len(s.hits) == 0 {
		return model.Coordinate{}, false
	}
	origin := s.hits[0]
	last := s.hits[len(s.hits)-1]

	var candidates []int // 1 for forward, -1 for backward
	if !s.forwardBlocked {
		candidates = append(candidates, 1)
	}
	if !s.backwardBlocked {
		candidates = append(candidates, -1)
	}
	if len(candidates) == 0 {
		return model.Coordinate{}, false
	}

	end := candidates[rand.IntN(len(candidates))]
	s.triedEnd = end

	var c model.Coordinate
	if end == 1 {
		c = model.Coordinate{X: last.X + s.dir.dx, Y: last.Y + s.dir.dy}
	} else {
		c = model.Coordinate{X: origin.X - s.dir.dx, Y: origin.Y - s.dir.dy}
	}

	if !board.InBounds(c) || board.Shot(c) {
		s.blockEnd(end)
		return s.nextTrackShot(board)
	}
	return c, true
}

func (s *State) blockEnd(end int) {
	if end == 1 {
		s.forwardBlocked = true
	} else {
		s.backwardBlocked = true
	}
}

func (s *State) nextTargetShot(board *model.Board) (model.Coordinate, bool) {
	for len(s.candidates) > 0 {
		c := s.candidates[0]
		s.candidates = s.candidates[1:]
		if board.InBounds(c) && !board.Shot(c) {
			return c, true
		}
	}
	return model.Coordinate{}, false
}

func (s *State) nextHuntShot(board *model.Board) model.Coordinate {
	for attempt := 0; attempt < maxHuntAttempts; attempt++ {
		c := model.Coordinate{X: rand.IntN(model.GridSize), Y: rand.IntN(model.GridSize)}
		if (c.X+c.Y+s.paritySeed)%2 != 0 {
			continue
		}
		if !board.Shot(c) {
			return c
		}
	}

	// Deterministic scan honoring parity first.
	for y := 0; y < model.GridSize; y++ {
		for x := 0; x < model.GridSize; x++ {
			c := model.Coordinate{X: x, Y: y}
			if (x+y+s.paritySeed)%2 == 0 && !board.Shot(c) {
				return c
			}
		}
	}

	// Final fallback: any available cell at all.
	for y := 0; y < model.GridSize; y++ {
		for x := 0; x < model.GridSize; x++ {
			c := model.Coordinate{X: x, Y: y}
			if !board.Shot(c) {
				return c
			}
		}
	}

	return model.Coordinate{X: -1, Y: -1}
}

// RegisterShot updates the bot's memory with the outcome of a shot it just
// fired. Board mutation already happened via model.Board.ReceiveShot; this
// only updates the bot's own bookkeeping.
func RegisterShot(s *State, coord model.Coordinate, outcome model.ShotResult) {
	switch outcome {
	case model.ShotResultMiss:
		if s.Mode == ModeTrack {
			s.blockEnd(s.triedEnd)
		}
	case model.ShotResultHit:
		s.registerHit(coord)
	case model.ShotResultSunk:
		s.registerHit(coord)
		s.reset()
	}
}

func (s *State) registerHit(coord model.Coordinate) {
	s.hits = append(s.hits, coord)
	s.enqueueNeighbors(coord)
	s.inferDirection()

	if s.Mode == ModeIdle {
		s.Mode = ModeTarget
	}
	if s.dir != nil {
		s.Mode = ModeTrack
	}
}

func (s *State) enqueueNeighbors(c model.Coordinate) {
	offsets := []model.Coordinate{{X: 0, Y: -1}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 1, Y: 0}}
	for _, o := range offsets {
		n := model.Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
		if !containsCoord(s.candidates, n) {
			s.candidates = append(s.candidates, n)
		}
	}
}

// inferDirection looks for two hits sharing a row or column and derives a
// line direction from the ordered hit buffer.
func (s *State) inferDirection() {
	if s.dir != nil || len(s.hits) < 2 {
		return
	}
	a, b := s.hits[0], s.hits[len(s.hits)-1]
	switch {
	case a.Y == b.Y && a.X != b.X:
		dx := 1
		if b.X < a.X {
			dx = -1
		}
		s.dir = &direction{dx: dx, dy: 0}
	case a.X == b.X && a.Y != b.Y:
		dy := 1
		if b.Y < a.Y {
			dy = -1
		}
		s.dir = &direction{dx: 0, dy: dy}
	}
}

func (s *State) reset() {
	s.Mode = ModeIdle
	s.candidates = nil
	s.hits = nil
	s.dir = nil
	s.forwardBlocked = false
	s.backwardBlocked = false
	s.triedEnd = 0
}

func containsCoord(list []model.Coordinate, c model.Coordinate) bool {
	for _, x := range list {
		if x == c {
			return true
		}
	}
	return false
}
