package model

import "math/rand/v2"

// StandardFleet is the canonical ship composition: size -> count.
// 4 masts x1, 3 masts x2, 2 masts x3, 1 mast x4 — 10 ships, 20 cells.
var StandardFleet = map[int]int{
	4: 1,
	3: 2,
	2: 3,
	1: 4,
}

// FleetShipCount is the total number of ships in the standard fleet.
const FleetShipCount = 10

// maxPlacementAttemptsPerShip bounds the random-placement retry loop for a
// single ship before the whole board is restarted from scratch.
const maxPlacementAttemptsPerShip = 200

// maxFleetRestarts bounds the number of full-board restarts placeFleetRandomly
// will attempt before falling back to an unbounded retry loop. In practice a
// 10x10 board with the standard fleet converges within a handful of restarts.
const maxFleetRestarts = 50

// ValidateFleetCounts reports whether the given ships match StandardFleet's
// size distribution exactly.
func ValidateFleetCounts(ships []*Ship) error {
	counts := make(map[int]int, len(StandardFleet))
	for _, s := range ships {
		counts[s.Size()]++
	}
	if len(ships) != FleetShipCount {
		return ErrFleetIncomplete
	}
	for size, want := range StandardFleet {
		if counts[size] != want {
			return ErrFleetIncomplete
		}
	}
	return nil
}

// PlaceFleetRandomly builds a fresh board with the standard fleet placed at
// random, non-touching positions. It always succeeds: placement failures are
// retried with bounded attempts, and the whole board is restarted if a ship
// can't find a spot.
func PlaceFleetRandomly() *Board {
	for restart := 0; restart < maxFleetRestarts; restart++ {
		board, ok := tryPlaceFleet()
		if ok {
			return board
		}
	}
	// Unreachable in practice on a 10x10 board with 20 occupied cells out of
	// 100, but a caller must always get a usable board back.
	return tryPlaceFleetUnbounded()
}

func tryPlaceFleet() (*Board, bool) {
	board := NewBoard()
	for size, count := range StandardFleet {
		for i := 0; i < count; i++ {
			if !placeOneShipRandomly(board, size) {
				return nil, false
			}
		}
	}
	return board, true
}

func tryPlaceFleetUnbounded() *Board {
	for {
		if board, ok := tryPlaceFleet(); ok {
			return board
		}
	}
}

func placeOneShipRandomly(board *Board, size int) bool {
	for attempt := 0; attempt < maxPlacementAttemptsPerShip; attempt++ {
		ship, err := NewShip(size)
		if err != nil {
			return false
		}
		o := Horizontal
		if rand.IntN(2) == 1 {
			o = Vertical
		}
		c := Coordinate{X: rand.IntN(GridSize), Y: rand.IntN(GridSize)}
		if board.PlaceShip(c, ship, o) == nil {
			return true
		}
	}
	return false
}
