// Package model provides the core Battleship data structures: the grid,
// ship placement, and shot resolution. It has no notion of turns, players,
// or connections — those live in internal/room.
package model

import (
	"errors"
	"iter"
	"slices"
)

var (
	// ErrInvalidDimensions is returned when a board is created with non-positive dimensions.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrShipOutOfBounds is returned when a ship placement goes out of the board bounds.
	ErrShipOutOfBounds = errors.New("ship placement out of bounds")
	// ErrShipOverlap is returned when a ship placement overlaps with another ship.
	ErrShipOverlap = errors.New("ship placement overlaps with another ship")
	// ErrShipTouching is returned when a ship placement is adjacent (including diagonally) to another ship.
	ErrShipTouching = errors.New("ship placement touches another ship")
	// ErrInvalidShipSize is returned when a ship is created with a non-positive size.
	ErrInvalidShipSize = errors.New("invalid ship size")
	// ErrFleetIncomplete is returned when a fleet's ship counts don't match the standard composition.
	ErrFleetIncomplete = errors.New("fleet does not match the standard composition")
)

// GridSize defines the width and height of the Battleship grid.
const GridSize = 10

type tile struct {
	isHit bool
	ship  *Ship
}

// Board represents a single player's 10x10 Battleship grid.
type Board struct {
	tiles [GridSize][GridSize]tile
	ships []*Ship
}

// ShotResult represents the outcome of a shot fired at a coordinate.
type ShotResult int

// Possible ShotResult values returned when a shot is fired.
const (
	ShotResultInvalid ShotResult = iota
	ShotResultAlreadyShot
	ShotResultMiss
	ShotResultHit
	ShotResultSunk
)

// String implements fmt.Stringer.
func (r ShotResult) String() string {
	switch r {
	case ShotResultInvalid:
		return "invalid"
	case ShotResultAlreadyShot:
		return "already_shot"
	case ShotResultMiss:
		return "miss"
	case ShotResultHit:
		return "hit"
	case ShotResultSunk:
		return "sink"
	default:
		return "unknown"
	}
}

// Orientation represents the orientation of a ship on the board.
type Orientation int

// Possible Orientation values for placing ships.
const (
	Horizontal Orientation = iota
	Vertical
)

// Vector returns the column (x) and row (y) deltas for the given orientation.
func (o Orientation) Vector() (dx, dy int) {
	switch o {
	case Horizontal:
		return 1, 0
	case Vertical:
		return 0, 1
	}
	return 0, 0
}

// String implements fmt.Stringer.
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Coordinate represents a (row, col) position on the grid. X is the column, Y is the row.
type Coordinate struct{ X, Y int }

// Ship represents a single vessel: a size, an orientation, and its own hit set.
// A Ship never outlives the Board that placed it.
type Ship struct {
	id     int
	size   int
	origin Coordinate
	orient Orientation
	hits   map[Coordinate]bool
}

// NewShip creates a new Ship with the given size. Only sizes 1-4 are part of
// the standard fleet, but any positive size is structurally valid.
func NewShip(size int) (*Ship, error) {
	if size <= 0 {
		return nil, ErrInvalidShipSize
	}
	return &Ship{size: size, hits: make(map[Coordinate]bool)}, nil
}

// ID returns the ship's index within its board, assigned on placement.
func (s *Ship) ID() int { return s.id }

// Size returns the number of cells the ship occupies.
func (s *Ship) Size() int { return s.size }

// Sunk reports whether every cell of the ship has been hit.
func (s *Ship) Sunk() bool { return len(s.hits) == s.size }

// Cells returns the ordered list of coordinates the ship occupies.
func (s *Ship) Cells() []Coordinate {
	return calculateSegments(s.origin, s.size, s.orient)
}

// NewBoard creates a new, empty Board.
func NewBoard() *Board {
	return &Board{}
}

// PlaceShip places a ship on the board at the given coordinate and orientation.
// It fails if any cell is out of bounds, overlaps another ship, or is
// 8-adjacent (including diagonally) to another ship's cell.
func (b *Board) PlaceShip(c Coordinate, s *Ship, o Orientation) error {
	segments := calculateSegments(c, s.Size(), o)

	if slices.ContainsFunc(segments, b.isOutOfBounds) {
		return ErrShipOutOfBounds
	}
	if slices.ContainsFunc(segments, b.isOccupied) {
		return ErrShipOverlap
	}
	if slices.ContainsFunc(segments, b.isTouchingAnyShip) {
		return ErrShipTouching
	}

	s.origin = c
	s.orient = o
	s.id = len(b.ships)
	b.ships = append(b.ships, s)

	for _, seg := range segments {
		b.tiles[seg.Y][seg.X].ship = s
	}

	return nil
}

// ReceiveShot processes a shot fired at the given coordinate and returns its
// outcome. A sink marks the ship's immediate 8-neighborhood as already-shot,
// so subsequent shots at the open water around a dead ship report
// already_shot rather than miss.
func (b *Board) ReceiveShot(c Coordinate) ShotResult {
	if b.isOutOfBounds(c) {
		return ShotResultInvalid
	}

	t := &b.tiles[c.Y][c.X]
	if t.isHit {
		return ShotResultAlreadyShot
	}
	t.isHit = true

	if t.ship == nil {
		return ShotResultMiss
	}

	t.ship.hits[c] = true
	if !t.ship.Sunk() {
		return ShotResultHit
	}

	b.markAdjacentAsShot(t.ship)
	return ShotResultSunk
}

// Ships returns the placed ships in placement order.
func (b *Board) Ships() []*Ship { return b.ships }

// Shot reports whether the given coordinate has already been fired upon.
// Out-of-bounds coordinates are reported as shot, so hunting logic can treat
// them the same as an exhausted cell without a separate bounds check.
func (b *Board) Shot(c Coordinate) bool {
	if b.isOutOfBounds(c) {
		return true
	}
	return b.tiles[c.Y][c.X].isHit
}

// InBounds reports whether c lies within the grid.
func (b *Board) InBounds(c Coordinate) bool {
	return !b.isOutOfBounds(c)
}

// AllShipsSunk reports whether every ship on the board is sunk. An empty
// board (no ships placed) counts as sunk.
func (b *Board) AllShipsSunk() bool {
	for _, s := range b.ships {
		if !s.Sunk() {
			return false
		}
	}
	return true
}

// Cells returns an iterator over every coordinate on the board and a
// pointer to its tile.
func (b *Board) Cells() iter.Seq2[Coordinate, *tile] {
	return func(yield func(Coordinate, *tile) bool) {
		for y := range b.tiles {
			for x := range b.tiles[y] {
				if !yield(Coordinate{X: x, Y: y}, &b.tiles[y][x]) {
					return
				}
			}
		}
	}
}

// --- Internal helpers ---

func (b *Board) isOutOfBounds(c Coordinate) bool {
	return c.Y < 0 || c.Y >= GridSize || c.X < 0 || c.X >= GridSize
}

func (b *Board) isOccupied(c Coordinate) bool {
	return b.tiles[c.Y][c.X].ship != nil
}

func (b *Board) isTouchingAnyShip(c Coordinate) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := Coordinate{X: c.X + dx, Y: c.Y + dy}
			if b.isOutOfBounds(n) {
				continue
			}
			if b.tiles[n.Y][n.X].ship != nil {
				return true
			}
		}
	}
	return false
}

func (b *Board) markAdjacentAsShot(s *Ship) {
	for _, c := range s.Cells() {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				n := Coordinate{X: c.X + dx, Y: c.Y + dy}
				if b.isOutOfBounds(n) {
					continue
				}
				b.tiles[n.Y][n.X].isHit = true
			}
		}
	}
}

func calculateSegments(start Coordinate, size int, o Orientation) []Coordinate {
	dx, dy := o.Vector()

	segments := make([]Coordinate, size)
	for i := range segments {
		segments[i] = Coordinate{
			X: start.X + i*dx,
			Y: start.Y + i*dy,
		}
	}

	return segments
}
