package model_test

import (
	"errors"
	"testing"

	m "github.com/callegarimattia/battleship/internal/model"
)

func mustNewShip(t *testing.T, size int) *m.Ship {
	t.Helper()
	s, err := m.NewShip(size)
	if err != nil {
		t.Fatalf("failed to create ship of size %d: %v", size, err)
	}
	return s
}

func TestNewShip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{"Valid size 1", 1, nil},
		{"Valid size 4", 4, nil},
		{"Invalid size 0", 0, m.ErrInvalidShipSize},
		{"Invalid size negative", -1, m.ErrInvalidShipSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := m.NewShip(tt.size)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewShip() error = %v, wantErr %v", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("NewShip() expected nil ship on error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Errorf("NewShip() unexpected error: %v", err)
			}
			if got.Size() != tt.size {
				t.Errorf("NewShip() size = %d, want %d", got.Size(), tt.size)
			}
		})
	}
}

func TestPlaceShip(t *testing.T) {
	t.Parallel()

	ship2 := mustNewShip(t, 2)
	ship3 := mustNewShip(t, 3)

	tests := []struct {
		name        string
		setup       func(*m.Board)
		coord       m.Coordinate
		ship        *m.Ship
		orientation m.Orientation
		wantErr     error
	}{
		{
			name:        "Valid Horizontal",
			coord:       m.Coordinate{X: 0, Y: 0},
			ship:        ship3,
			orientation: m.Horizontal,
			wantErr:     nil,
		},
		{
			name:        "Out of Bounds - Start X",
			coord:       m.Coordinate{X: -1, Y: 0},
			ship:        ship2,
			orientation: m.Horizontal,
			wantErr:     m.ErrShipOutOfBounds,
		},
		{
			name:        "Out of Bounds - End Extends X",
			coord:       m.Coordinate{X: 9, Y: 0},
			ship:        ship2,
			orientation: m.Horizontal,
			wantErr:     m.ErrShipOutOfBounds,
		},
		{
			name: "Overlap Collision",
			setup: func(b *m.Board) {
				_ = b.PlaceShip(m.Coordinate{X: 2, Y: 2}, mustNewShip(t, 3), m.Vertical)
			},
			coord:       m.Coordinate{X: 1, Y: 3},
			ship:        ship3,
			orientation: m.Horizontal,
			wantErr:     m.ErrShipOverlap,
		},
		{
			// Scenario 1 from the testable properties: a ship placed directly
			// after another (adjacent, non-overlapping) is rejected as touching.
			name: "Touching Directly Adjacent",
			setup: func(b *m.Board) {
				a := mustNewShip(t, 3)
				_ = b.PlaceShip(m.Coordinate{X: 0, Y: 0}, a, m.Horizontal) // (0,0)(1,0)(2,0)
			},
			coord:       m.Coordinate{X: 3, Y: 0},
			ship:        mustNewShip(t, 1),
			orientation: m.Horizontal,
			wantErr:     m.ErrShipTouching,
		},
		{
			name: "Not Touching When Gap Left",
			setup: func(b *m.Board) {
				a := mustNewShip(t, 3)
				_ = b.PlaceShip(m.Coordinate{X: 0, Y: 0}, a, m.Horizontal)
			},
			coord:       m.Coordinate{X: 4, Y: 0},
			ship:        mustNewShip(t, 1),
			orientation: m.Horizontal,
			wantErr:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := m.NewBoard()
			if tt.setup != nil {
				tt.setup(b)
			}

			err := b.PlaceShip(tt.coord, tt.ship, tt.orientation)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("PlaceShip() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReceiveShot(t *testing.T) {
	t.Parallel()

	b := m.NewBoard()
	ship := mustNewShip(t, 2)
	if err := b.PlaceShip(m.Coordinate{X: 0, Y: 0}, ship, m.Horizontal); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	tests := []struct {
		name       string
		coord      m.Coordinate
		wantResult m.ShotResult
	}{
		{"Shot Out of Bounds Negative", m.Coordinate{X: -1, Y: 0}, m.ShotResultInvalid},
		{"Shot Out of Bounds Large", m.Coordinate{X: 10, Y: 10}, m.ShotResultInvalid},
		{"Miss Empty Water", m.Coordinate{X: 5, Y: 5}, m.ShotResultMiss},
		{"Hit First Segment", m.Coordinate{X: 0, Y: 0}, m.ShotResultHit},
		{"Duplicate Shot on Hit", m.Coordinate{X: 0, Y: 0}, m.ShotResultAlreadyShot},
		{"Sunk Second Segment", m.Coordinate{X: 1, Y: 0}, m.ShotResultSunk},
	}

	for _, tt := range tests {
		got := b.ReceiveShot(tt.coord)
		if got != tt.wantResult {
			t.Errorf("ReceiveShot(%v) = %v, want %v", tt.coord, got, tt.wantResult)
		}
	}
}

// TestSinkPropagationMarksAdjacentCells mirrors scenario 2: sinking a ship
// marks its immediate neighborhood as already shot, so a later shot there
// reports already_shot rather than miss.
func TestSinkPropagationMarksAdjacentCells(t *testing.T) {
	t.Parallel()

	b := m.NewBoard()
	ship := mustNewShip(t, 2)
	if err := b.PlaceShip(m.Coordinate{X: 5, Y: 5}, ship, m.Vertical); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if got := b.ReceiveShot(m.Coordinate{X: 5, Y: 5}); got != m.ShotResultHit {
		t.Fatalf("first shot = %v, want hit", got)
	}
	if got := b.ReceiveShot(m.Coordinate{X: 5, Y: 6}); got != m.ShotResultSunk {
		t.Fatalf("second shot = %v, want sink", got)
	}

	if got := b.ReceiveShot(m.Coordinate{X: 4, Y: 6}); got != m.ShotResultAlreadyShot {
		t.Errorf("adjacent cell after sink = %v, want already_shot", got)
	}
}

func TestAllShipsSunk(t *testing.T) {
	t.Parallel()

	b := m.NewBoard()

	if !b.AllShipsSunk() {
		t.Error("empty board should report AllShipsSunk true")
	}

	s1 := mustNewShip(t, 1)
	s2 := mustNewShip(t, 2)
	_ = b.PlaceShip(m.Coordinate{X: 0, Y: 0}, s1, m.Horizontal)
	_ = b.PlaceShip(m.Coordinate{X: 5, Y: 5}, s2, m.Vertical)

	if b.AllShipsSunk() {
		t.Error("board with healthy ships should not be sunk")
	}

	b.ReceiveShot(m.Coordinate{X: 0, Y: 0})
	if b.AllShipsSunk() {
		t.Error("board with one remaining ship should not be sunk")
	}

	b.ReceiveShot(m.Coordinate{X: 5, Y: 5})
	if b.AllShipsSunk() {
		t.Error("partially damaged ship should not count as sunk")
	}

	b.ReceiveShot(m.Coordinate{X: 5, Y: 6})
	if !b.AllShipsSunk() {
		t.Error("all ships destroyed should report AllShipsSunk true")
	}
}

func TestOrientationStringer(t *testing.T) {
	t.Parallel()

	if m.Horizontal.String() != "horizontal" {
		t.Errorf("Horizontal.String() = %s", m.Horizontal.String())
	}
	if m.Vertical.String() != "vertical" {
		t.Errorf("Vertical.String() = %s", m.Vertical.String())
	}
}

func TestShotResultStringer(t *testing.T) {
	t.Parallel()

	if m.ShotResultMiss.String() != "miss" {
		t.Errorf("ShotResultMiss.String() = %s", m.ShotResultMiss.String())
	}
	if m.ShotResultAlreadyShot.String() != "already_shot" {
		t.Errorf("ShotResultAlreadyShot.String() = %s", m.ShotResultAlreadyShot.String())
	}
}
