// Package boardview flattens the wire's sparse SerializedBoard into a dense
// grid the TUI can index by (x, y) while drawing.
package boardview

import "github.com/callegarimattia/battleship/internal/model"

// CellState is the rendering state of a single board cell.
type CellState int

// The TUI's own cell vocabulary, a superset of what a masked opponent
// board reveals (ship positions are never present there).
const (
	CellEmpty CellState = iota
	CellShip
	CellHit
	CellMiss
	CellSunk
	CellUnknown
)

// View is a dense 10x10 rendering of a model.SerializedBoard.
type View struct {
	Size int
	Grid [][]CellState
}

// New flattens a wire board into a dense grid the renderer can index
// directly. showShips controls whether unshot ship cells render as CellShip
// (the player's own board) or CellUnknown (an opponent's masked board,
// where unshot cells carry no ship information at all).
func New(b model.SerializedBoard, showShips bool) View {
	size := b.Width
	if size == 0 {
		size = 10
	}

	grid := make([][]CellState, size)
	for y := range grid {
		row := make([]CellState, size)
		for x := range row {
			if showShips {
				row[x] = CellEmpty
			} else {
				row[x] = CellUnknown
			}
		}
		grid[y] = row
	}

	if showShips {
		for _, ship := range b.Ships {
			for _, c := range shipCells(ship) {
				if inBounds(c.X, c.Y, size) {
					grid[c.Y][c.X] = CellShip
				}
			}
		}
	}

	for _, c := range b.Shots {
		if inBounds(c.X, c.Y, size) {
			grid[c.Y][c.X] = CellMiss
		}
	}
	for _, c := range b.Hits {
		if inBounds(c.X, c.Y, size) {
			grid[c.Y][c.X] = CellHit
		}
	}
	for _, c := range b.SunkCells {
		if inBounds(c.X, c.Y, size) {
			grid[c.Y][c.X] = CellSunk
		}
	}

	return View{Size: size, Grid: grid}
}

func inBounds(x, y, size int) bool {
	return x >= 0 && x < size && y >= 0 && y < size
}

func shipCells(s model.SerializedShip) []model.Coordinate {
	dx, dy := s.Orientation.Vector()
	cells := make([]model.Coordinate, s.Size)
	for i := 0; i < s.Size; i++ {
		cells[i] = model.Coordinate{X: s.Origin.X + dx*i, Y: s.Origin.Y + dy*i}
	}
	return cells
}
