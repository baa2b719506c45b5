package model

// SerializedShip is the wire representation of a single ship placement.
type SerializedShip struct {
	Size        int         `json:"size"`
	Origin      Coordinate  `json:"origin"`
	Orientation Orientation `json:"orientation"`
}

// SerializedBoard is the wire representation of a Board. Ships is populated
// only for a player's own board; an opponent's board is always serialized
// with Mask, which omits Ships entirely.
type SerializedBoard struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Ships     []SerializedShip `json:"ships,omitempty"`
	Shots     []Coordinate     `json:"shots"`
	Hits      []Coordinate     `json:"hits"`
	SunkCells []Coordinate     `json:"sunkCells"`
}

// Serialize returns the full wire representation of the board, including
// ship positions. Use this only for a player's own board.
func (b *Board) Serialize() SerializedBoard {
	out := b.maskedSnapshot()
	out.Ships = make([]SerializedShip, len(b.ships))
	for i, s := range b.ships {
		out.Ships[i] = SerializedShip{Size: s.size, Origin: s.origin, Orientation: s.orient}
	}
	return out
}

// Mask returns the opponent-safe wire representation: width, height, shots,
// hits, and the cells of ships that are fully sunk. No cell of a ship that
// is still afloat is ever present.
func (b *Board) Mask() SerializedBoard {
	return b.maskedSnapshot()
}

func (b *Board) maskedSnapshot() SerializedBoard {
	out := SerializedBoard{
		Width:     GridSize,
		Height:    GridSize,
		Shots:     []Coordinate{},
		Hits:      []Coordinate{},
		SunkCells: []Coordinate{},
	}
	for c, t := range b.Cells() {
		if !t.isHit {
			continue
		}
		out.Shots = append(out.Shots, c)
		if t.ship != nil {
			out.Hits = append(out.Hits, c)
		}
	}
	for _, s := range b.ships {
		if s.Sunk() {
			out.SunkCells = append(out.SunkCells, s.Cells()...)
		}
	}
	return out
}

// BuildBoard places every ship described by spec in order and validates the
// result against the standard fleet composition. On any placement or fleet
// error, the returned board is nil.
func BuildBoard(spec []SerializedShip) (*Board, error) {
	board := NewBoard()
	for _, ss := range spec {
		ship, err := NewShip(ss.Size)
		if err != nil {
			return nil, err
		}
		if err := board.PlaceShip(ss.Origin, ship, ss.Orientation); err != nil {
			return nil, err
		}
	}
	if err := ValidateFleetCounts(board.ships); err != nil {
		return nil, err
	}
	return board, nil
}
