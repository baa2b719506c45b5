package model_test

import (
	"testing"

	m "github.com/callegarimattia/battleship/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceFleetRandomly(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		board := m.PlaceFleetRandomly()
		require.NoError(t, m.ValidateFleetCounts(board.Ships()))
		assert.Len(t, board.Ships(), m.FleetShipCount)

		cells := 0
		for _, s := range board.Ships() {
			cells += s.Size()
		}
		assert.Equal(t, 20, cells)
	}
}

func TestValidateFleetCountsRejectsIncompleteFleet(t *testing.T) {
	t.Parallel()

	board := m.NewBoard()
	ship, err := m.NewShip(4)
	require.NoError(t, err)
	require.NoError(t, board.PlaceShip(m.Coordinate{X: 0, Y: 0}, ship, m.Horizontal))

	assert.ErrorIs(t, m.ValidateFleetCounts(board.Ships()), m.ErrFleetIncomplete)
}

func TestBuildBoardRoundTrip(t *testing.T) {
	t.Parallel()

	full := m.PlaceFleetRandomly()
	spec := full.Serialize().Ships

	rebuilt, err := m.BuildBoard(spec)
	require.NoError(t, err)
	assert.Len(t, rebuilt.Ships(), m.FleetShipCount)
}

func TestMaskNeverRevealsAfloatShipCells(t *testing.T) {
	t.Parallel()

	board := m.PlaceFleetRandomly()
	board.ReceiveShot(m.Coordinate{X: 0, Y: 0})

	masked := board.Mask()
	assert.Empty(t, masked.Ships, "masked board must never include ship placements")

	afloatCells := map[m.Coordinate]bool{}
	for _, s := range board.Ships() {
		if s.Sunk() {
			continue
		}
		for _, c := range s.Cells() {
			afloatCells[c] = true
		}
	}
	for _, c := range masked.SunkCells {
		assert.False(t, afloatCells[c], "sunkCells must never include a cell belonging to an afloat ship")
	}
}
