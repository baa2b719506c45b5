package ai_test

import (
	"testing"

	"github.com/callegarimattia/battleship/internal/ai"
	"github.com/callegarimattia/battleship/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextShotNeverRepeatsAndStaysInBounds(t *testing.T) {
	t.Parallel()

	board := model.NewBoard()
	s := ai.NewState(0)

	seen := map[model.Coordinate]bool{}
	for i := 0; i < model.GridSize*model.GridSize; i++ {
		c := ai.NextShot(board, s)
		require.True(t, c.X == -1 || board.InBounds(c), "shot must be in bounds or the exhausted sentinel")
		if c.X == -1 {
			break
		}
		assert.False(t, seen[c], "bot should never repeat a shot: %v", c)
		seen[c] = true
		board.ReceiveShot(c)
		ai.RegisterShot(s, c, model.ShotResultMiss)
	}
}

func TestTrackModeFollowsLineAfterTwoHits(t *testing.T) {
	t.Parallel()

	board := model.NewBoard()
	ship, err := model.NewShip(3)
	require.NoError(t, err)
	require.NoError(t, board.PlaceShip(model.Coordinate{X: 4, Y: 4}, ship, model.Horizontal))

	s := ai.NewState(0)

	first := model.Coordinate{X: 4, Y: 4}
	board.ReceiveShot(first)
	ai.RegisterShot(s, first, model.ShotResultHit)
	assert.Equal(t, ai.ModeTarget, s.Mode)

	second := model.Coordinate{X: 5, Y: 4}
	board.ReceiveShot(second)
	ai.RegisterShot(s, second, model.ShotResultHit)
	assert.Equal(t, ai.ModeTrack, s.Mode)

	next := ai.NextShot(board, s)
	assert.True(t, next == model.Coordinate{X: 6, Y: 4} || next == model.Coordinate{X: 3, Y: 4},
		"track mode should extend the inferred line, got %v", next)
}

func TestRegisterShotSunkResetsState(t *testing.T) {
	t.Parallel()

	s := ai.NewState(1)
	c := model.Coordinate{X: 0, Y: 0}
	ai.RegisterShot(s, c, model.ShotResultHit)
	ai.RegisterShot(s, model.Coordinate{X: 0, Y: 1}, model.ShotResultSunk)

	assert.Equal(t, ai.ModeIdle, s.Mode)
}
