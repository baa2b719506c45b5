package room_test

import (
	"sync"
	"testing"
	"time"

	"github.com/callegarimattia/battleship/internal/chat"
	"github.com/callegarimattia/battleship/internal/model"
	"github.com/callegarimattia/battleship/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []room.Event
}

func (p *capturingPublisher) Publish(e room.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturingPublisher) eventsOfType(t string) []room.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []room.Event
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func testConfig() room.Config {
	cfg := room.DefaultConfig()
	cfg.GraceWindow = 40 * time.Millisecond
	cfg.InactivityTimeout = time.Hour
	cfg.BotThinkMin = time.Millisecond
	cfg.BotThinkMax = 2 * time.Millisecond
	return cfg
}

func newTwoPlayerEngine(t *testing.T) (*room.Engine, *capturingPublisher) {
	t.Helper()
	pub := &capturingPublisher{}
	e := room.NewEngine("room-1",
		room.PlayerInit{PlayerID: "p1", Nickname: "Alice", ReconnectToken: "tok-1"},
		room.PlayerInit{PlayerID: "p2", Nickname: "Bob", ReconnectToken: "tok-2"},
		false, testConfig(), pub, nil,
	)
	return e, pub
}

func fullFleetSpec() []model.SerializedShip {
	return []model.SerializedShip{
		{Size: 4, Origin: model.Coordinate{X: 0, Y: 0}, Orientation: model.Horizontal},
		{Size: 3, Origin: model.Coordinate{X: 0, Y: 2}, Orientation: model.Horizontal},
		{Size: 3, Origin: model.Coordinate{X: 0, Y: 4}, Orientation: model.Horizontal},
		{Size: 2, Origin: model.Coordinate{X: 0, Y: 6}, Orientation: model.Horizontal},
		{Size: 2, Origin: model.Coordinate{X: 3, Y: 6}, Orientation: model.Horizontal},
		{Size: 2, Origin: model.Coordinate{X: 6, Y: 6}, Orientation: model.Horizontal},
		{Size: 1, Origin: model.Coordinate{X: 0, Y: 8}, Orientation: model.Horizontal},
		{Size: 1, Origin: model.Coordinate{X: 2, Y: 8}, Orientation: model.Horizontal},
		{Size: 1, Origin: model.Coordinate{X: 4, Y: 8}, Orientation: model.Horizontal},
		{Size: 1, Origin: model.Coordinate{X: 6, Y: 8}, Orientation: model.Horizontal},
	}
}

func TestPlaceShipsStartsPlayingOnceBothReady(t *testing.T) {
	t.Parallel()
	e, pub := newTwoPlayerEngine(t)

	require.NoError(t, e.PlaceShips("p1", fullFleetSpec()))
	assert.Equal(t, room.PhaseSetup, e.Snapshot().Phase)

	require.NoError(t, e.PlaceShips("p2", fullFleetSpec()))
	snap := e.Snapshot()
	assert.Equal(t, room.PhasePlaying, snap.Phase)
	assert.Contains(t, []string{"p1", "p2"}, snap.Turn)

	require.NotEmpty(t, pub.eventsOfType("game:turn"))
}

func TestPlaceShipsRejectsSecondAttempt(t *testing.T) {
	t.Parallel()
	e, _ := newTwoPlayerEngine(t)

	require.NoError(t, e.PlaceShips("p1", fullFleetSpec()))
	err := e.PlaceShips("p1", fullFleetSpec())
	assert.ErrorIs(t, err, room.ErrAlreadyReady)
}

func TestShootRejectsOutOfTurn(t *testing.T) {
	t.Parallel()
	e, _ := newTwoPlayerEngine(t)
	require.NoError(t, e.PlaceShips("p1", fullFleetSpec()))
	require.NoError(t, e.PlaceShips("p2", fullFleetSpec()))

	snap := e.Snapshot()
	notTurn := "p1"
	if snap.Turn == "p1" {
		notTurn = "p2"
	}

	err := e.Shoot(notTurn, model.Coordinate{X: 0, Y: 0})
	assert.ErrorIs(t, err, room.ErrNotYourTurn)
}

func TestShootMissFlipsTurnHitKeepsTurn(t *testing.T) {
	t.Parallel()
	e, _ := newTwoPlayerEngine(t)
	require.NoError(t, e.PlaceShips("p1", fullFleetSpec()))
	require.NoError(t, e.PlaceShips("p2", fullFleetSpec()))

	snap := e.Snapshot()
	shooter := snap.Turn

	// Both fleets occupy the same cells; fire at an empty cell (row 9 is
	// never occupied by fullFleetSpec) to force a guaranteed miss.
	require.NoError(t, e.Shoot(shooter, model.Coordinate{X: 9, Y: 9}))
	after := e.Snapshot()
	assert.NotEqual(t, shooter, after.Turn)

	// (0,0) holds the size-4 ship, so the new shooter hits without sinking
	// and keeps the turn.
	hitter := after.Turn
	require.NoError(t, e.Shoot(hitter, model.Coordinate{X: 0, Y: 0}))
	assert.Equal(t, hitter, e.Snapshot().Turn)
}

func TestShootRejectsRepeatCoordinate(t *testing.T) {
	t.Parallel()
	e, _ := newTwoPlayerEngine(t)
	require.NoError(t, e.PlaceShips("p1", fullFleetSpec()))
	require.NoError(t, e.PlaceShips("p2", fullFleetSpec()))

	snap := e.Snapshot()
	shooter := snap.Turn

	require.NoError(t, e.Shoot(shooter, model.Coordinate{X: 0, Y: 0}))

	// (0,0) holds the size-4 ship, so the first shot is a hit and the shooter
	// keeps the turn; only a miss would have flipped it.
	after := e.Snapshot()
	if after.Turn == shooter {
		err := e.Shoot(shooter, model.Coordinate{X: 0, Y: 0})
		assert.ErrorIs(t, err, room.ErrAlreadyShot)
	}
}

func TestCancelEndsRoomImmediately(t *testing.T) {
	t.Parallel()
	e, pub := newTwoPlayerEngine(t)

	require.NoError(t, e.Cancel("p1"))
	assert.Equal(t, room.PhaseOver, e.Snapshot().Phase)
	assert.NotEmpty(t, pub.eventsOfType("game:cancelled"))

	err := e.Cancel("p1")
	assert.ErrorIs(t, err, room.ErrRoomOver)
}

func TestDisconnectThenResumeWithinGraceSucceeds(t *testing.T) {
	t.Parallel()
	e, _ := newTwoPlayerEngine(t)
	require.NoError(t, e.PlaceShips("p1", fullFleetSpec()))
	require.NoError(t, e.PlaceShips("p2", fullFleetSpec()))

	require.NoError(t, e.Disconnect("p1"))
	assert.Equal(t, room.PhasePlaying, e.Snapshot().Phase)

	require.NoError(t, e.Resume("p1", "tok-1"))
	assert.Equal(t, room.PhasePlaying, e.Snapshot().Phase)
}

func TestDisconnectWithoutResumeForfeitsAfterGrace(t *testing.T) {
	t.Parallel()
	e, pub := newTwoPlayerEngine(t)
	require.NoError(t, e.PlaceShips("p1", fullFleetSpec()))
	require.NoError(t, e.PlaceShips("p2", fullFleetSpec()))

	require.NoError(t, e.Disconnect("p1"))

	require.Eventually(t, func() bool {
		return e.Snapshot().Phase == room.PhaseOver
	}, time.Second, 5*time.Millisecond)

	snap := e.Snapshot()
	assert.Equal(t, "p2", snap.Winner)
	assert.Equal(t, room.ReasonDisconnect, snap.Reason)
	assert.NotEmpty(t, pub.eventsOfType("game:over"))
}

func TestResumeRejectsWrongToken(t *testing.T) {
	t.Parallel()
	e, _ := newTwoPlayerEngine(t)
	require.NoError(t, e.Disconnect("p1"))
	err := e.Resume("p1", "wrong-token")
	assert.ErrorIs(t, err, room.ErrInvalidReconnectToken)
}

func TestChatDisallowedInBotRoom(t *testing.T) {
	t.Parallel()
	pub := &capturingPublisher{}
	e := room.NewEngine("room-bot",
		room.PlayerInit{PlayerID: "p1", Nickname: "Alice", ReconnectToken: "tok-1"},
		room.PlayerInit{PlayerID: "bot", Nickname: "Bot", ReconnectToken: ""},
		true, testConfig(), pub, nil,
	)

	err := e.SendChat("p1", chat.Draft{Kind: chat.KindText, Text: "hi"})
	assert.ErrorIs(t, err, chat.ErrNotAllowed)
}

func TestChatAllowedDuringPvpSetup(t *testing.T) {
	t.Parallel()
	e, pub := newTwoPlayerEngine(t)

	require.NoError(t, e.SendChat("p1", chat.Draft{Kind: chat.KindText, Text: "gl hf"}))
	assert.NotEmpty(t, pub.eventsOfType("chat:message"))
	assert.Len(t, e.ChatHistory(), 1)
}

func TestBotGameReachesGameOverEventually(t *testing.T) {
	t.Parallel()
	pub := &capturingPublisher{}
	cfg := testConfig()
	e := room.NewEngine("room-bot-2",
		room.PlayerInit{PlayerID: "p1", Nickname: "Alice", ReconnectToken: "tok-1"},
		room.PlayerInit{PlayerID: "bot", Nickname: "Bot", ReconnectToken: ""},
		true, cfg, pub, nil,
	)

	require.NoError(t, e.PlaceShips("p1", fullFleetSpec()))

	// The bot's fleet is placed at random by PlaceFleetRandomly, so drive
	// the game by firing at the first unshot cell on each of the human's
	// turns until one side's fleet is sunk.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := e.Snapshot()
		if snap.Phase == room.PhaseOver {
			break
		}
		if snap.Turn != "p1" {
			time.Sleep(2 * time.Millisecond)
			continue
		}
		shotAny := false
		for y := 0; y < model.GridSize && !shotAny; y++ {
			for x := 0; x < model.GridSize; x++ {
				if err := e.Shoot("p1", model.Coordinate{X: x, Y: y}); err == nil {
					shotAny = true
					break
				}
			}
		}
		if !shotAny {
			break
		}
	}

	require.Eventually(t, func() bool {
		return e.Snapshot().Phase == room.PhaseOver
	}, 5*time.Second, 10*time.Millisecond)
}
