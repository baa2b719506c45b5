package tui

import (
	"fmt"

	"github.com/callegarimattia/battleship/internal/client"
	"github.com/callegarimattia/battleship/internal/model"
	"github.com/callegarimattia/battleship/internal/protocol"
	"github.com/callegarimattia/battleship/internal/tui/boardview"
	"github.com/callegarimattia/battleship/internal/tui/rules"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// --- Global Keys (Always generic) ---
	if key, ok := msg.(tea.KeyMsg); ok {
		if key.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	// --- Error Handling ---
	// Block other updates while error is shown
	if m.Err != nil {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "q", "esc":
				m.Err = nil // Dismiss error
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	case error:
		m.Err = msg
		return m, nil
	}

	switch m.State {
	case StateLogin:
		return m.updateLogin(msg)
	case StateQueue:
		return m.updateQueue(msg)
	case StateSetup:
		return m.updateSetup(msg)
	case StatePlaying, StateOver:
		return m.updateGame(msg)
	}
	return m, cmd
}

// --- Sub-Update Functions ---

func (m *Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.LoginInput, cmd = m.LoginInput.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEnter {
		m.Nickname = m.LoginInput.Value()
		return m, func() tea.Msg {
			if err := m.Client.JoinQueue(m.Nickname, ""); err != nil {
				return err
			}
			return LoginSubmittedMsg{}
		}
	}

	if _, ok := msg.(LoginSubmittedMsg); ok {
		m.State = StateQueue
		return m, listenForEnvelopes(m.Client.Events)
	}
	return m, cmd
}

func (m *Model) updateQueue(msg tea.Msg) (tea.Model, tea.Cmd) {
	if env, ok := msg.(EnvelopeMsg); ok {
		return m.handleEnvelope(env)
	}
	return m, nil
}

func (m *Model) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	if env, ok := msg.(EnvelopeMsg); ok {
		return m.handleEnvelope(env)
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handleSetupKeys(key)
	}
	return m, nil
}

func (m *Model) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	if env, ok := msg.(EnvelopeMsg); ok {
		return m.handleEnvelope(env)
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.handlePlayKeys(key)
	}
	return m, nil
}

// handleEnvelope dispatches a single inbound wire event and re-arms
// listening for the next one.
func (m *Model) handleEnvelope(msg EnvelopeMsg) (tea.Model, tea.Cmd) {
	next := listenForEnvelopes(msg.Events)

	switch msg.Env.Type {
	case protocol.EventQueued:
		payload, err := client.Decode[protocol.QueuedPayload](msg.Env)
		if err != nil {
			return m, tea.Batch(func() tea.Msg { return err }, next)
		}
		m.PlayerID = payload.PlayerID
		m.ReconnectToken = payload.ReconnectToken
		m.QueueMessage = payload.Message

	case protocol.EventMatched:
		payload, err := client.Decode[protocol.MatchedPayload](msg.Env)
		if err != nil {
			return m, tea.Batch(func() tea.Msg { return err }, next)
		}
		m.RoomID = payload.RoomID
		m.Opponent = payload.Opponent
		m.VsBot = payload.VsBot
		if payload.ReconnectToken != "" {
			m.ReconnectToken = payload.ReconnectToken
		}
		m.State = StateSetup
		m.CursorX, m.CursorY = 0, 0
		m.CurrentShipIdx = 0
		m.PlacedShips = nil

	case protocol.EventGameState:
		payload, err := client.Decode[protocol.StatePayload](msg.Env)
		if err != nil {
			return m, tea.Batch(func() tea.Msg { return err }, next)
		}
		m.applyState(payload)

	case protocol.EventGameTurn:
		payload, err := client.Decode[protocol.TurnPayload](msg.Env)
		if err != nil {
			return m, tea.Batch(func() tea.Msg { return err }, next)
		}
		m.Turn = payload.Turn
		m.Phase = payload.Phase
		if payload.GameOver {
			m.State = StateOver
			m.Winner = payload.Winner
		}

	case protocol.EventShotResult:
		payload, err := client.Decode[protocol.ShotResultPayload](msg.Env)
		if err != nil {
			return m, tea.Batch(func() tea.Msg { return err }, next)
		}
		m.LastShot = fmt.Sprintf("%s fired at %d,%d: %s", payload.Shooter, payload.Coord.X, payload.Coord.Y, payload.Outcome)

	case protocol.EventGameOver:
		payload, err := client.Decode[protocol.OverPayload](msg.Env)
		if err != nil {
			return m, tea.Batch(func() tea.Msg { return err }, next)
		}
		m.State = StateOver
		m.Winner = payload.Winner
		m.OverMessage = payload.Message

	case protocol.EventCancelled:
		payload, err := client.Decode[protocol.CancelledPayload](msg.Env)
		if err != nil {
			return m, tea.Batch(func() tea.Msg { return err }, next)
		}
		m.State = StateOver
		m.OverMessage = payload.Message

	case protocol.EventGameError:
		payload, err := client.Decode[protocol.ErrorPayload](msg.Env)
		if err == nil {
			m.Err = fmt.Errorf("server: %s", payload.Message)
		}
	}

	return m, next
}

func (m *Model) applyState(payload protocol.StatePayload) {
	m.RoomID = payload.RoomID
	m.Phase = payload.Phase
	if payload.Turn != "" {
		m.Turn = payload.Turn
	}
	m.YourBoard = payload.YourBoard
	m.OpponentBoard = payload.OpponentBoard
	m.YouReady = payload.YouReady
	m.OpponentReady = payload.OpponentReady

	switch payload.Phase {
	case "setup":
		m.State = StateSetup
	case "playing":
		m.State = StatePlaying
	case "over":
		m.State = StateOver
	}
}

func (m *Model) handleSetupKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.CursorY > 0 {
			m.CursorY--
		}
	case "down", "j":
		if m.CursorY < BoardSize-1 {
			m.CursorY++
		}
	case "left", "h":
		if m.CursorX > 0 {
			m.CursorX--
		}
	case "right", "l":
		if m.CursorX < BoardSize-1 {
			m.CursorX++
		}
	case "r":
		m.ShipOrientation = !m.ShipOrientation
	case "enter", "space":
		return m.handlePlaceShip()
	}
	return m, nil
}

func (m *Model) handlePlayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.CursorY > 0 {
			m.CursorY--
		}
	case "down", "j":
		if m.CursorY < BoardSize-1 {
			m.CursorY++
		}
	case "left", "h":
		if m.CursorX > 0 {
			m.CursorX--
		}
	case "right", "l":
		if m.CursorX < BoardSize-1 {
			m.CursorX++
		}
	case "enter", "space":
		if m.State == StatePlaying && m.Turn == m.PlayerID {
			return m.handleShoot()
		}
	}
	return m, nil
}

func (m *Model) handlePlaceShip() (tea.Model, tea.Cmd) {
	if m.CurrentShipIdx >= len(StandardShipSizes) {
		return m, nil
	}

	size := StandardShipSizes[m.CurrentShipIdx]
	cx, cy, vert := m.CursorX, m.CursorY, m.ShipOrientation

	orientation := model.Horizontal
	if vert {
		orientation = model.Vertical
	}

	view := m.ownBoardView()
	if err := rules.CanPlaceShip(view, size, cx, cy, vert); err != nil {
		return m, func() tea.Msg { return err }
	}

	m.PlacedShips = append(m.PlacedShips, model.SerializedShip{
		Size: size, Origin: model.Coordinate{X: cx, Y: cy}, Orientation: orientation,
	})
	m.CurrentShipIdx++

	if m.CurrentShipIdx < len(StandardShipSizes) {
		return m, nil
	}

	ships := m.PlacedShips
	return m, func() tea.Msg {
		if err := m.Client.PlaceShips(m.RoomID, ships); err != nil {
			return err
		}
		return nil
	}
}

func (m *Model) handleShoot() (tea.Model, tea.Cmd) {
	cx, cy := m.CursorX, m.CursorY

	view := boardview.New(m.OpponentBoard, false)
	if err := rules.CanAttack(view, cx, cy); err != nil {
		return m, func() tea.Msg { return err }
	}

	roomID, coord := m.RoomID, model.Coordinate{X: cx, Y: cy}
	return m, func() tea.Msg {
		if err := m.Client.Shoot(roomID, coord); err != nil {
			return err
		}
		return nil
	}
}

// ownBoardView builds a placement-time board view from the ships placed so
// far, since the server has not yet echoed back a game:state snapshot.
func (m *Model) ownBoardView() boardview.View {
	grid := make([][]boardview.CellState, BoardSize)
	for y := range grid {
		grid[y] = make([]boardview.CellState, BoardSize)
	}
	for _, ship := range m.PlacedShips {
		dx, dy := ship.Orientation.Vector()
		for i := 0; i < ship.Size; i++ {
			x, y := ship.Origin.X+dx*i, ship.Origin.Y+dy*i
			if x >= 0 && x < BoardSize && y >= 0 && y < BoardSize {
				grid[y][x] = boardview.CellShip
			}
		}
	}
	return boardview.View{Size: BoardSize, Grid: grid}
}
