package tui

import (
	"fmt"
	"strings"

	"github.com/callegarimattia/battleship/internal/tui/boardview"
	"github.com/callegarimattia/battleship/internal/tui/rules"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var content string

	switch m.State {
	case StateLogin:
		content = m.viewLogin()
	case StateQueue:
		content = m.viewQueue()
	case StateSetup:
		content = m.viewGame()
	case StatePlaying, StateOver:
		content = m.viewGame()
	default:
		content = "Unknown State"
	}

	if m.Err != nil {
		errBox := StyleErrorBox.Render(
			fmt.Sprintf("ERROR\n\n%v\n\n[Q] Dismiss", m.Err),
		)
		content = fmt.Sprintf("%s\n\n%s", content, errBox)
	}

	if m.Width > 0 && m.Height > 0 {
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, content)
	}

	return content
}

// --- View Helpers ---

func (m *Model) viewLogin() string {
	return fmt.Sprintf(
		"\n%s\n\n%s\n\n[Enter] Join Queue",
		StyleTitle.Render("BATTLESHIP TUI"),
		m.LoginInput.View(),
	)
}

func (m *Model) viewQueue() string {
	msg := m.QueueMessage
	if msg == "" {
		msg = "Searching for an opponent..."
	}
	return fmt.Sprintf(
		"\n%s\n\n%s\n",
		StyleTitle.Render("MATCHMAKING"),
		msg,
	)
}

func (m *Model) viewGame() string {
	var baseColor lipgloss.Color
	stateLabel := ""

	switch {
	case m.State == StateOver:
		if m.Winner == m.PlayerID {
			baseColor = ColorWin
			stateLabel = "VICTORY"
		} else {
			baseColor = ColorLose
			stateLabel = "DEFEAT"
		}
	case m.State == StateSetup:
		baseColor = ColorSetup
		stateLabel = "SETUP PHASE"
	case m.Turn == m.PlayerID:
		baseColor = ColorMyTurn
		stateLabel = "YOUR TURN"
	default:
		baseColor = ColorOpTurn
		stateLabel = "OPPONENT'S TURN"
	}

	styleBorder := StyleBoardBorder.BorderForeground(baseColor)
	styleLabel := lipgloss.NewStyle().Foreground(baseColor).Bold(true)

	instructions := styleLabel.Render(m.getInstructions())

	var myView, enemyView boardview.View
	if m.State == StateSetup {
		myView = m.ownBoardView()
	} else {
		myView = boardview.New(m.YourBoard, true)
	}
	enemyView = boardview.New(m.OpponentBoard, false)

	showMyCursor := m.State == StateSetup && m.CurrentShipIdx < len(StandardShipSizes)
	showEnemyCursor := m.State == StatePlaying && m.Turn == m.PlayerID

	myBoard := m.renderBoard(myView, showMyCursor, true, &styleBorder)
	enemyBoard := m.renderBoard(enemyView, showEnemyCursor, false, &styleBorder)

	leftPanel := lipgloss.JoinVertical(
		lipgloss.Left,
		styleLabel.Render(stateLabel),
		styleLabel.Render("YOUR FLEET"),
		myBoard,
	)

	boards := lipgloss.JoinHorizontal(
		lipgloss.Top,
		lipgloss.NewStyle().MarginRight(4).Render(leftPanel),
		lipgloss.JoinVertical(lipgloss.Left, "", styleLabel.Render("ENEMY WATERS"), enemyBoard),
	)

	out := fmt.Sprintf("%s\n\n%s", boards, instructions)
	if m.LastShot != "" {
		out = fmt.Sprintf("%s\n\n%s", out, m.LastShot)
	}
	return out
}

func (m *Model) getInstructions() string {
	switch {
	case m.State == StateOver:
		res := "LOSE"
		if m.Winner == m.PlayerID {
			res = "WIN"
		}
		msg := m.OverMessage
		if msg == "" {
			msg = fmt.Sprintf("GAME OVER - YOU %s! Winner: %s", res, m.Winner)
		}
		return msg
	case m.State == StateSetup:
		if m.CurrentShipIdx < len(StandardShipSizes) {
			size := StandardShipSizes[m.CurrentShipIdx]
			orient := "HORZ"
			if m.ShipOrientation {
				orient = "VERT"
			}
			return fmt.Sprintf(
				"SETUP: Place Ship Size %d (%s) | [Arrows] Move | [R] Rotate | [Enter] Place",
				size,
				orient,
			)
		}
		if m.YouReady && !m.OpponentReady {
			return "SETUP: Waiting for opponent to finish placing ships..."
		}
		return "SETUP: Fleet placed."
	case m.Turn == m.PlayerID:
		return "YOUR TURN: Select target on enemy board | [Arrows] Move | [Enter] Fire"
	default:
		return "OPPONENT'S TURN: Please wait..."
	}
}

func (m *Model) renderBoard(
	board boardview.View,
	showCursor bool,
	isMe bool,
	borderStyle *lipgloss.Style,
) string {
	var rows []string

	header := "  "
	for x := 0; x < board.Size; x++ {
		header += fmt.Sprintf("%d ", x)
	}
	rows = append(rows, header)

	for y := 0; y < board.Size; y++ {
		rowStr := fmt.Sprintf("%c ", 'A'+y)
		for x := 0; x < board.Size; x++ {
			cell := board.Grid[y][x]
			rendered := m.renderCell(x, y, cell, board, isMe, showCursor)
			rowStr += rendered + " "
		}
		rows = append(rows, rowStr)
	}

	return borderStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderCell(
	x, y int,
	cell boardview.CellState,
	board boardview.View,
	isMe, showCursor bool,
) string {
	symbol := "·" // Empty/Unknown default for water
	style := StyleCellEmpty

	switch cell {
	case boardview.CellShip:
		symbol = "S"
		style = StyleCellShip
	case boardview.CellHit:
		symbol = "X"
		style = StyleCellHit
	case boardview.CellMiss:
		symbol = "O"
		style = StyleCellMiss
	case boardview.CellSunk:
		symbol = "#"
		style = StyleCellSunk
	case boardview.CellUnknown:
		symbol = "~"
		style = StyleCellUnknown
	}

	rendered := style.Render(symbol)

	if ghost, ok := m.getGhostSymbol(x, y, board, isMe, symbol); ok {
		rendered = ghost
	}

	if showCursor && x == m.CursorX && y == m.CursorY {
		rendered = StyleCursor.Render(symbol)
	}

	return rendered
}

func (m *Model) getGhostSymbol(
	x, y int,
	board boardview.View,
	isMe bool,
	symbol string,
) (string, bool) {
	if !isMe || m.State != StateSetup || m.CurrentShipIdx >= len(StandardShipSizes) {
		return "", false
	}

	size := StandardShipSizes[m.CurrentShipIdx]
	isGhost := false

	if m.ShipOrientation { // Vertical
		if x == m.CursorX && y >= m.CursorY && y < m.CursorY+size {
			isGhost = true
		}
	} else { // Horizontal
		if y == m.CursorY && x >= m.CursorX && x < m.CursorX+size {
			isGhost = true
		}
	}

	if isGhost {
		err := rules.CanPlaceShip(
			board,
			size,
			m.CursorX,
			m.CursorY,
			m.ShipOrientation,
		)
		if err == nil {
			return StyleCellGhost.Render(symbol), true
		}
	}
	return "", false
}
