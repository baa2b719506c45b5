package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/callegarimattia/battleship/internal/model"
	"github.com/callegarimattia/battleship/internal/protocol"
	"github.com/callegarimattia/battleship/internal/tui/boardview"
)

// CoordinateToChess converts numeric coordinates to chess-style (A-J, 1-10).
func CoordinateToChess(x, y int) string {
	if x < 0 || x > 9 || y < 0 || y > 9 {
		return fmt.Sprintf("(%d,%d)", x, y)
	}
	col := string(rune('A' + x))
	return fmt.Sprintf("%s%d", col, y+1)
}

// ChessToCoordinate converts chess-style coordinates to numeric (0-9, 0-9).
func ChessToCoordinate(chess string) (x, y int, err error) {
	chess = strings.ToUpper(strings.TrimSpace(chess))
	if len(chess) < 2 {
		return 0, 0, fmt.Errorf("invalid coordinate format")
	}

	col := chess[0]
	if col < 'A' || col > 'J' {
		return 0, 0, fmt.Errorf("column must be A-J")
	}
	x = int(col - 'A')

	var row int
	if _, err = fmt.Sscanf(chess[1:], "%d", &row); err != nil || row < 1 || row > 10 {
		return 0, 0, fmt.Errorf("row must be 1-10")
	}
	y = row - 1

	return x, y, nil
}

// GetShipName returns the ship name for a given size.
func GetShipName(size int) string {
	switch size {
	case 4:
		return "Battleship"
	case 3:
		return "Cruiser"
	case 2:
		return "Destroyer"
	case 1:
		return "Submarine"
	default:
		return fmt.Sprintf("Ship (size %d)", size)
	}
}

// formatBoard renders a board view as a fixed-width chess-coordinate grid
// inside a code block.
func formatBoard(view boardview.View) string {
	var sb strings.Builder

	sb.WriteString("```\n   A B C D E F G H I J\n")
	for y := 0; y < view.Size; y++ {
		fmt.Fprintf(&sb, "%2d ", y+1)
		for x := 0; x < view.Size; x++ {
			sb.WriteString(cellToEmoji(view.Grid[y][x]))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("```")

	return sb.String()
}

func cellToEmoji(cell boardview.CellState) string {
	switch cell {
	case boardview.CellShip:
		return "■"
	case boardview.CellHit:
		return "X"
	case boardview.CellMiss:
		return "○"
	case boardview.CellSunk:
		return "☠"
	case boardview.CellEmpty, boardview.CellUnknown:
		return "·"
	default:
		return "·"
	}
}

// fleetSummary reports each ship's remaining status for a player's own
// board, grouping placed ships by size.
func fleetSummary(board model.SerializedBoard) string {
	if len(board.Ships) == 0 {
		return "unknown"
	}

	sunk := make(map[model.Coordinate]bool, len(board.SunkCells))
	for _, c := range board.SunkCells {
		sunk[c] = true
	}

	alive := map[int]int{}
	for _, ship := range board.Ships {
		if shipSunk(ship, sunk) {
			continue
		}
		alive[ship.Size]++
	}

	if len(alive) == 0 {
		return "All ships sunk!"
	}

	var sb strings.Builder
	for size := 4; size >= 1; size-- {
		if count, ok := alive[size]; ok && count > 0 {
			fmt.Fprintf(&sb, "%s (size %d): %d\n", GetShipName(size), size, count)
		}
	}
	return sb.String()
}

func shipSunk(ship model.SerializedShip, sunk map[model.Coordinate]bool) bool {
	dx, dy := ship.Orientation.Vector()
	for i := 0; i < ship.Size; i++ {
		c := model.Coordinate{X: ship.Origin.X + dx*i, Y: ship.Origin.Y + dy*i}
		if !sunk[c] {
			return false
		}
	}
	return true
}

func embedColorForPhase(phase string) int {
	switch phase {
	case "setup":
		return 0xffaa00
	case "playing":
		return 0x0099ff
	case "over":
		return 0x00ff00
	default:
		return 0x808080
	}
}

// formatStateEmbed builds the state:game embed shown to a player by
// /battleship status.
func formatStateEmbed(p *playerSession, state protocol.StatePayload) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "⚓ Battleship",
		Color: embedColorForPhase(state.Phase),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Phase", Value: state.Phase, Inline: true},
		},
	}

	if state.Turn != "" {
		turnLabel := "Opponent"
		if state.Turn == p.playerID {
			turnLabel = "You"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Current Turn", Value: turnLabel, Inline: true,
		})
	}

	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:   "📍 Your Board",
			Value:  formatBoard(boardview.New(state.YourBoard, true)),
			Inline: false,
		},
		&discordgo.MessageEmbedField{
			Name:   "🎯 Opponent's Board",
			Value:  formatBoard(boardview.New(state.OpponentBoard, false)),
			Inline: false,
		},
		&discordgo.MessageEmbedField{
			Name:   "🚢 Your Fleet",
			Value:  fleetSummary(state.YourBoard),
			Inline: true,
		},
	)

	return embed
}

// formatOverEmbed builds the game:over embed.
func formatOverEmbed(p *playerSession, over protocol.OverPayload) *discordgo.MessageEmbed {
	winnerText := "Opponent won"
	switch {
	case over.Winner == "":
		winnerText = "No winner"
	case over.Winner == p.playerID:
		winnerText = "You won! 🎉"
	}

	return &discordgo.MessageEmbed{
		Title:       "🏆 Game Over",
		Description: fmt.Sprintf("%s\n\n%s", winnerText, over.Message),
		Color:       0xffd700,
	}
}

// formatShotResultEmbed builds the game:shot_result embed.
func formatShotResultEmbed(p *playerSession, shot protocol.ShotResultPayload) *discordgo.MessageEmbed {
	who := "You"
	if shot.Shooter != p.playerID {
		who = "Opponent"
	}

	return &discordgo.MessageEmbed{
		Title: "💥 Shot Result",
		Description: fmt.Sprintf(
			"%s fired at %s: **%s**",
			who, CoordinateToChess(shot.Coord.X, shot.Coord.Y), strings.ToUpper(shot.Outcome),
		),
		Color: 0xff9900,
	}
}
