// Package tui implements the TUI for Battleship
package tui

import (
	"log"

	"github.com/callegarimattia/battleship/internal/client"
	"github.com/callegarimattia/battleship/internal/env"
	"github.com/callegarimattia/battleship/internal/model"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SessionState represents the current state of the application.
type SessionState int

const (
	StateLogin SessionState = iota
	StateQueue
	StateSetup
	StatePlaying
	StateOver
)

// BoardSize is the fixed grid dimension used throughout the TUI.
const BoardSize = model.GridSize

// StandardShipSizes is the placement order offered to the player during
// setup: 4, 3+3, 2+2+2, 1+1+1+1 — the standard fleet.
var StandardShipSizes = []int{4, 3, 3, 2, 2, 2, 1, 1, 1, 1}

// Model is the main TUI model.
type Model struct {
	State  SessionState
	Client *client.Client

	// Login
	LoginInput textinput.Model
	Nickname   string

	// Queue / match
	PlayerID       string
	RoomID         string
	ReconnectToken string
	Opponent       string
	VsBot          bool
	QueueMessage   string

	// Game
	Phase         string
	Turn          string
	YourBoard     model.SerializedBoard
	OpponentBoard model.SerializedBoard
	YouReady      bool
	OpponentReady bool
	LastShot      string
	Winner        string
	OverMessage   string

	// Game Interaction
	CursorX, CursorY int

	// Setup Phase
	PlacedShips     []model.SerializedShip
	CurrentShipIdx  int
	ShipOrientation bool // false = horizontal, true = vertical

	// Error Handling
	Err error

	// UI
	Width, Height int
}

// New connects to the gateway and returns a fresh login-screen Model.
func New() *Model {
	cfg, err := env.LoadClientConfig()
	if err != nil {
		log.Fatalf("failed to load client config: %v", err)
	}

	c, err := client.Connect(cfg.BaseURL)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", cfg.BaseURL, err)
	}

	ti := textinput.New()
	ti.Placeholder = "Commander Name"
	ti.Focus()
	ti.CharLimit = 20
	ti.Width = 30

	return &Model{
		State:      StateLogin,
		Client:     c,
		LoginInput: ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}
