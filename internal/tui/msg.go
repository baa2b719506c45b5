package tui

import (
	"time"

	"github.com/callegarimattia/battleship/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
)

// Messages
type (
	LoginSubmittedMsg struct{}
	EnvelopeMsg       struct {
		Env    protocol.Envelope
		Events <-chan protocol.Envelope
	}
	TickMsg time.Time
)

// TickCmd returns a command that triggers a tick.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// listenForEnvelopes waits for the next envelope off the client's event
// stream and threads the channel back through EnvelopeMsg so the caller can
// re-arm listening without ever blocking the UI loop.
func listenForEnvelopes(events <-chan protocol.Envelope) tea.Cmd {
	return func() tea.Msg {
		env, ok := <-events
		if !ok {
			return nil
		}
		return EnvelopeMsg{Env: env, Events: events}
	}
}
