package events_test

import (
	"testing"
	"time"

	"github.com/callegarimattia/battleship/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachForwardsEventsToSink(t *testing.T) {
	t.Parallel()

	bus := events.NewMemoryEventBus()
	defer bus.Close()

	sink := events.NewRecordingSink()
	sub := events.Attach(bus, sink)
	defer sub.Unsubscribe()

	bus.Publish(&events.GameEvent{
		Type:      events.EventMatchStarted,
		MatchID:   "room-1",
		Timestamp: time.Now(),
		Data:      events.MatchStartedData{Opponent: "bot", VsBot: true},
	})

	require.Eventually(t, func() bool {
		return len(sink.Events()) == 1
	}, time.Second, 5*time.Millisecond)

	got := sink.Events()[0]
	assert.Equal(t, events.EventMatchStarted, got.Type)
	assert.Equal(t, "room-1", got.MatchID)
}

func TestAttachSurvivesPanickingSink(t *testing.T) {
	t.Parallel()

	bus := events.NewMemoryEventBus()
	defer bus.Close()

	sub := events.Attach(bus, panickingSink{})
	defer sub.Unsubscribe()

	assert.NotPanics(t, func() {
		bus.Publish(&events.GameEvent{Type: events.EventSoftBan, MatchID: "room-2"})
	})
}

type panickingSink struct{}

func (panickingSink) Record(*events.GameEvent) { panic("boom") }
