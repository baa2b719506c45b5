package room

import (
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/callegarimattia/battleship/internal/ai"
	"github.com/callegarimattia/battleship/internal/chat"
	"github.com/callegarimattia/battleship/internal/events"
	"github.com/callegarimattia/battleship/internal/model"
	"github.com/callegarimattia/battleship/internal/protocol"
)

// Config bounds the engine's timers. NewEngine uses the fields as given;
// DefaultConfig supplies spec.md's defaults.
type Config struct {
	GraceWindow       time.Duration
	InactivityTimeout time.Duration
	ChatPostGameTTL   time.Duration
	BotThinkMin       time.Duration
	BotThinkMax       time.Duration
}

// DefaultConfig returns spec.md §5/§9's documented defaults.
func DefaultConfig() Config {
	return Config{
		GraceWindow:       30 * time.Second,
		InactivityTimeout: 120 * time.Second,
		ChatPostGameTTL:   chat.PostGameTTL,
		BotThinkMin:       250 * time.Millisecond,
		BotThinkMax:       500 * time.Millisecond,
	}
}

// PlayerInit seeds one slot at room creation.
type PlayerInit struct {
	PlayerID       string
	Nickname       string
	ReconnectToken string
}

// Engine is the single writer for one Room: every public method takes the
// room's mutex for its entire body, so operations are totally ordered —
// client commands and the engine's own timers (grace, inactivity, bot
// think-delay) all funnel through the same lock.
type Engine struct {
	mu   sync.Mutex
	room *Room
	cfg  Config
	pub  Publisher
	rec  events.Sink

	inactivityTimer *time.Timer
	graceTimers     [2]*time.Timer
	chatSweepTimer  *time.Timer
	closed          bool
}

// NewEngine creates a room between two players (human or bot) and
// immediately synthesizes the bot's placement, if any.
func NewEngine(id string, p1, p2 PlayerInit, vsBot bool, cfg Config, pub Publisher, rec events.Sink) *Engine {
	now := time.Now()
	r := &Room{
		ID:           id,
		Phase:        PhaseSetup,
		VsBot:        vsBot,
		LastActivity: now,
		CreatedAt:    now,
		Chat:         &chat.History{},
	}
	r.Slots[0] = &Slot{PlayerID: p1.PlayerID, Nickname: p1.Nickname, Connected: true, ReconnectToken: p1.ReconnectToken}
	r.Slots[1] = &Slot{PlayerID: p2.PlayerID, Nickname: p2.Nickname, Connected: true, ReconnectToken: p2.ReconnectToken, IsBot: vsBot}

	e := &Engine{room: r, cfg: cfg, pub: pub, rec: rec}

	if vsBot {
		bot := r.Slots[1]
		bot.Board = model.PlaceFleetRandomly()
		bot.Ready = true
		bot.AiState = ai.NewState(rand.IntN(2))
	}

	e.record(events.EventMatchStarted, p1.PlayerID, events.MatchStartedData{Opponent: p2.Nickname, VsBot: vsBot})

	return e
}

// ID returns the room's identifier.
func (e *Engine) ID() string {
	return e.room.ID
}

// Snapshot returns a shallow copy of the room's exported fields for
// read-only inspection (e.g. listing rooms). Callers must not mutate boards
// reachable from the snapshot.
func (e *Engine) Snapshot() Room {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.room
}

func (e *Engine) record(t events.EventType, playerID string, data any) {
	if e.rec == nil {
		return
	}
	e.rec.Record(&events.GameEvent{Type: t, MatchID: e.room.ID, PlayerID: playerID, Data: data, Timestamp: time.Now()})
}

// publish delivers ev. An empty ToPlayerID means broadcast: per room.Event's
// contract, it fans out to every occupied slot rather than relying on the
// publisher to know room membership.
func (e *Engine) publish(ev Event) {
	if e.pub == nil {
		return
	}
	if ev.ToPlayerID != "" {
		e.pub.Publish(ev)
		return
	}
	for _, s := range e.room.Slots {
		if s == nil {
			continue
		}
		addressed := ev
		addressed.ToPlayerID = s.PlayerID
		e.pub.Publish(addressed)
	}
}

func (e *Engine) touch() {
	e.room.LastActivity = time.Now()
	e.resetInactivityTimer()
}

func (e *Engine) resetInactivityTimer() {
	if e.inactivityTimer != nil {
		e.inactivityTimer.Stop()
	}
	if e.room.Phase != PhasePlaying {
		return
	}
	e.inactivityTimer = time.AfterFunc(e.cfg.InactivityTimeout, e.onInactivityTimeout)
}

// --- PlaceShips ---

// PlaceShips validates and stores playerID's fleet. See spec.md §4.7.
func (e *Engine) PlaceShips(playerID string, spec []model.SerializedShip) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.room.slotIndex(playerID)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	if e.room.Phase != PhaseSetup {
		return ErrNotInSetup
	}
	slot := e.room.Slots[idx]
	if slot.Ready {
		return ErrAlreadyReady
	}

	board, err := model.BuildBoard(spec)
	if err != nil {
		return ErrInvalidShipPlacement
	}

	slot.Board = board
	slot.Ready = true
	e.touch()

	e.publishState()

	if e.bothReady() {
		e.startPlaying()
	}

	return nil
}

func (e *Engine) bothReady() bool {
	return e.room.Slots[0].Ready && e.room.Slots[1].Ready
}

func (e *Engine) startPlaying() {
	e.room.Phase = PhasePlaying
	first := rand.IntN(2)
	e.room.Turn = e.room.Slots[first].PlayerID
	e.touch()

	e.publishState()
	e.publishTurn()

	e.maybeScheduleBot()
}

// --- Shoot ---

// Shoot resolves playerID's shot against the opponent's board. See spec.md §4.7.
func (e *Engine) Shoot(playerID string, coord model.Coordinate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shootLocked(playerID, coord)
}

func (e *Engine) shootLocked(playerID string, coord model.Coordinate) error {
	idx := e.room.slotIndex(playerID)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	if e.room.Phase != PhasePlaying {
		return ErrNotInPlaying
	}
	if e.room.Turn != playerID {
		return ErrNotYourTurn
	}

	opponent := e.room.Slots[otherIdx(idx)]
	if opponent.InGrace() {
		return ErrReconnectGrace
	}
	if !opponent.Board.InBounds(coord) {
		return ErrInvalidCoord
	}

	outcome := opponent.Board.ReceiveShot(coord)
	if outcome == model.ShotResultInvalid {
		return ErrInvalidCoord
	}
	if outcome == model.ShotResultAlreadyShot {
		return ErrAlreadyShot
	}

	shooter := e.room.Slots[idx]
	shooter.ShotsFired++
	e.touch()

	var shipID *int
	if outcome == model.ShotResultSunk {
		id := opponentSunkShipID(opponent.Board, coord)
		shipID = &id
	}

	gameOver := opponent.Board.AllShipsSunk()

	e.publish(Event{RoomID: e.room.ID, Type: protocol.EventShotResult, Payload: protocol.ShotResultPayload{
		RoomID: e.room.ID, Shooter: playerID, Coord: coord, Outcome: outcome.String(), ShipID: shipID, GameOver: gameOver,
	}})

	if gameOver {
		e.finish(playerID, ReasonFleetSunk)
		return nil
	}

	if outcome == model.ShotResultMiss {
		e.room.Turn = opponent.PlayerID
	}
	e.publishTurn()

	if e.room.Turn == opponent.PlayerID && opponent.IsBot {
		e.scheduleBotTurn()
	}

	return nil
}

func opponentSunkShipID(b *model.Board, around model.Coordinate) int {
	for _, s := range b.Ships() {
		if !s.Sunk() {
			continue
		}
		for _, c := range s.Cells() {
			if c == around {
				return s.ID()
			}
		}
	}
	return -1
}

// --- Cancel ---

// Cancel ends the room immediately with no winner.
func (e *Engine) Cancel(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.room.slotIndex(playerID) < 0 {
		return ErrUnknownPlayer
	}
	if e.room.Phase == PhaseOver {
		return ErrRoomOver
	}

	e.room.Winner = ""
	e.finish("", ReasonManualCancel)
	e.publish(Event{RoomID: e.room.ID, Type: protocol.EventCancelled, Payload: protocol.CancelledPayload{
		RoomID: e.room.ID, Reason: string(ReasonManualCancel), Message: "the room was cancelled",
	}})
	return nil
}

// --- Disconnect / Resume ---

// Disconnect clears playerID's socket handle and starts the reconnect grace window.
func (e *Engine) Disconnect(playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.room.slotIndex(playerID)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	if e.room.Phase == PhaseOver {
		return nil
	}

	slot := e.room.Slots[idx]
	slot.Connected = false
	slot.GraceDeadline = time.Now().Add(e.cfg.GraceWindow)

	if e.graceTimers[idx] != nil {
		e.graceTimers[idx].Stop()
	}
	e.graceTimers[idx] = time.AfterFunc(e.cfg.GraceWindow, func() { e.onGraceExpired(idx) })

	// Pause the turn clock while a grace window is active.
	if e.inactivityTimer != nil {
		e.inactivityTimer.Stop()
	}

	opponent := e.room.Slots[otherIdx(idx)]
	e.publish(Event{RoomID: e.room.ID, ToPlayerID: opponent.PlayerID, Type: protocol.EventGameError, Payload: protocol.ErrorPayload{
		RoomID: e.room.ID, Code: protocol.CodeReconnectGrace, Message: "opponent disconnected",
		RemainingMs: e.cfg.GraceWindow.Milliseconds(),
	}})

	return nil
}

// Resume rebinds playerID's socket if token matches the slot's reconnect token.
func (e *Engine) Resume(playerID, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.room.slotIndex(playerID)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	slot := e.room.Slots[idx]
	if slot.ReconnectToken != token {
		return ErrInvalidReconnectToken
	}
	if e.room.Phase == PhaseOver {
		return ErrRoomOver
	}

	slot.Connected = true
	slot.GraceDeadline = time.Time{}
	if e.graceTimers[idx] != nil {
		e.graceTimers[idx].Stop()
		e.graceTimers[idx] = nil
	}
	e.resetInactivityTimer()

	e.publishState()

	opponent := e.room.Slots[otherIdx(idx)]
	e.publish(Event{RoomID: e.room.ID, ToPlayerID: opponent.PlayerID, Type: protocol.EventGameError, Payload: protocol.ErrorPayload{
		RoomID: e.room.ID, Code: protocol.CodeReconnectRestored, Message: "opponent reconnected",
	}})

	return nil
}

// recoverToGeneral catches a panic escaping a timer-driven entry point and
// ends the room with reason=general instead of letting it crash the
// process. Safe to call whether or not e.mu is currently held by the
// caller's own deferred Unlock, which always runs before this does.
func (e *Engine) recoverToGeneral(where string) {
	if r := recover(); r != nil {
		log.Printf("room: recovered panic in %s: %v", where, r)
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.room.Phase != PhaseOver {
			e.finish("", ReasonGeneral)
		}
	}
}

func (e *Engine) onGraceExpired(idx int) {
	defer e.recoverToGeneral("onGraceExpired")
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.room.Phase == PhaseOver {
		return
	}
	slot := e.room.Slots[idx]
	if slot.GraceDeadline.IsZero() || time.Now().Before(slot.GraceDeadline) {
		return // resumed or rescheduled in the meantime
	}

	winner := e.room.Slots[otherIdx(idx)].PlayerID
	e.finish(winner, ReasonDisconnect)
}

func (e *Engine) onInactivityTimeout() {
	defer e.recoverToGeneral("onInactivityTimeout")
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.room.Phase != PhasePlaying {
		return
	}
	// The last mover is whichever slot does NOT currently hold the turn.
	lastMover := e.room.Turn
	for _, s := range e.room.Slots {
		if s.PlayerID != e.room.Turn {
			lastMover = s.PlayerID
		}
	}
	e.finish(lastMover, ReasonInactivityTimeout)
}

// --- Bot scheduling ---

func (e *Engine) maybeScheduleBot() {
	botIdx := e.botSlotIndex()
	if botIdx >= 0 && e.room.Turn == e.room.Slots[botIdx].PlayerID {
		e.scheduleBotTurn()
	}
}

func (e *Engine) botSlotIndex() int {
	for i, s := range e.room.Slots {
		if s.IsBot {
			return i
		}
	}
	return -1
}

func (e *Engine) scheduleBotTurn() {
	think := e.cfg.BotThinkMin
	if e.cfg.BotThinkMax > e.cfg.BotThinkMin {
		think += time.Duration(rand.Int64N(int64(e.cfg.BotThinkMax - e.cfg.BotThinkMin)))
	}
	time.AfterFunc(think, e.playBotTurn)
}

func (e *Engine) playBotTurn() {
	defer e.recoverToGeneral("playBotTurn")
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.room.Phase != PhasePlaying {
		return
	}
	botIdx := e.botSlotIndex()
	if botIdx < 0 || e.room.Turn != e.room.Slots[botIdx].PlayerID {
		return
	}

	human := e.room.Slots[otherIdx(botIdx)]
	bot := e.room.Slots[botIdx]

	coord := ai.NextShot(human.Board, bot.AiState)
	if coord.X < 0 {
		return
	}

	outcome := human.Board.ReceiveShot(coord)
	ai.RegisterShot(bot.AiState, coord, outcome)
	bot.ShotsFired++
	e.touch()

	var shipID *int
	if outcome == model.ShotResultSunk {
		id := opponentSunkShipID(human.Board, coord)
		shipID = &id
	}
	gameOver := human.Board.AllShipsSunk()

	e.publish(Event{RoomID: e.room.ID, Type: protocol.EventShotResult, Payload: protocol.ShotResultPayload{
		RoomID: e.room.ID, Shooter: bot.PlayerID, Coord: coord, Outcome: outcome.String(), ShipID: shipID, GameOver: gameOver,
	}})

	if gameOver {
		e.finish(bot.PlayerID, ReasonFleetSunk)
		return
	}

	if outcome == model.ShotResultMiss {
		e.room.Turn = human.PlayerID
		e.publishTurn()
		return
	}

	e.publishTurn()
	e.scheduleBotTurn()
}

// --- Outbound payload construction ---

func (e *Engine) publishState() {
	for i, s := range e.room.Slots {
		opp := e.room.Slots[otherIdx(i)]
		var yourBoard, oppBoard model.SerializedBoard
		if s.Board != nil {
			yourBoard = s.Board.Serialize()
		}
		if opp.Board != nil {
			oppBoard = opp.Board.Mask()
		}
		e.publish(Event{RoomID: e.room.ID, ToPlayerID: s.PlayerID, Type: protocol.EventGameState, Payload: protocol.StatePayload{
			RoomID: e.room.ID, Phase: string(e.room.Phase), Turn: e.room.Turn,
			YourBoard: yourBoard, OpponentBoard: oppBoard,
			YouReady: s.Ready, OpponentReady: opp.Ready,
			YourShots: s.ShotsFired, OpponentShots: opp.ShotsFired,
		}})
	}
}

// publishTurn announces the current turn mid-game. finish emits its own
// EventGameOver separately, so GameOver/Winner here are always the
// in-progress zero values.
func (e *Engine) publishTurn() {
	for _, s := range e.room.Slots {
		e.publish(Event{RoomID: e.room.ID, ToPlayerID: s.PlayerID, Type: protocol.EventGameTurn, Payload: protocol.TurnPayload{
			RoomID: e.room.ID, Turn: e.room.Turn, YourTurn: e.room.Turn == s.PlayerID,
			Phase: string(e.room.Phase), GameOver: false, Winner: "",
		}})
	}
}

func (e *Engine) finish(winner string, reason Reason) {
	e.room.Phase = PhaseOver
	e.room.Winner = winner
	e.room.Reason = reason
	e.room.ChatTTLDeadline = time.Now().Add(e.cfg.ChatPostGameTTL)

	if e.inactivityTimer != nil {
		e.inactivityTimer.Stop()
	}
	for _, t := range e.graceTimers {
		if t != nil {
			t.Stop()
		}
	}

	total := e.room.Slots[0].ShotsFired + e.room.Slots[1].ShotsFired
	e.publish(Event{RoomID: e.room.ID, Type: protocol.EventGameOver, Payload: protocol.OverPayload{
		RoomID: e.room.ID, Winner: winner, Phase: string(PhaseOver),
		TotalShots: total, Reason: string(reason),
	}})

	e.record(events.EventMatchEnded, winner, events.MatchEndedData{Winner: winner, Reason: string(reason)})
}

// SendChat validates and appends a chat message, then broadcasts it. See
// spec.md §4.9; rate limiting (C3) is applied by the caller before this is
// invoked.
func (e *Engine) SendChat(playerID string, draft chat.Draft) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.room.slotIndex(playerID)
	if idx < 0 {
		return ErrUnknownPlayer
	}
	if !e.room.ChatEligible() {
		return chat.ErrNotAllowed
	}

	msg, err := draft.Validate()
	if err != nil {
		return err
	}
	msg.SenderID = playerID
	msg.SenderNickname = e.room.Slots[idx].Nickname
	msg.CreatedAt = time.Now()

	e.room.Chat.Append(msg)
	e.publish(Event{RoomID: e.room.ID, Type: protocol.EventChatMessage, Payload: protocol.ChatMessagePayload{
		RoomID: e.room.ID, Message: msg,
	}})
	return nil
}

// ChatHistory returns the room's current chat history for replay on reconnect.
func (e *Engine) ChatHistory() []chat.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room.Chat.Messages()
}
