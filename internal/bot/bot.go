// Package bot provides Discord integration for the Battleship game: one
// gateway WebSocket connection per logged-in Discord user, driven through
// the /battleship slash commands queue, place, attack, status and cancel.
package bot

import (
	"fmt"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/callegarimattia/battleship/internal/client"
	"github.com/callegarimattia/battleship/internal/protocol"
)

// DiscordBot represents the Discord bot instance.
type DiscordBot struct {
	session *discordgo.Session
	appID   string
	baseURL string

	mu      sync.RWMutex
	players map[string]*playerSession // discordUserID -> session
}

// playerSession is one Discord user's live connection to the gateway.
type playerSession struct {
	client         *client.Client
	discordUserID  string
	channelID      string
	nickname       string
	playerID       string
	roomID         string
	reconnectToken string
	opponent       string

	mu           sync.Mutex
	pendingShips []shipDraft
	lastState    *protocol.StatePayload
}

type shipDraft struct {
	size     int
	x, y     int
	vertical bool
}

// NewDiscordBot creates a new Discord bot instance. baseURL is the gateway's
// HTTP(S) base address; each player session dials its own WebSocket
// connection to baseURL's /ws route on first interaction.
func NewDiscordBot(token, appID, baseURL string) (*DiscordBot, error) {
	if appID == "" {
		return nil, fmt.Errorf("app ID is required")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}

	bot := &DiscordBot{
		session: session,
		appID:   appID,
		baseURL: baseURL,
		players: make(map[string]*playerSession),
	}

	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Start opens the Discord connection and registers commands. It blocks
// until stop is closed.
func (b *DiscordBot) Start(stop <-chan struct{}) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	log.Println("bot: discord connected")

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	log.Println("bot: slash commands registered")

	<-stop
	return b.Shutdown()
}

// Shutdown gracefully closes the Discord connection and every open player
// session.
func (b *DiscordBot) Shutdown() error {
	log.Println("bot: shutting down")

	b.mu.Lock()
	for _, p := range b.players {
		_ = p.client.Close()
	}
	b.players = make(map[string]*playerSession)
	b.mu.Unlock()

	return b.session.Close()
}

// sessionFor returns the existing session for discordUserID, if any.
func (b *DiscordBot) sessionFor(discordUserID string) (*playerSession, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.players[discordUserID]
	return p, ok
}

// connect dials a fresh gateway connection for discordUserID, replacing any
// existing one, and starts its event-relay loop.
func (b *DiscordBot) connect(discordUserID, channelID, nickname string) (*playerSession, error) {
	b.mu.Lock()
	if existing, ok := b.players[discordUserID]; ok {
		_ = existing.client.Close()
	}
	b.mu.Unlock()

	c, err := client.Connect(b.baseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to gateway: %w", err)
	}

	p := &playerSession{client: c, discordUserID: discordUserID, channelID: channelID, nickname: nickname}

	b.mu.Lock()
	b.players[discordUserID] = p
	b.mu.Unlock()

	go b.relayEvents(p)

	return p, nil
}
