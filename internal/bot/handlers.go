package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/callegarimattia/battleship/internal/model"
)

// handleInteraction is the main handler for all Discord interactions.
func (b *DiscordBot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	if data.Name != "battleship" || len(data.Options) == 0 {
		return
	}

	sub := data.Options[0]

	switch sub.Name {
	case "queue":
		b.handleQueue(s, i, sub.Options)
	case "place":
		b.handlePlace(s, i, sub.Options)
	case "attack":
		b.handleAttack(s, i, sub.Options)
	case "status":
		b.handleStatus(s, i)
	case "cancel":
		b.handleCancel(s, i)
	default:
		respondError(s, i, "Unknown subcommand")
	}
}

func (b *DiscordBot) handleQueue(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) {
	nickname := options[0].StringValue()
	discordUserID := i.Member.User.ID

	p, err := b.connect(discordUserID, i.ChannelID, nickname)
	if err != nil {
		respondError(s, i, fmt.Sprintf("Failed to reach the game server: %v", err))
		return
	}

	if err := p.client.JoinQueue(nickname, ""); err != nil {
		respondError(s, i, fmt.Sprintf("Failed to join queue: %v", err))
		return
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🔍 Searching for an opponent",
		Description: fmt.Sprintf("Joined the queue as **%s**. You'll be pinged here once matched.", nickname),
		Color:       0x0099ff,
	}, true)
}

func (b *DiscordBot) handlePlace(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) {
	discordUserID := i.Member.User.ID
	p, ok := b.sessionFor(discordUserID)
	if !ok {
		respondError(s, i, "You are not in a match. Use `/battleship queue` first.")
		return
	}

	optMap := optionsByName(options)
	draft := shipDraft{
		size:     int(optMap["size"].IntValue()),
		x:        int(optMap["x"].IntValue()),
		y:        int(optMap["y"].IntValue()),
		vertical: optMap["vertical"].BoolValue(),
	}

	p.mu.Lock()
	p.pendingShips = append(p.pendingShips, draft)
	staged := len(p.pendingShips)
	var board []model.SerializedShip
	if staged == model.FleetShipCount {
		board = buildShipBoard(p.pendingShips)
	}
	roomID := p.roomID
	p.mu.Unlock()

	if board == nil {
		respondEmbed(s, i, &discordgo.MessageEmbed{
			Title: "🚢 Ship Staged",
			Description: fmt.Sprintf(
				"%s at %s (%d/%d ships staged)",
				GetShipName(draft.size), CoordinateToChess(draft.x, draft.y), staged, model.FleetShipCount,
			),
			Color: embedColorForPhase("setup"),
		}, true)
		return
	}

	if err := p.client.PlaceShips(roomID, board); err != nil {
		respondError(s, i, fmt.Sprintf("Failed to submit fleet: %v", err))
		return
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🚢 Fleet Submitted",
		Description: "All ten ships placed. Waiting for your opponent.",
		Color:       embedColorForPhase("setup"),
	}, true)
}

func buildShipBoard(drafts []shipDraft) []model.SerializedShip {
	board := make([]model.SerializedShip, len(drafts))
	for idx, d := range drafts {
		orientation := model.Horizontal
		if d.vertical {
			orientation = model.Vertical
		}
		board[idx] = model.SerializedShip{
			Size:        d.size,
			Origin:      model.Coordinate{X: d.x, Y: d.y},
			Orientation: orientation,
		}
	}
	return board
}

func (b *DiscordBot) handleAttack(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	options []*discordgo.ApplicationCommandInteractionDataOption,
) {
	discordUserID := i.Member.User.ID
	p, ok := b.sessionFor(discordUserID)
	if !ok {
		respondError(s, i, "You are not in a match. Use `/battleship queue` first.")
		return
	}

	optMap := optionsByName(options)
	x := int(optMap["x"].IntValue())
	y := int(optMap["y"].IntValue())

	p.mu.Lock()
	roomID := p.roomID
	p.mu.Unlock()

	if roomID == "" {
		respondError(s, i, "Your match hasn't started yet.")
		return
	}

	if err := p.client.Shoot(roomID, model.Coordinate{X: x, Y: y}); err != nil {
		respondError(s, i, fmt.Sprintf("Failed to fire: %v", err))
		return
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "💥 Shot Fired!",
		Description: fmt.Sprintf("Firing at %s...", CoordinateToChess(x, y)),
		Color:       0xff9900,
	}, true)
}

func (b *DiscordBot) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	discordUserID := i.Member.User.ID
	p, ok := b.sessionFor(discordUserID)
	if !ok {
		respondError(s, i, "You are not in a match. Use `/battleship queue` first.")
		return
	}

	p.mu.Lock()
	state := p.lastState
	p.mu.Unlock()

	if state == nil {
		respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       "⚓ Battleship",
			Description: "No game state yet. Are you still in the queue?",
			Color:       0x808080,
		}, true)
		return
	}

	respondEmbed(s, i, formatStateEmbed(p, *state), true)
}

func (b *DiscordBot) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	discordUserID := i.Member.User.ID
	p, ok := b.sessionFor(discordUserID)
	if !ok {
		respondError(s, i, "You have nothing to cancel.")
		return
	}

	p.mu.Lock()
	roomID := p.roomID
	p.mu.Unlock()

	var err error
	if roomID == "" {
		err = p.client.CancelQueue()
	} else {
		err = p.client.Cancel(roomID)
	}
	if err != nil {
		respondError(s, i, fmt.Sprintf("Failed to cancel: %v", err))
		return
	}

	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "👋 Cancelled",
		Description: "Left the queue or forfeited your match.",
		Color:       0x808080,
	}, true)
}

func optionsByName(
	options []*discordgo.ApplicationCommandInteractionDataOption,
) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	optMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		optMap[opt.Name] = opt
	}
	return optMap
}

func respondEmbed(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	embed *discordgo.MessageEmbed,
	ephemeral bool,
) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
	if err != nil {
		log.Printf("bot: failed to respond to interaction: %v", err)
	}
}

func respondError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "❌ Error",
		Description: message,
		Color:       0xff0000,
	}, true)
}
