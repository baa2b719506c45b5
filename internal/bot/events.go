package bot

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"github.com/callegarimattia/battleship/internal/client"
	"github.com/callegarimattia/battleship/internal/protocol"
)

// relayEvents drains p's gateway connection and posts a Discord message for
// every envelope that matters to the player, bridging the push-based
// WebSocket protocol into Discord's channel-message model.
func (b *DiscordBot) relayEvents(p *playerSession) {
	for env := range p.client.Events {
		embed := b.applyEnvelope(p, env)
		if embed == nil {
			continue
		}
		if err := b.sendChannelMessage(p.channelID, fmt.Sprintf("<@%s>", p.discordUserID), embed); err != nil {
			log.Printf("bot: failed to relay %s to channel %s: %v", env.Type, p.channelID, err)
		}
	}
}

// applyEnvelope updates p's cached session state from env and returns the
// Discord embed to post, or nil if env needs no notification.
func (b *DiscordBot) applyEnvelope(p *playerSession, env protocol.Envelope) *discordgo.MessageEmbed {
	switch env.Type {
	case protocol.EventQueued:
		payload, err := client.Decode[protocol.QueuedPayload](env)
		if err != nil {
			return nil
		}
		p.mu.Lock()
		p.playerID = payload.PlayerID
		p.reconnectToken = payload.ReconnectToken
		p.mu.Unlock()
		return nil

	case protocol.EventMatched:
		payload, err := client.Decode[protocol.MatchedPayload](env)
		if err != nil {
			return nil
		}
		p.mu.Lock()
		p.roomID = payload.RoomID
		p.opponent = payload.Opponent
		if payload.ReconnectToken != "" {
			p.reconnectToken = payload.ReconnectToken
		}
		p.mu.Unlock()
		return &discordgo.MessageEmbed{
			Title: "🎮 Match Found!",
			Description: fmt.Sprintf(
				"Matched against **%s**. Use `/battleship place` to set up your ten ships.",
				payload.Opponent,
			),
			Color: 0x00ff00,
		}

	case protocol.EventGameState:
		payload, err := client.Decode[protocol.StatePayload](env)
		if err != nil {
			return nil
		}
		p.mu.Lock()
		p.roomID = payload.RoomID
		p.lastState = &payload
		p.mu.Unlock()
		return nil

	case protocol.EventGameTurn:
		payload, err := client.Decode[protocol.TurnPayload](env)
		if err != nil {
			return nil
		}
		if !payload.YourTurn || payload.GameOver {
			return nil
		}
		return &discordgo.MessageEmbed{
			Title:       "🎯 Your Turn",
			Description: "Use `/battleship attack` to fire.",
			Color:       0x0099ff,
		}

	case protocol.EventShotResult:
		payload, err := client.Decode[protocol.ShotResultPayload](env)
		if err != nil {
			return nil
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		return formatShotResultEmbed(p, payload)

	case protocol.EventGameOver:
		payload, err := client.Decode[protocol.OverPayload](env)
		if err != nil {
			return nil
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		return formatOverEmbed(p, payload)

	case protocol.EventCancelled:
		payload, err := client.Decode[protocol.CancelledPayload](env)
		if err != nil {
			return nil
		}
		return &discordgo.MessageEmbed{
			Title:       "👋 Match Cancelled",
			Description: payload.Message,
			Color:       0x808080,
		}

	case protocol.EventGameError:
		payload, err := client.Decode[protocol.ErrorPayload](env)
		if err != nil {
			return nil
		}
		return &discordgo.MessageEmbed{
			Title:       "❌ " + payload.Code,
			Description: payload.Message,
			Color:       0xff0000,
		}

	default:
		return nil
	}
}

// sendChannelMessage sends a message to a Discord channel.
func (b *DiscordBot) sendChannelMessage(channelID, content string, embed *discordgo.MessageEmbed) error {
	_, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		return fmt.Errorf("send channel message: %w", err)
	}
	return nil
}
