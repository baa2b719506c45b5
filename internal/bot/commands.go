package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "battleship",
		Description: "Play Battleship!",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:        "queue",
				Description: "Join the matchmaking queue",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "nickname",
						Description: "Name shown to your opponent",
						Type:        discordgo.ApplicationCommandOptionString,
						Required:    true,
					},
				},
			},
			{
				Name:        "place",
				Description: "Stage a ship for placement on your board",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "size",
						Description: "Ship size (1-4)",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Required:    true,
						MinValue:    floatPtr(1),
						MaxValue:    4,
					},
					{
						Name:        "x",
						Description: "X coordinate (0-9)",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Required:    true,
						MinValue:    floatPtr(0),
						MaxValue:    9,
					},
					{
						Name:        "y",
						Description: "Y coordinate (0-9)",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Required:    true,
						MinValue:    floatPtr(0),
						MaxValue:    9,
					},
					{
						Name:        "vertical",
						Description: "Place ship vertically?",
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Required:    true,
					},
				},
			},
			{
				Name:        "attack",
				Description: "Fire at a coordinate on the opponent's board",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Name:        "x",
						Description: "X coordinate (0-9)",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Required:    true,
						MinValue:    floatPtr(0),
						MaxValue:    9,
					},
					{
						Name:        "y",
						Description: "Y coordinate (0-9)",
						Type:        discordgo.ApplicationCommandOptionInteger,
						Required:    true,
						MinValue:    floatPtr(0),
						MaxValue:    9,
					},
				},
			},
			{
				Name:        "status",
				Description: "View your current game state",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
			},
			{
				Name:        "cancel",
				Description: "Leave the queue or forfeit your current match",
				Type:        discordgo.ApplicationCommandOptionSubCommand,
			},
		},
	},
}

func floatPtr(f float64) *float64 {
	return &f
}

// registerCommands registers all slash commands with Discord.
func (b *DiscordBot) registerCommands() error {
	log.Println("bot: registering slash commands")

	for _, cmd := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.appID, "", cmd); err != nil {
			return err
		}
		log.Printf("bot: registered command %s", cmd.Name)
	}

	return nil
}
