// Package main is the entry point for the Discord bot.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/callegarimattia/battleship/internal/bot"
	"github.com/callegarimattia/battleship/internal/env"
)

func main() {
	cfg, err := env.LoadBotConfig()
	if err != nil {
		log.Fatalf("bot: load config: %v", err)
	}

	discordBot, err := bot.NewDiscordBot(cfg.DiscordToken, cfg.DiscordAppID, cfg.BaseURL)
	if err != nil {
		log.Fatalf("bot: create discord bot: %v", err)
	}

	stop := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		close(stop)
	}()

	log.Println("bot: starting")
	if err := discordBot.Start(stop); err != nil {
		log.Fatalf("bot: %v", err)
	}
}
