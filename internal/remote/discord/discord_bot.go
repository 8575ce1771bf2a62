package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Bot publishes supervisor events to a Discord channel, either through a bot
// session or a plain webhook when no bot token is available.
type Bot struct {
	discordSession *discordgo.Session
	channelID      string
	useWebhook     bool
	webhookClient  *webhookClient
}

func NewBot(token, channelID string, useWebhook bool, webhookURL string) (*Bot, error) {
	botInstance := &Bot{
		channelID:  channelID,
		useWebhook: useWebhook,
	}

	if useWebhook {
		if webhookURL == "" {
			return nil, fmt.Errorf("webhook URL is required when using webhook mode")
		}
		botInstance.webhookClient = newWebhookClient(webhookURL)
		return botInstance, nil
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	botInstance.discordSession = dg

	return botInstance, nil
}

func (b *Bot) Start(ctx context.Context) error {
	if b.useWebhook {
		<-ctx.Done()
		return nil
	}

	if err := b.discordSession.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	<-ctx.Done()
	return b.discordSession.Close()
}
