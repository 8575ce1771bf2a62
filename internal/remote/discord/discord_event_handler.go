package discord

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"

	"github.com/bwmarrin/discordgo"

	"github.com/lrivero/muvisor/internal/event"
)

func (b *Bot) Handle(ctx context.Context, e event.Event) error {
	switch evt := e.(type) {
	case event.GameLaunchedEvent:
		message := fmt.Sprintf("**[%s]** %s", evt.Supervisor(), evt.Message())
		return b.sendEventMessage(ctx, message)
	case event.FarmingStartedEvent:
		message := fmt.Sprintf("**[%s]** farming at **%s** (level %d)", evt.Supervisor(), evt.SpotName, evt.Level)
		return b.sendEventMessage(ctx, message)
	case event.SpotAbandonedEvent:
		message := fmt.Sprintf("**[%s]** %s", evt.Supervisor(), evt.Message())
		return b.sendEventMessage(ctx, message)
	case event.StatsDistributedEvent:
		message := fmt.Sprintf("**[%s]** %s", evt.Supervisor(), evt.Message())
		return b.sendEventMessage(ctx, message)
	case event.ResetPerformedEvent:
		message := fmt.Sprintf("**[%s]** :arrows_counterclockwise: reset at level %d", evt.Supervisor(), evt.Level)
		return b.sendEventMessage(ctx, message)
	case event.ErrorPausedEvent:
		message := fmt.Sprintf("**[%s]** :warning: %s", evt.Supervisor(), evt.Message())
		if evt.Image() != nil {
			buf := new(bytes.Buffer)
			if err := jpeg.Encode(buf, evt.Image(), &jpeg.Options{Quality: 80}); err != nil {
				return err
			}
			return b.sendScreenshot(ctx, message, buf.Bytes())
		}
		return b.sendEventMessage(ctx, message)
	}

	return nil
}

func (b *Bot) sendEventMessage(ctx context.Context, message string) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "", nil)
	}

	_, err := b.discordSession.ChannelMessageSend(b.channelID, message)
	return err
}

func (b *Bot) sendScreenshot(ctx context.Context, message string, image []byte) error {
	if b.useWebhook {
		return b.webhookClient.Send(ctx, message, "Screenshot.jpeg", image)
	}

	reader := bytes.NewReader(image)
	_, err := b.discordSession.ChannelMessageSendComplex(b.channelID, &discordgo.MessageSend{
		Files:   []*discordgo.File{{Name: "Screenshot.jpeg", ContentType: "image/jpeg", Reader: reader}},
		Content: message,
	})
	return err
}
