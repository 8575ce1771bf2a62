package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lrivero/muvisor/internal/event"
)

type Bot struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

// Start drains the updates channel until the context ends. Incoming messages
// are only consumed to keep the offset current; all publishing happens
// through Handle.
func (b *Bot) Start(ctx context.Context) error {
	offset, err := b.getLatestOffset()
	if err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(offset)
	u.Timeout = 5
	updates := b.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.bot.StopReceivingUpdates()
			for range updates {
			}
			return nil
		case _, ok := <-updates:
			if !ok {
				return nil
			}
		}
	}
}

func (b *Bot) getLatestOffset() (int, error) {
	upds, err := b.bot.GetUpdates(tgbotapi.NewUpdate(-1))
	if err != nil {
		return 0, err
	}
	offset := 0
	if len(upds) > 0 {
		offset = upds[0].UpdateID + 1
	}
	return offset, nil
}

func (b *Bot) Handle(_ context.Context, e event.Event) error {
	switch e.(type) {
	case event.GameLaunchedEvent, event.ResetPerformedEvent, event.SpotAbandonedEvent, event.ErrorPausedEvent:
	default:
		return nil
	}

	text := fmt.Sprintf("[%s] %s", e.Supervisor(), e.Message())

	if img := e.Image(); img != nil {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 80}); err == nil {
			photo := tgbotapi.NewPhoto(b.chatID, tgbotapi.FileBytes{
				Name:  "screenshot.jpeg",
				Bytes: buf.Bytes(),
			})
			photo.Caption = text
			_, err = b.bot.Send(photo)
			return err
		}
	}

	_, err := b.bot.Send(tgbotapi.NewMessage(b.chatID, text))
	return err
}
