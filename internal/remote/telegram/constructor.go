package telegram

import (
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	connectAttempts = 3
	backoffBase     = 2 * time.Second
)

// NewBot validates the token against the Telegram API before the supervisors
// start. That first round-trip occasionally dies with a TCP reset on flaky
// links, so the constructor backs off and retries instead of failing the
// whole startup.
func NewBot(token string, chatID int64, logger *slog.Logger) (*Bot, error) {
	var api *tgbotapi.BotAPI
	var err error

	backoff := backoffBase
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if attempt > 1 {
			logger.Warn("Retrying Telegram connection",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.Any("error", err),
			)
			time.Sleep(backoff)
			backoff *= 2
		}
		api, err = tgbotapi.NewBotAPI(token)
		if err == nil {
			return &Bot{bot: api, chatID: chatID, logger: logger}, nil
		}
	}
	return nil, fmt.Errorf("connecting to Telegram after %d attempts: %w", connectAttempts, err)
}
