package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/event"
	"github.com/lrivero/muvisor/internal/game"
	"github.com/lrivero/muvisor/internal/health"
	"github.com/lrivero/muvisor/internal/utils"
)

// farmHoldRightClick grinds by holding the attack button at the current
// position, polling the level until the spot's ceiling. The button is
// released on every exit path, including window loss.
func (s *Supervisor) farmHoldRightClick(ctx context.Context, spot config.FarmingSpot) error {
	cx, cy := s.input.Center()
	s.input.PressButton(game.RightButton, cx, cy)
	s.logger.Info("Farming with held right-click",
		slog.String("spot", spot.Name), slog.Int("until", spot.UntilLevel))

	defer func() {
		cx, cy := s.input.Center()
		s.input.ReleaseButton(game.RightButton, cx, cy)
		s.logger.Info("Released right-click")
	}()

	for {
		utils.SleepCtx(ctx, time.Duration(s.srv.Timing.LoopIntervalSec)*time.Second)
		if err := ctx.Err(); err != nil {
			return err
		}

		if !s.launcher.IsGameRunning() {
			return errWindowLost
		}

		level, ok := s.reader.ReadLevel()
		if !ok {
			continue
		}

		s.currentLevel = level
		s.dismissLevelUpPopup(level, true)
		s.logger.Info("Farming",
			slog.String("spot", spot.Name),
			slog.Int("level", level), slog.Int("until", spot.UntilLevel))

		if level >= spot.UntilLevel {
			s.logger.Info("Spot ceiling reached", slog.String("spot", spot.Name), slog.Int("level", level))
			return nil
		}
	}
}

// farmWithHelper activates the in-game helper and watches the level. The
// helper fights autonomously, so the only work here is the stagnation
// watchdog and opportunistic stat distribution (chat does not interrupt the
// helper). Returns reached=false when stagnation abandoned the spot.
func (s *Supervisor) farmWithHelper(ctx context.Context, spot config.FarmingSpot) (bool, error) {
	// The helper would left-click through any pending level-up popup itself;
	// dismissing it from here would toggle the helper off instead.
	if !s.popupDismissed && s.srv.LevelUpDismiss != nil && s.hasLevel && s.currentLevel > *s.srv.LevelUpDismiss {
		s.popupDismissed = true
	}

	// The client ignores input until the map finishes loading.
	utils.Sleep(s.srv.Timing.HelperWarmupMs)
	if err := s.toggleHelper(); err != nil {
		return false, err
	}
	s.logger.Info("Helper activated",
		slog.String("spot", spot.Name), slog.Int("until", spot.UntilLevel))

	monitor := s.newStagnationMonitor()
	defer monitor.Reset()

	for {
		utils.SleepCtx(ctx, time.Duration(s.srv.Timing.FarmCheckIntervalSec)*time.Second)
		if err := ctx.Err(); err != nil {
			return false, err
		}

		if !s.launcher.IsGameRunning() {
			return false, errWindowLost
		}

		level, ok := s.reader.ReadLevel()
		if !ok {
			continue
		}

		s.currentLevel = level
		s.dismissLevelUpPopup(level, false)

		switch monitor.Observe(level, time.Now()) {
		case health.ActionRetry:
			s.logger.Warn("Level stagnant, re-activating helper", slog.Int("level", level))
			if err := s.toggleHelper(); err != nil {
				return false, err
			}
		case health.ActionAbandon:
			s.logger.Warn("Level stagnant beyond retry, abandoning spot", slog.String("spot", spot.Name))
			event.Send(event.SpotAbandoned(
				event.Text(s.name, fmt.Sprintf("Abandoned %s: level stuck at %d", spot.Name, level)),
				spot.Name,
			))
			return false, nil
		}

		s.logger.Info("Farming with helper",
			slog.String("spot", spot.Name),
			slog.Int("level", level), slog.Int("until", spot.UntilLevel))

		if s.stats.ShouldDistribute(level) {
			if err := s.stats.Distribute(level); err != nil {
				s.logger.Warn("Stat distribution failed during farming", slog.Any("error", err))
			}
		}

		if level >= spot.UntilLevel {
			s.logger.Info("Spot ceiling reached", slog.String("spot", spot.Name), slog.Int("level", level))
			return true, nil
		}
	}
}

// toggleHelper clicks the helper's UI button when one is configured, or
// middle-clicks the window centre otherwise.
func (s *Supervisor) toggleHelper() error {
	utils.Sleep(s.srv.Timing.ClickSettleMs)
	if hb := s.srv.HelperButton; hb != nil {
		s.input.ClickAt(hb.X, hb.Y)
		return nil
	}
	cx, cy := s.input.Center()
	s.input.Click(game.MiddleButton, cx, cy)
	return nil
}

// dismissLevelUpPopup left-clicks the window centre once after the level
// crosses the configured threshold, closing the server's congratulation
// popup that otherwise swallows farming clicks. When right-click is held it
// is released around the click so the farm resumes cleanly.
func (s *Supervisor) dismissLevelUpPopup(level int, rightHeld bool) {
	threshold := s.srv.LevelUpDismiss
	if threshold == nil || s.popupDismissed || level <= *threshold {
		return
	}

	cx, cy := s.input.Center()
	s.logger.Info("Dismissing level-up popup", slog.Int("level", level), slog.Int("threshold", *threshold))

	if rightHeld {
		s.input.ReleaseButton(game.RightButton, cx, cy)
		utils.Sleep(s.srv.Timing.ClickSettleMs)
	}

	s.input.ClickAt(cx, cy)
	utils.Sleep(s.srv.Timing.PopupDismissMs)

	if rightHeld {
		s.input.PressButton(game.RightButton, cx, cy)
	}
	s.popupDismissed = true
}
