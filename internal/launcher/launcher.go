// Package launcher starts the game client elevated and walks the scripted
// login sequence. Launcher clicks are synthesized globally because the
// launcher is a separate process whose window we never message directly.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"syscall"
	"time"
	"unsafe"

	"github.com/go-vgo/robotgo"
	"github.com/lxn/win"

	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/game"
	"github.com/lrivero/muvisor/internal/game/winproc"
	"github.com/lrivero/muvisor/internal/utils"
)

// ErrLaunchFailed means the launch sequence ran but the game window never
// appeared.
var ErrLaunchFailed = errors.New("game launch failed")

const windowPollInterval = 2 * time.Second

// Launcher relaunches the game and performs the login script when the
// window is gone.
type Launcher struct {
	win    *game.Window
	cfg    config.LauncherCfg
	timing config.TimingCfg
	logger *slog.Logger
}

func New(w *game.Window, cfg config.LauncherCfg, timing config.TimingCfg, logger *slog.Logger) *Launcher {
	return &Launcher{
		win:    w,
		cfg:    cfg,
		timing: timing,
		logger: logger,
	}
}

// IsGameRunning reports whether the game window is alive, rediscovering it
// by title if the cached handle went stale.
func (l *Launcher) IsGameRunning() bool {
	if l.win.IsAlive() {
		return true
	}
	return l.win.Find() == nil
}

// LaunchAndLogin starts the launcher executable elevated, waits for its
// window, runs the scripted login steps and then waits for the game window
// itself. Every wait is bounded; a missing window yields ErrLaunchFailed.
func (l *Launcher) LaunchAndLogin(ctx context.Context) error {
	l.logger.Info("Launching game", slog.String("exe", l.cfg.ExePath))
	if err := runElevated(l.cfg.ExePath); err != nil {
		return fmt.Errorf("%w: starting %s: %v", ErrLaunchFailed, l.cfg.ExePath, err)
	}

	launcherTimeout := time.Duration(l.timing.LauncherTimeoutSec) * time.Second
	hwnd, err := l.waitForWindow(ctx, l.cfg.LauncherWindowTitle, launcherTimeout)
	if err != nil {
		return fmt.Errorf("%w: launcher window %q: %v", ErrLaunchFailed, l.cfg.LauncherWindowTitle, err)
	}

	win.SetForegroundWindow(hwnd)
	utils.Sleep(500)

	if err := l.RunSteps(ctx, l.cfg.LoginSteps); err != nil {
		return fmt.Errorf("%w: login steps: %v", ErrLaunchFailed, err)
	}

	gameTimeout := time.Duration(l.timing.GameWindowTimeoutSec) * time.Second
	if _, err := l.waitForWindow(ctx, l.win.Title, gameTimeout); err != nil {
		return fmt.Errorf("%w: game window %q: %v", ErrLaunchFailed, l.win.Title, err)
	}
	if err := l.win.Find(); err != nil {
		return fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	l.logger.Info("Game window found", slog.String("title", l.win.Title))
	return nil
}

// RunSteps plays back scripted interactions, both login sequences and
// post-login setup clicks. The "paste" action with an empty Text means the
// stored launcher password.
func (l *Launcher) RunSteps(ctx context.Context, steps []config.ClickStep) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.logger.Debug("Login step", slog.String("label", step.Label), slog.String("action", step.Action))

		switch step.Action {
		case "click":
			ClickGlobal(step.Point.X, step.Point.Y)
		case "paste":
			ClickGlobal(step.Point.X, step.Point.Y)
			utils.Sleep(200)
			text := step.Text
			if text == "" {
				plain, err := l.cfg.PlainPassword()
				if err != nil {
					return fmt.Errorf("step %q: %w", step.Label, err)
				}
				text = plain
			}
			if err := robotgo.WriteAll(text); err != nil {
				return fmt.Errorf("step %q: clipboard: %w", step.Label, err)
			}
			utils.Sleep(100)
			if err := robotgo.KeyTap("v", "ctrl"); err != nil {
				return fmt.Errorf("step %q: paste: %w", step.Label, err)
			}
		default:
			return fmt.Errorf("step %q: unknown action %q", step.Label, step.Action)
		}

		if step.WaitAfter > 0 {
			utils.SleepCtx(ctx, time.Duration(step.WaitAfter)*time.Second)
		} else {
			utils.Sleep(500)
		}
	}
	return nil
}

// waitForWindow polls for a window whose title contains the given string.
func (l *Launcher) waitForWindow(ctx context.Context, title string, timeout time.Duration) (win.HWND, error) {
	deadline := time.Now().Add(timeout)
	for {
		if hwnd, err := game.FindWindow(title, false); err == nil {
			return hwnd, nil
		}
		if time.Now().After(deadline) {
			return 0, fmt.Errorf("window did not appear within %s", timeout)
		}
		utils.SleepCtx(ctx, windowPollInterval)
		if err := ctx.Err(); err != nil {
			return 0, err
		}
	}
}

// runElevated launches the executable with the UAC "runas" verb. Game
// launchers refuse to patch without elevation.
func runElevated(exePath string) error {
	verb, err := syscall.UTF16PtrFromString("runas")
	if err != nil {
		return err
	}
	file, err := syscall.UTF16PtrFromString(exePath)
	if err != nil {
		return err
	}

	const swShowNormal = 1
	ret, _, _ := winproc.ShellExecuteW.Call(
		0,
		uintptr(unsafe.Pointer(verb)),
		uintptr(unsafe.Pointer(file)),
		0,
		0,
		swShowNormal,
	)
	// ShellExecute returns a value greater than 32 on success.
	if ret <= 32 {
		return fmt.Errorf("ShellExecuteW failed with code %d", ret)
	}
	return nil
}

// ClickGlobal moves the real cursor and clicks. Launcher windows ignore
// posted messages, so the click has to be genuine.
func ClickGlobal(x, y int) {
	robotgo.Move(x, y)
	utils.Sleep(120)
	robotgo.Click("left")
}
