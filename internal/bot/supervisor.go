package bot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/data"
	"github.com/lrivero/muvisor/internal/event"
	"github.com/lrivero/muvisor/internal/game"
	"github.com/lrivero/muvisor/internal/health"
	"github.com/lrivero/muvisor/internal/launcher"
	"github.com/lrivero/muvisor/internal/nav"
	"github.com/lrivero/muvisor/internal/ocr"
	"github.com/lrivero/muvisor/internal/stats"
	"github.com/lrivero/muvisor/internal/utils"
)

// errWindowLost aborts a farming session when the game window dies under it.
var errWindowLost = errors.New("game window lost")

var trailingDigits = regexp.MustCompile(`\d+$`)

// statusReader is the perception surface the supervisor consumes.
type statusReader interface {
	Read() (data.Snapshot, error)
	ReadLevel() (int, bool)
	ReadLocationText() (string, bool)
	ResetFailures()
}

// gameLauncher starts the client and reports window liveness.
type gameLauncher interface {
	IsGameRunning() bool
	LaunchAndLogin(ctx context.Context) error
	RunSteps(ctx context.Context, steps []config.ClickStep) error
}

// statAllocator spends stat points and tracks the distribution baseline.
type statAllocator interface {
	InitializeFromLevel(level int)
	Initialized() bool
	Forget()
	ShouldDistribute(level int) bool
	Distribute(level int) error
	DistributeForReset(level int) error
}

// walker moves the character across the map.
type walker interface {
	NavigateTo(target data.Position, waypoints []data.Position) error
	WarpTo(button data.Point) error
}

// frameCapturer supplies a snapshot of the game client for notifications.
type frameCapturer interface {
	CaptureClientArea() (image.Image, error)
}

// screenInput is the synthetic input surface used during farming.
type screenInput interface {
	SendChatCommand(text string) error
	KeyTap(key string, modifiers ...string) error
	ClickAt(x, y int)
	Click(btn game.MouseButton, x, y int)
	PressButton(btn game.MouseButton, x, y int)
	ReleaseButton(btn game.MouseButton, x, y int)
	Center() (int, int)
}

// Supervisor runs the control loop for a single character: keep the game
// alive, read status, farm, spend points and reset. It owns all its
// components and runs on one goroutine; state transitions happen only in
// tick.
type Supervisor struct {
	name   string
	logger *slog.Logger
	srv    *config.ServerCfg

	input    screenInput
	reader   statusReader
	walker   walker
	stats    statAllocator
	launcher gameLauncher
	screen   frameCapturer

	state          State
	currentLevel   int
	hasLevel       bool
	pause          time.Duration
	pauseReason    string
	popupDismissed bool
}

// New wires a full supervisor around a live game window. The OCR engine is
// owned by the caller so it can be closed after Run returns.
func New(name string, srv *config.ServerCfg, engine ocr.Engine, logger *slog.Logger) (*Supervisor, error) {
	w := game.NewWindow(srv.WindowTitle)
	hid := game.NewHID(w, srv.Timing)

	reader, err := ocr.NewReader(w, engine, srv, logger)
	if err != nil {
		return nil, fmt.Errorf("building status reader: %w", err)
	}

	navigator := nav.New(reader, hid, srv.Navigation, srv.Timing, logger)
	distributor := stats.NewDistributor(hid, reader, srv.Stats, srv.Timing, logger)
	gameLauncher := launcher.New(w, srv.Launcher, srv.Timing, logger)

	return &Supervisor{
		name:     name,
		logger:   logger,
		srv:      srv,
		input:    hid,
		reader:   reader,
		walker:   navigator,
		stats:    distributor,
		launcher: gameLauncher,
		screen:   w,
	}, nil
}

func (s *Supervisor) Name() string {
	return s.name
}

// Run drives the state machine until the context is cancelled. Every tick is
// one state handler; handlers set the next state and never block past their
// own pauses.
func (s *Supervisor) Run(ctx context.Context) error {
	s.state = StateCheckGameAlive
	s.logger.Info("Supervisor started", slog.String("supervisor", s.name))

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("Supervisor stopping", slog.String("supervisor", s.name))
			return err
		}
		s.logger.Debug("Tick", slog.String("state", s.state.String()))
		s.tick(ctx)
	}
}

func (s *Supervisor) tick(ctx context.Context) {
	switch s.state {
	case StateCheckGameAlive:
		s.doCheckGameAlive()
	case StateLaunchGame:
		s.doLaunchGame(ctx)
	case StateReadStatus:
		s.doReadStatus(ctx)
	case StateNavigateAndFarm:
		s.doNavigateAndFarm(ctx)
	case StateDistributeStats:
		s.doDistributeStats()
	case StateReset:
		s.doReset(ctx)
	case StateWait:
		s.doWait(ctx)
	case StateErrorPause:
		s.doErrorPause(ctx)
	default:
		s.state = StateCheckGameAlive
	}
}

func (s *Supervisor) doCheckGameAlive() {
	if s.launcher.IsGameRunning() {
		s.state = StateReadStatus
		return
	}
	s.logger.Warn("Game window not found, will relaunch")
	s.state = StateLaunchGame
}

func (s *Supervisor) doLaunchGame(ctx context.Context) {
	if err := s.launcher.LaunchAndLogin(ctx); err != nil {
		s.logger.Error("Launch failed", slog.Any("error", err))
		s.errorPause(time.Duration(s.srv.Timing.LaunchPauseSec)*time.Second, err.Error())
		return
	}

	s.stats.Forget()
	s.popupDismissed = false
	s.reader.ResetFailures()
	event.Send(event.GameLaunched(event.Text(s.name, "Game launched and logged in")))
	s.state = StateCheckGameAlive
}

// doReadStatus is the routing hub: one perception pass decides the next
// activity. A readable level is mandatory here; acting on a stale level
// could farm a character that should reset, so a missed read pauses instead.
func (s *Supervisor) doReadStatus(ctx context.Context) {
	snap, err := s.reader.Read()
	if err != nil {
		s.logger.Error("Perception failure", slog.Any("error", err))
		s.reader.ResetFailures()
		s.errorPause(time.Duration(s.srv.Timing.OcrFailurePauseSec)*time.Second, err.Error())
		return
	}

	if !snap.HasLevel {
		s.errorPause(time.Duration(s.srv.Timing.ErrorPauseSec)*time.Second, "could not read character level")
		return
	}

	s.currentLevel = snap.Level
	s.hasLevel = true

	if !s.stats.Initialized() {
		s.stats.InitializeFromLevel(snap.Level)
		s.runPostLoginSteps(ctx)
		if snap.Level <= 1 {
			if err := s.stats.DistributeForReset(snap.Level); err != nil {
				s.logger.Error("Post-reset stat dump failed", slog.Any("error", err))
			}
		}
	}

	spot, hasSpot := ActiveSpot(s.srv.Navigation.Spots, snap.Level)
	decision := Decide(snap.Level, s.srv.ResetLevel, hasSpot, s.stats.ShouldDistribute(snap.Level))
	s.logger.Info("Status read",
		slog.Int("level", snap.Level),
		slog.String("decision", decision.String()),
	)

	switch decision {
	case DecisionReset:
		s.state = StateReset
	case DecisionFarm:
		s.logger.Info("Active spot",
			slog.String("spot", spot.Name), slog.Int("until", spot.UntilLevel))
		event.Send(event.FarmingStarted(
			event.Text(s.name, fmt.Sprintf("Farming at %s until level %d", spot.Name, spot.UntilLevel)),
			spot.Name, snap.Level,
		))
		s.state = StateNavigateAndFarm
	case DecisionDistribute:
		s.state = StateDistributeStats
	default:
		s.state = StateWait
	}
}

func (s *Supervisor) doNavigateAndFarm(ctx context.Context) {
	spot, ok := ActiveSpot(s.srv.Navigation.Spots, s.currentLevel)
	if !ok || !s.hasLevel {
		s.state = StateReadStatus
		return
	}

	if err := s.goToSpot(ctx, spot); err != nil {
		if errors.Is(err, errRetryWarp) {
			s.state = StateReadStatus
			return
		}
		if errors.Is(err, errWindowLost) {
			s.state = StateCheckGameAlive
			return
		}
		s.logger.Error("Navigation failed", slog.String("spot", spot.Name), slog.Any("error", err))
		s.errorPause(time.Duration(s.srv.Timing.ErrorPauseSec)*time.Second, err.Error())
		return
	}

	// Let the map finish loading before any farming input.
	utils.Sleep(s.srv.Timing.MapLoadMs)

	var farmErr error
	switch spot.FarmAction {
	case "middle_click":
		var reached bool
		reached, farmErr = s.farmWithHelper(ctx, spot)
		if farmErr == nil && !reached {
			// Stagnation abandoned the spot. Stay here so the next tick
			// re-warps and starts over.
			return
		}
	default:
		farmErr = s.farmHoldRightClick(ctx, spot)
	}

	if farmErr != nil {
		if errors.Is(farmErr, errWindowLost) {
			s.state = StateCheckGameAlive
			return
		}
		if errors.Is(farmErr, context.Canceled) {
			return
		}
		s.logger.Error("Farming failed", slog.Any("error", farmErr))
		s.errorPause(time.Duration(s.srv.Timing.ErrorPauseSec)*time.Second, farmErr.Error())
		return
	}

	// Spot ceiling reached; route to the next spot, distribution or reset.
	s.state = StateReadStatus
}

// errRetryWarp means the warp did not land on the expected map; the caller
// goes back to READ_STATUS and tries again on the next pass.
var errRetryWarp = errors.New("warp landed on the wrong map")

// goToSpot brings the character to the farming position: warp to the map if
// not already there, verify the landing, then click-walk to the spot.
func (s *Supervisor) goToSpot(ctx context.Context, spot config.FarmingSpot) error {
	atSpotMap := s.onMap(spot.Name)
	if atSpotMap {
		s.logger.Info("Already on the spot's map, skipping warp", slog.String("spot", spot.Name))
	}

	if !atSpotMap {
		switch {
		case spot.WarpCommand != "":
			s.logger.Info("Warping via command", slog.String("command", spot.WarpCommand))
			if err := s.input.SendChatCommand(spot.WarpCommand); err != nil {
				return fmt.Errorf("warp command: %w", err)
			}
			utils.Sleep(s.srv.Timing.WarpTravelSec * 1000)
		case spot.WarpButton != nil:
			s.logger.Info("Warping via map menu", slog.String("spot", spot.Name))
			if err := s.walker.WarpTo(*spot.WarpButton); err != nil {
				return fmt.Errorf("warp menu: %w", err)
			}
		}

		if spot.WarpCommand != "" || spot.WarpButton != nil {
			if !s.onMap(spot.Name) {
				s.logger.Warn("Warp verification failed", slog.String("spot", spot.Name))
				return errRetryWarp
			}
		}
	}

	if spot.Spot != nil {
		s.logger.Info("Walking to spot",
			slog.String("spot", spot.Name),
			slog.Int("x", spot.Spot.X), slog.Int("y", spot.Spot.Y))
		if err := s.walker.NavigateTo(*spot.Spot, spot.Waypoints); err != nil {
			return err
		}
	}
	return nil
}

// onMap compares the OCR'd location text against the spot name with its
// trailing digits stripped, so "Elveland3" matches a "Elveland" readout.
func (s *Supervisor) onMap(spotName string) bool {
	location, ok := s.reader.ReadLocationText()
	if !ok || location == "" {
		return false
	}
	base := strings.ToLower(trailingDigits.ReplaceAllString(spotName, ""))
	return strings.Contains(strings.ToLower(location), base)
}

func (s *Supervisor) doDistributeStats() {
	if !s.hasLevel {
		s.state = StateWait
		return
	}
	if err := s.stats.Distribute(s.currentLevel); err != nil {
		s.logger.Error("Stat distribution failed", slog.Any("error", err))
		s.errorPause(time.Duration(s.srv.Timing.ErrorPauseSec)*time.Second, err.Error())
		return
	}
	event.Send(event.StatsDistributed(
		event.Text(s.name, fmt.Sprintf("Stats distributed at level %d", s.currentLevel)),
		s.currentLevel,
	))
	s.state = StateWait
}

// doReset sends the reset command and, on servers that disconnect after a
// reset, clicks through the reconnect dialog.
func (s *Supervisor) doReset(ctx context.Context) {
	s.logger.Info("Resetting character", slog.Int("level", s.currentLevel))

	if err := s.input.SendChatCommand("/reset"); err != nil {
		s.logger.Error("Reset command failed", slog.Any("error", err))
		s.state = StateCheckGameAlive
		return
	}

	if s.srv.ResetNeedsReconnect {
		s.logger.Info("Waiting for disconnect")
		utils.SleepCtx(ctx, time.Duration(s.srv.Timing.ResetDisconnectSec)*time.Second)

		btn := s.srv.Launcher.ConnectButton
		s.logger.Info("Clicking connect", slog.Int("x", btn.X), slog.Int("y", btn.Y))
		launcher.ClickGlobal(btn.X, btn.Y)

		utils.SleepCtx(ctx, time.Duration(s.srv.Timing.PostReconnectSec)*time.Second)
	}

	event.Send(event.ResetPerformed(
		event.Text(s.name, fmt.Sprintf("Reset performed at level %d", s.currentLevel)),
		s.currentLevel,
	))

	s.stats.Forget()
	s.popupDismissed = false
	s.state = StateCheckGameAlive
}

func (s *Supervisor) doWait(ctx context.Context) {
	utils.SleepCtx(ctx, time.Duration(s.srv.Timing.LoopIntervalSec)*time.Second)
	s.state = StateCheckGameAlive
}

func (s *Supervisor) doErrorPause(ctx context.Context) {
	s.logger.Info("Error pause",
		slog.Duration("pause", s.pause), slog.String("reason", s.pauseReason))
	event.Send(s.pauseEvent())
	utils.SleepCtx(ctx, s.pause)
	s.state = StateCheckGameAlive
}

// pauseEvent builds the error-pause notification. With screenshot debugging
// on, a frame of the game client rides along so the notification shows what
// triggered the pause.
func (s *Supervisor) pauseEvent() event.ErrorPausedEvent {
	msg := fmt.Sprintf("Paused for %s: %s", s.pause, s.pauseReason)
	be := event.Text(s.name, msg)
	if config.Muvisor != nil && config.Muvisor.Debug.Screenshots && s.screen != nil {
		if img, err := s.screen.CaptureClientArea(); err == nil {
			be = event.WithScreenshot(s.name, msg, img)
		} else {
			s.logger.Debug("Could not capture pause screenshot", slog.Any("error", err))
		}
	}
	return event.ErrorPaused(be, s.pause)
}

func (s *Supervisor) errorPause(d time.Duration, reason string) {
	s.pause = d
	s.pauseReason = reason
	s.state = StateErrorPause
}

func (s *Supervisor) runPostLoginSteps(ctx context.Context) {
	if len(s.srv.PostLoginSteps) == 0 {
		return
	}
	s.logger.Info("Running post-login steps", slog.Int("count", len(s.srv.PostLoginSteps)))
	if err := s.launcher.RunSteps(ctx, s.srv.PostLoginSteps); err != nil {
		s.logger.Error("Post-login steps failed", slog.Any("error", err))
	}
}

// monitor builds the per-session stagnation watchdog.
func (s *Supervisor) newStagnationMonitor() *health.StagnationMonitor {
	return health.NewStagnationMonitor(
		time.Duration(s.srv.Timing.HelperRetrySec)*time.Second,
		time.Duration(s.srv.Timing.HelperStuckSec)*time.Second,
	)
}
