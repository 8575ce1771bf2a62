package nav

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/data"
	"github.com/lrivero/muvisor/internal/utils"
)

var (
	// ErrStuck means the walk was blocked and a detour did not free it.
	ErrStuck = errors.New("navigation stuck against obstacle")
	// ErrTimeout means the step budget ran out before arrival.
	ErrTimeout = errors.New("navigation step budget exhausted")
)

// CoordinateReader supplies the current world position. A false return means
// "no information this tick", not position zero.
type CoordinateReader interface {
	ReadCoordinates() (data.Position, bool)
}

// ScreenInput is the subset of synthetic input the navigator needs.
type ScreenInput interface {
	ClickAt(x, y int)
	KeyTap(key string, modifiers ...string) error
	Center() (int, int)
}

// Navigator click-walks the character toward world coordinates, polling the
// coordinate reader between steps, and can warp between maps via the M menu.
type Navigator struct {
	reader CoordinateReader
	input  ScreenInput
	cfg    config.NavigationCfg
	timing config.TimingCfg
	logger *slog.Logger
}

func New(reader CoordinateReader, input ScreenInput, cfg config.NavigationCfg, timing config.TimingCfg, logger *slog.Logger) *Navigator {
	return &Navigator{
		reader: reader,
		input:  input,
		cfg:    cfg,
		timing: timing,
		logger: logger,
	}
}

// attempt is the transient bookkeeping of one walk segment. Discarded when
// the segment terminates.
type attempt struct {
	lastPos    data.Position
	hasLast    bool
	stall      int
	detoured   bool
	detourSign int
}

// NavigateTo walks through the waypoints and then to the target. The step
// budget covers the whole route; every termination is explicit (arrival,
// ErrStuck or ErrTimeout), the navigator never retries past its budget.
func (n *Navigator) NavigateTo(target data.Position, waypoints []data.Position) error {
	targets := append(slices.Clone(waypoints), target)

	budget := n.cfg.MaxSteps
	for i, t := range targets {
		label := fmt.Sprintf("waypoint %d", i+1)
		if i == len(targets)-1 {
			label = "target"
		}
		n.logger.Info("Navigating", slog.String("to", label), slog.Int("x", t.X), slog.Int("y", t.Y))

		used, err := n.walkTo(t, budget)
		budget -= used
		if err != nil {
			return fmt.Errorf("reaching %s (%d, %d): %w", label, t.X, t.Y, err)
		}
		n.logger.Info("Reached", slog.String("point", label))
	}
	return nil
}

// walkTo drives the character to a single point, detecting lack of progress
// and side-stepping obstacles with one perpendicular detour. Returns the
// number of steps consumed.
func (n *Navigator) walkTo(target data.Position, budget int) (int, error) {
	if budget <= 0 {
		return 0, ErrTimeout
	}

	att := attempt{detourSign: 1}

	for step := 1; step <= budget; step++ {
		pos, ok := n.reader.ReadCoordinates()
		if !ok {
			n.logger.Warn("Could not read coordinates", slog.Int("step", step))
			utils.Sleep(n.cfg.StepDelayMs)
			continue
		}

		delta := data.PositionSub(target, pos)
		dist := data.CalculateDistance(pos, target)
		n.logger.Debug("Walk step",
			slog.Int("step", step),
			slog.Int("x", pos.X), slog.Int("y", pos.Y),
			slog.Float64("distance", dist),
		)

		if dist <= float64(n.cfg.Tolerance) {
			return step, nil
		}

		if att.hasLast && data.CalculateDistance(pos, att.lastPos) < float64(n.cfg.MinProgress) {
			att.stall++
		} else {
			att.stall = 0
			att.detoured = false
		}
		att.lastPos = pos
		att.hasLast = true

		if att.stall >= n.cfg.StuckThreshold {
			if att.detoured {
				// A detour was already spent and we are blocked again;
				// looping on detours forever is worse than giving up.
				return step, ErrStuck
			}
			perp := data.Position{X: -delta.Y * att.detourSign, Y: delta.X * att.detourSign}
			n.logger.Info("Blocked, detouring", slog.Int("sign", att.detourSign))
			n.clickTowards(perp)
			att.detoured = true
			att.detourSign *= -1
			att.stall = 0
		} else {
			n.clickTowards(delta)
		}

		utils.Sleep(n.cfg.StepDelayMs)
	}

	return budget, ErrTimeout
}

// clickTowards emits the first capped click of the plan for the given world
// delta. The loop re-reads the position before each subsequent click, so
// only the head of the plan is ever consumed.
func (n *Navigator) clickTowards(delta data.Position) {
	plan := SplitClicks(delta, n.cfg.PixelsPerUnit, n.cfg.MaxClickRadius)
	if len(plan) == 0 {
		return
	}
	cx, cy := n.input.Center()
	n.input.ClickAt(cx+plan[0].DX, cy+plan[0].DY)
}

// WarpTo opens the warp menu and clicks the destination icon. The map load
// is waited out with a fixed delay and arrival is reported optimistically;
// the supervisor verifies the landing via the location text.
func (n *Navigator) WarpTo(button data.Point) error {
	if err := n.input.KeyTap("m"); err != nil {
		return fmt.Errorf("opening warp menu: %w", err)
	}
	utils.Sleep(n.timing.WarpMenuMs)

	n.input.ClickAt(button.X, button.Y)
	utils.Sleep(n.timing.WarpTravelSec * 1000)
	return nil
}
