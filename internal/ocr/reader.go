package ocr

import (
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/data"
	"github.com/lrivero/muvisor/internal/game"
)

// ErrPerception is returned once too many consecutive status reads have
// failed to produce a level, meaning the pipeline (capture, filter or OCR)
// is broken rather than momentarily unlucky.
var ErrPerception = errors.New("too many consecutive failed status reads")

// coordPattern matches "131 , 85", "131:85" and every other separator the
// coordinate widget renders as.
var coordPattern = regexp.MustCompile(`(\d{1,3})\D+(\d{1,3})`)

var nonDigits = regexp.MustCompile(`\D`)

// Reader turns captured UI regions into numbers. All reads are side-effect
// free with respect to game state; the only internal state is the
// consecutive-failure counter.
type Reader struct {
	win         *game.Window
	engine      Engine
	cfg         config.OcrCfg
	titleRe     *regexp.Regexp
	corrections Corrections
	logger      *slog.Logger

	consecutiveFailures int
}

func NewReader(win *game.Window, engine Engine, srv *config.ServerCfg, logger *slog.Logger) (*Reader, error) {
	titleRe, err := regexp.Compile(srv.LevelTitlePattern)
	if err != nil {
		return nil, err
	}

	return &Reader{
		win:         win,
		engine:      engine,
		cfg:         srv.OCR,
		titleRe:     titleRe,
		corrections: DefaultCorrections().Merge(srv.OCR.Corrections),
		logger:      logger,
	}, nil
}

func (r *Reader) ConsecutiveFailures() int {
	return r.consecutiveFailures
}

func (r *Reader) ResetFailures() {
	r.consecutiveFailures = 0
}

// Read produces a fresh perception snapshot. A field that cannot be parsed is
// reported absent, never defaulted. ErrPerception is returned together with
// the partial snapshot once the level has been unreadable for the configured
// number of consecutive reads.
func (r *Reader) Read() (data.Snapshot, error) {
	snap := data.Snapshot{CapturedAt: time.Now()}

	if lvl, ok := r.ReadLevel(); ok {
		snap.Level = lvl
		snap.HasLevel = true
		r.consecutiveFailures = 0
	} else {
		r.consecutiveFailures++
		r.logger.Warn("Status read missed level",
			slog.Int("consecutiveFailures", r.consecutiveFailures),
			slog.Int("threshold", r.cfg.FailureThreshold),
		)
	}

	if exp, ok := r.ReadExperience(); ok {
		snap.Experience = exp
		snap.HasExperience = true
	}
	if pos, ok := r.ReadCoordinates(); ok {
		snap.Position = pos
		snap.HasPosition = true
	}

	if r.consecutiveFailures >= r.cfg.FailureThreshold {
		return snap, ErrPerception
	}
	return snap, nil
}

// ReadLevel resolves the character level. The window title already carries it
// as plain text, so that path is tried first; OCR of the in-game UI is only
// the fallback for clients that do not update the title.
func (r *Reader) ReadLevel() (int, bool) {
	if title := r.win.TitleText(); title != "" {
		if m := r.titleRe.FindStringSubmatch(title); len(m) == 2 {
			if lvl, err := strconv.Atoi(m[1]); err == nil {
				return lvl, true
			}
		}
	}
	return r.readNumber(r.cfg.LevelRegion)
}

func (r *Reader) ReadExperience() (int, bool) {
	return r.readNumber(r.cfg.ExperienceRegion)
}

// ReadCoordinates OCRs the calibrated coordinate widget. There is no fast
// path for position; it only exists as rendered pixels.
func (r *Reader) ReadCoordinates() (data.Position, bool) {
	text, err := r.recognize(r.cfg.CoordsRegion, r.corrections.Whitelist()+",.:")
	if err != nil {
		return data.Position{}, false
	}

	fixed := r.corrections.Apply(text)
	m := coordPattern.FindStringSubmatch(fixed)
	if len(m) != 3 {
		return data.Position{}, false
	}

	x, errX := strconv.Atoi(m[1])
	y, errY := strconv.Atoi(m[2])
	if errX != nil || errY != nil {
		return data.Position{}, false
	}
	// MU maps are 256x256 tiles.
	if x > 255 || y > 255 {
		return data.Position{}, false
	}
	return data.Position{X: x, Y: y}, true
}

// ReadLocationText returns the raw map-name text, used to verify a warp
// landed on the intended map.
func (r *Reader) ReadLocationText() (string, bool) {
	text, err := r.recognize(r.cfg.LocationRegion, "")
	if err != nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// readNumber captures a region, applies the golden filter and parses the OCR
// output into a non-negative integer.
func (r *Reader) readNumber(region data.Region) (int, bool) {
	text, err := r.recognize(region, r.corrections.Whitelist())
	if err != nil {
		return 0, false
	}
	return r.parseNumber(text)
}

func (r *Reader) parseNumber(text string) (int, bool) {
	fixed := r.corrections.Apply(strings.TrimSpace(text))
	digits := nonDigits.ReplaceAllString(fixed, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r *Reader) recognize(region data.Region, whitelist string) (string, error) {
	img, err := r.win.CaptureRegion(region)
	if err != nil {
		return "", err
	}
	masked := GoldenMask(img, r.cfg.GoldenLower, r.cfg.GoldenUpper)
	return r.engine.Text(masked, whitelist)
}

// ReadPointsRegion OCRs an arbitrary white-on-dark counter (the character
// screen's available stat points). Plain luminance threshold, no golden
// filter: that text is not rendered in the stat color.
func (r *Reader) ReadPointsRegion(region data.Region) (int, bool) {
	img, err := r.win.CaptureRegion(region)
	if err != nil {
		return 0, false
	}
	text, err := r.engine.Text(BinaryThreshold(img, 128), "0123456789")
	if err != nil {
		return 0, false
	}
	return r.parseNumber(text)
}
