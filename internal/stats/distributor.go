// Package stats allocates accumulated stat points through chat commands,
// keeping track of the last level the allocation ran at so points are only
// spent once per level interval.
package stats

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/lrivero/muvisor/internal/config"
	"github.com/lrivero/muvisor/internal/data"
	"github.com/lrivero/muvisor/internal/utils"
)

// maxPointsPerCommand is the largest amount the server accepts in a single
// /add command. Larger allocations are split across commands.
const maxPointsPerCommand = 65000

var defaultCommands = map[string]string{
	"str": "/addstr",
	"agi": "/addagi",
	"vit": "/addvit",
	"ene": "/addene",
}

// ChatInput covers the game interactions the distributor performs: sending
// chat commands and toggling the character window.
type ChatInput interface {
	SendChatCommand(text string) error
	KeyTap(key string, modifiers ...string) error
}

// PointsReader reads the free-points counter from the character window.
type PointsReader interface {
	ReadPointsRegion(region data.Region) (int, bool)
}

// Distributor spends free stat points according to the configured ratios.
// It tracks a level baseline so a restart mid-interval does not dump points
// that were already allocated.
type Distributor struct {
	chat   ChatInput
	reader PointsReader
	cfg    config.StatsCfg
	timing config.TimingCfg
	logger *slog.Logger

	baseline    int
	initialized bool
}

func NewDistributor(chat ChatInput, reader PointsReader, cfg config.StatsCfg, timing config.TimingCfg, logger *slog.Logger) *Distributor {
	return &Distributor{
		chat:   chat,
		reader: reader,
		cfg:    cfg,
		timing: timing,
		logger: logger,
	}
}

// InitializeFromLevel anchors the baseline to the interval boundary at or
// below the given level. Called once on the first successful status read, so
// an attach at level 127 with interval 10 distributes next at 130, not
// immediately.
func (d *Distributor) InitializeFromLevel(level int) {
	if d.initialized || d.cfg.IntervalLevels <= 0 {
		return
	}
	d.baseline = (level / d.cfg.IntervalLevels) * d.cfg.IntervalLevels
	d.initialized = true
	d.logger.Info("Stat baseline initialized", slog.Int("level", level), slog.Int("baseline", d.baseline))
}

// Initialized reports whether a baseline has been anchored yet.
func (d *Distributor) Initialized() bool {
	return d.initialized
}

// ShouldDistribute reports whether the character has crossed a full interval
// since the last allocation.
func (d *Distributor) ShouldDistribute(level int) bool {
	if !d.initialized || d.cfg.IntervalLevels <= 0 || len(d.cfg.Distribution) == 0 {
		return false
	}
	return level >= d.baseline+d.cfg.IntervalLevels
}

// Distribute opens the character window, reads the free-points counter and
// spends it across the configured stats. If the counter cannot be read the
// amount is estimated from the levels gained since the baseline. The
// baseline is advanced whether or not every command succeeded; retrying a
// partial allocation would double-spend the points that did go through.
func (d *Distributor) Distribute(level int) error {
	if err := d.chat.KeyTap("c"); err != nil {
		return fmt.Errorf("opening character window: %w", err)
	}
	utils.Sleep(d.timing.ChatOpenMs)

	points, ok := d.reader.ReadPointsRegion(d.cfg.PointsRegion)
	if !ok {
		points = (level - d.baseline) * d.cfg.PointsPerLevel
		d.logger.Warn("Could not read free points, estimating",
			slog.Int("levelsGained", level-d.baseline), slog.Int("estimate", points))
	}

	err := d.spend(points)

	if tapErr := d.chat.KeyTap("c"); tapErr != nil && err == nil {
		err = fmt.Errorf("closing character window: %w", tapErr)
	}

	d.baseline = (level / d.cfg.IntervalLevels) * d.cfg.IntervalLevels
	d.logger.Info("Stat distribution done", slog.Int("points", points), slog.Int("newBaseline", d.baseline))
	return err
}

// Forget drops the baseline so the next InitializeFromLevel re-anchors it.
// Called after a relaunch or reset, when the on-screen level is about to
// change discontinuously.
func (d *Distributor) Forget() {
	d.initialized = false
}

// DistributeForReset dumps all free points right after a reset, when the
// character is back at level 1 with the reset bonus pool. The interval check
// is skipped.
func (d *Distributor) DistributeForReset(level int) error {
	if len(d.cfg.Distribution) == 0 {
		return nil
	}
	if err := d.chat.KeyTap("c"); err != nil {
		return fmt.Errorf("opening character window: %w", err)
	}
	utils.Sleep(d.timing.ChatOpenMs)

	points, ok := d.reader.ReadPointsRegion(d.cfg.PointsRegion)
	if !ok {
		// A fresh reset changes the pool discontinuously, so there is no
		// level-based estimate to fall back on. Skip rather than guess.
		d.logger.Warn("Could not read free points after reset, skipping dump")
		points = 0
	}

	err := d.spend(points)

	if tapErr := d.chat.KeyTap("c"); tapErr != nil && err == nil {
		err = tapErr
	}

	if d.cfg.IntervalLevels > 0 {
		d.baseline = (level / d.cfg.IntervalLevels) * d.cfg.IntervalLevels
	}
	return err
}

// spend splits the pool by the configured ratios and issues the chat
// commands. Stats are visited in a fixed order so the rounding remainder
// always lands on the same stat.
func (d *Distributor) spend(points int) error {
	if points <= 0 {
		return nil
	}

	shares := SplitByRatio(points, d.cfg.Distribution)
	keys := make([]string, 0, len(shares))
	for k := range shares {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		amount := shares[key]
		if amount <= 0 {
			continue
		}
		cmd := d.command(key)
		for _, chunk := range ChunkPoints(amount, maxPointsPerCommand) {
			line := fmt.Sprintf("%s %d", cmd, chunk)
			d.logger.Info("Adding stats", slog.String("command", line))
			if err := d.chat.SendChatCommand(line); err != nil {
				return fmt.Errorf("sending %q: %w", line, err)
			}
			utils.Sleep(d.timing.CommandSendMs)
		}
	}
	return nil
}

func (d *Distributor) command(key string) string {
	if cmd, ok := d.cfg.Commands[key]; ok && cmd != "" {
		return cmd
	}
	return defaultCommands[key]
}

// SplitByRatio divides points by the ratio table. Shares are floored and the
// remainder goes to the largest ratio, so the total always matches exactly.
func SplitByRatio(points int, ratios map[string]float64) map[string]int {
	shares := make(map[string]int, len(ratios))
	if points <= 0 || len(ratios) == 0 {
		return shares
	}

	assigned := 0
	largestKey := ""
	largestRatio := -1.0
	keys := make([]string, 0, len(ratios))
	for k := range ratios {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		r := ratios[k]
		share := int(float64(points) * r)
		shares[k] = share
		assigned += share
		if r > largestRatio {
			largestRatio = r
			largestKey = k
		}
	}
	if rem := points - assigned; rem > 0 && largestKey != "" {
		shares[largestKey] += rem
	}
	return shares
}

// ChunkPoints splits an amount into command-sized pieces, largest first.
func ChunkPoints(amount, max int) []int {
	if amount <= 0 || max <= 0 {
		return nil
	}
	var chunks []int
	for amount > 0 {
		c := amount
		if c > max {
			c = max
		}
		chunks = append(chunks, c)
		amount -= c
	}
	return chunks
}
