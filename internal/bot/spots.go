package bot

import "github.com/lrivero/muvisor/internal/config"

// ActiveSpot picks the farming spot for the given level: the first spot whose
// UntilLevel is still above the character. Spots are validated at load time
// to be in ascending UntilLevel order, so the first match is the tightest
// range. A level at or past the last spot's ceiling has nowhere to farm.
func ActiveSpot(spots []config.FarmingSpot, level int) (config.FarmingSpot, bool) {
	for _, s := range spots {
		if level < s.UntilLevel {
			return s, true
		}
	}
	return config.FarmingSpot{}, false
}
