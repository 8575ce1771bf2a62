package bot

// Decision is the outcome of a status read: which activity the character
// should switch to next.
type Decision int

const (
	DecisionWait Decision = iota
	DecisionReset
	DecisionFarm
	DecisionDistribute
)

func (d Decision) String() string {
	switch d {
	case DecisionReset:
		return "reset"
	case DecisionFarm:
		return "farm"
	case DecisionDistribute:
		return "distribute"
	default:
		return "wait"
	}
}

// Decide maps a status readout to the next activity. Pure so the precedence
// is testable without a game window.
//
// Reset wins over everything: once the level hits the threshold, farming or
// spending points on a character about to be wiped is wasted work. Farming
// beats distribution because distribution also runs inside the farm loop; a
// standalone distribution pass only matters when there is no spot to farm.
func Decide(level, resetLevel int, hasSpot, shouldDistribute bool) Decision {
	if resetLevel > 0 && level >= resetLevel {
		return DecisionReset
	}
	if hasSpot {
		return DecisionFarm
	}
	if shouldDistribute {
		return DecisionDistribute
	}
	return DecisionWait
}
