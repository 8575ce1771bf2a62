// Package bot holds the supervisory loop that keeps one MU character alive,
// farming and resetting without human attention. Each supervisor owns exactly
// one game window and runs as a single goroutine; there is no shared state
// between supervisors.
package bot

// State is the supervisor's current phase. Transitions happen only inside
// Run's dispatch loop, one per tick.
type State int

const (
	StateCheckGameAlive State = iota
	StateLaunchGame
	StateReadStatus
	StateNavigateAndFarm
	StateDistributeStats
	StateReset
	StateWait
	StateErrorPause
)

func (s State) String() string {
	switch s {
	case StateCheckGameAlive:
		return "CHECK_GAME_ALIVE"
	case StateLaunchGame:
		return "LAUNCH_GAME"
	case StateReadStatus:
		return "READ_STATUS"
	case StateNavigateAndFarm:
		return "NAVIGATE_AND_FARM"
	case StateDistributeStats:
		return "DISTRIBUTE_STATS"
	case StateReset:
		return "RESET"
	case StateWait:
		return "WAIT"
	case StateErrorPause:
		return "ERROR_PAUSE"
	default:
		return "UNKNOWN"
	}
}
