// Package health watches for a farming session that stopped making progress.
// The in-game helper can silently die (disconnect popups, stuck pathing) while
// the client keeps rendering, so level stagnation is the only reliable signal.
package health

import "time"

// Action is the monitor's verdict for the current observation.
type Action int

const (
	// ActionNone means farming is progressing, or the grace period has not
	// elapsed yet.
	ActionNone Action = iota
	// ActionRetry means progress stalled long enough to restart the helper
	// once before giving up on the spot.
	ActionRetry
	// ActionAbandon means the retry did not help; the session should be
	// torn down and the supervisor should re-evaluate from scratch.
	ActionAbandon
)

func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionAbandon:
		return "abandon"
	default:
		return "none"
	}
}

// StagnationMonitor tracks how long the character level has been flat.
// A single retry is allowed per stagnation episode; a level gain resets the
// episode entirely.
type StagnationMonitor struct {
	retryAfter   time.Duration
	abandonAfter time.Duration

	lastLevel  int
	hasLevel   bool
	lastChange time.Time
	retried    bool
}

func NewStagnationMonitor(retryAfter, abandonAfter time.Duration) *StagnationMonitor {
	return &StagnationMonitor{
		retryAfter:   retryAfter,
		abandonAfter: abandonAfter,
	}
}

// Observe records the level seen at now and returns what, if anything, the
// caller should do about stagnation. The first observation only seeds the
// baseline.
func (m *StagnationMonitor) Observe(level int, now time.Time) Action {
	if !m.hasLevel || level != m.lastLevel {
		m.lastLevel = level
		m.hasLevel = true
		m.lastChange = now
		m.retried = false
		return ActionNone
	}

	stalled := now.Sub(m.lastChange)
	if stalled >= m.abandonAfter {
		return ActionAbandon
	}
	if stalled >= m.retryAfter && !m.retried {
		m.retried = true
		return ActionRetry
	}
	return ActionNone
}

// Reset forgets the episode. Called when a farming session ends.
func (m *StagnationMonitor) Reset() {
	m.hasLevel = false
	m.retried = false
}
