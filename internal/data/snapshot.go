package data

import "time"

// Snapshot is a single perception readout of the game UI. Fields that could
// not be parsed this tick have their Has* flag unset; callers must treat an
// unset field as "no information", never as zero. Snapshots are produced
// fresh on every read and never mutated.
type Snapshot struct {
	Level      int
	Experience int
	Position   Position

	HasLevel      bool
	HasExperience bool
	HasPosition   bool

	CapturedAt time.Time
}
