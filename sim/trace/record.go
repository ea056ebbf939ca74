// Package trace provides per-round recording for backoff experiments.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// RoundRecord captures the outcome of a single contention round.
type RoundRecord struct {
	Experiment int // 1-based experiment number on the owning driver
	Round      int // 1-based round number within the experiment
	WindowSize int // slots available this round
	Contenders int // devices still waiting at the start of the round
	Successes  int // slots harvested without collision
	Collisions int // slots claimed by two or more devices
	LastSlot   int // highest slot index with a success; -1 if none
}

// Idle returns the number of slots nobody claimed.
func (r RoundRecord) Idle() int {
	return r.WindowSize - r.Successes - r.Collisions
}
