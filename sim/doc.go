// Package sim provides the core slotted collision-resolution engine for the
// backoff simulator.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - slot.go, window.go: Slot contention states and the window of slots a round plays out on
//   - devices.go: The contender pool (waiting → succeeded)
//   - protocol.go: The round loop that turns a population into a latency
//
// # Architecture
//
// One BackoffProtocol drives one growth policy. An experiment adds devices
// to the pool, resets the window to its initial size and plays rounds: every
// waiting device claims a uniformly random slot, clean claims are harvested,
// and the window grows until no device is left. Latency is the total number
// of slots that elapsed.
//
// Sub-packages:
//   - sim/trace/: Per-round trace records and summaries
//   - sim/recording/: Per-trial result sinks (CSV, SQLite)
//
// RunSweep (sweep.go) runs every configured policy concurrently, each on its
// own RNG stream derived from the sweep seed (rng.go), so results do not
// depend on goroutine scheduling.
//
// # Growth Policies
//
// Policies are pure GrowthFunc values registered by name in growth.go:
//   - linear: n + 1
//   - binary-exponential: 2n
//   - loglog: floor((1 + 1/log2(log2(n))) * n)
package sim
