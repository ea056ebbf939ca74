package sim

import (
	"fmt"
	"math/rand"
	"testing"
)

// scriptedSource replays a fixed sequence of slot draws, letting tests
// force exact collision patterns. It panics if the script runs out or a
// value does not fit the window, so a test cannot silently drift.
type scriptedSource struct {
	draws []int
	next  int
}

func (s *scriptedSource) Intn(n int) int {
	if s.next >= len(s.draws) {
		panic(fmt.Sprintf("scriptedSource: script exhausted after %d draws", len(s.draws)))
	}
	v := s.draws[s.next]
	s.next++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("scriptedSource: draw %d out of range [0, %d)", v, n))
	}
	return v
}

// newTestProtocol builds a protocol or fails the test.
func newTestProtocol(t *testing.T, cfg ProtocolConfig, growth GrowthFunc, rng RandomSource) *BackoffProtocol {
	t.Helper()
	bp, err := NewBackoffProtocol(cfg, growth, rng)
	if err != nil {
		t.Fatalf("NewBackoffProtocol: %v", err)
	}
	return bp
}

// newSeededRand creates a *rand.Rand with the given seed.
func newSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
