package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned when a protocol or sweep configuration
	// cannot produce a terminating simulation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDivergentGrowthPolicy is returned when the window stops growing
	// while devices are still waiting, or the round bound is exceeded.
	ErrDivergentGrowthPolicy = errors.New("growth policy did not converge")
)

// FinalRoundLatency selects how the terminal round contributes to latency.
type FinalRoundLatency string

const (
	// LatencyLastDevice counts (highest device id harvested in the final
	// round) + 1. A lone device therefore always costs one slot. Default.
	LatencyLastDevice FinalRoundLatency = "last-device"
	// LatencyLastSlot counts the slots of the final round up to and
	// including the last clean transmission.
	LatencyLastSlot FinalRoundLatency = "last-slot"
)

var validFinalRoundLatencies = map[FinalRoundLatency]bool{
	LatencyLastSlot:   true,
	LatencyLastDevice: true,
	"":                true, // empty defaults to last-device
}

// IsValidFinalRoundLatency returns true if s is a recognized accounting mode.
func IsValidFinalRoundLatency(s string) bool {
	return validFinalRoundLatencies[FinalRoundLatency(s)]
}

// ProtocolConfig groups the parameters of one BackoffProtocol driver.
type ProtocolConfig struct {
	InitialWindowSize int               // slots at the start of every experiment (must be >= 1)
	DeviceIncrement   int               // devices added per RunExperiment (must be >= 1)
	MaxRounds         int               // 0 = unbounded
	FinalRoundLatency FinalRoundLatency // "" = LatencyLastDevice
}

// Validate checks parameter ranges. Growth-specific checks live in
// ValidateGrowth.
func (c ProtocolConfig) Validate() error {
	if c.InitialWindowSize < 1 {
		return fmt.Errorf("%w: initial window size must be >= 1, got %d", ErrInvalidConfig, c.InitialWindowSize)
	}
	if c.DeviceIncrement < 1 {
		return fmt.Errorf("%w: device increment must be >= 1, got %d", ErrInvalidConfig, c.DeviceIncrement)
	}
	if c.MaxRounds < 0 {
		return fmt.Errorf("%w: max rounds must be non-negative, got %d", ErrInvalidConfig, c.MaxRounds)
	}
	if !validFinalRoundLatencies[c.FinalRoundLatency] {
		return fmt.Errorf("%w: unknown final round latency %q", ErrInvalidConfig, c.FinalRoundLatency)
	}
	return nil
}
