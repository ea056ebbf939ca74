package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backoff-sim/backoff-sim/sim/trace"
)

// PolicyConfig selects one growth policy for a sweep.
type PolicyConfig struct {
	Name              string `yaml:"name"`
	InitialWindowSize int    `yaml:"initial_window_size,omitempty"` // 0 = policy default
}

// SweepConfig is the top-level sweep configuration.
// Loaded from YAML via LoadSweepConfig(path).
type SweepConfig struct {
	Seed              int64             `yaml:"seed"`
	Experiments       int               `yaml:"experiments"`
	Trials            int               `yaml:"trials"`
	DeviceIncrement   int               `yaml:"device_increment"`
	MaxRounds         int               `yaml:"max_rounds,omitempty"` // 0 = unbounded
	FinalRoundLatency FinalRoundLatency `yaml:"final_round_latency,omitempty"`
	TraceLevel        trace.TraceLevel  `yaml:"trace_level,omitempty"`
	Policies          []PolicyConfig    `yaml:"policies"`
}

// DefaultSweepConfig returns the reference sweep: 60 experiments growing
// the population by 100 devices each, for the three registered policies.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Seed:              42,
		Experiments:       60,
		Trials:            1,
		DeviceIncrement:   100,
		FinalRoundLatency: LatencyLastDevice,
		TraceLevel:        trace.TraceLevelNone,
		Policies: []PolicyConfig{
			{Name: PolicyLinear, InitialWindowSize: DefaultInitialWindowSize(PolicyLinear)},
			{Name: PolicyBinaryExponential, InitialWindowSize: DefaultInitialWindowSize(PolicyBinaryExponential)},
			{Name: PolicyLogLog, InitialWindowSize: DefaultInitialWindowSize(PolicyLogLog)},
		},
	}
}

// LoadSweepConfig reads and parses a YAML sweep configuration file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
// Fields absent from the file keep their DefaultSweepConfig values.
func LoadSweepConfig(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep config: %w", err)
	}
	cfg := DefaultSweepConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing sweep config: %w", err)
	}
	return &cfg, nil
}

// ResolveInitialWindowSize returns the configured size, or the policy
// default when unset.
func (p PolicyConfig) ResolveInitialWindowSize() int {
	if p.InitialWindowSize > 0 {
		return p.InitialWindowSize
	}
	return DefaultInitialWindowSize(p.Name)
}

// ProtocolConfig returns the driver configuration for policy p.
func (c *SweepConfig) ProtocolConfig(p PolicyConfig) ProtocolConfig {
	return ProtocolConfig{
		InitialWindowSize: p.ResolveInitialWindowSize(),
		DeviceIncrement:   c.DeviceIncrement,
		MaxRounds:         c.MaxRounds,
		FinalRoundLatency: c.FinalRoundLatency,
	}
}

// Validate checks that all fields in the config are valid.
func (c *SweepConfig) Validate() error {
	if c.Experiments < 1 {
		return fmt.Errorf("%w: experiments must be >= 1, got %d", ErrInvalidConfig, c.Experiments)
	}
	if c.Trials < 1 {
		return fmt.Errorf("%w: trials must be >= 1, got %d", ErrInvalidConfig, c.Trials)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("%w: unknown trace level %q; valid: none, rounds", ErrInvalidConfig, c.TraceLevel)
	}
	if len(c.Policies) == 0 {
		return fmt.Errorf("%w: at least one policy required", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Policies))
	for i, p := range c.Policies {
		prefix := fmt.Sprintf("policies[%d]", i)
		if !IsValidGrowthPolicy(p.Name) {
			return fmt.Errorf("%w: %s: unknown growth policy %q; valid: %v", ErrInvalidConfig, prefix, p.Name, ValidGrowthPolicyNames())
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: %s: duplicate growth policy %q", ErrInvalidConfig, prefix, p.Name)
		}
		seen[p.Name] = true
		if p.InitialWindowSize < 0 {
			return fmt.Errorf("%w: %s: initial_window_size must be non-negative, got %d", ErrInvalidConfig, prefix, p.InitialWindowSize)
		}
		if err := c.ProtocolConfig(p).Validate(); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		if err := ValidateGrowth(NewGrowthPolicy(p.Name), p.ResolveInitialWindowSize()); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
	}
	return nil
}
