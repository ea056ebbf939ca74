package sim

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backoff-sim/backoff-sim/sim/trace"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultSweepConfig_IsValid(t *testing.T) {
	cfg := DefaultSweepConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 60, cfg.Experiments)
	assert.Equal(t, 100, cfg.DeviceIncrement)
	assert.Len(t, cfg.Policies, 3)
}

func TestLoadSweepConfig_ValidYAML_LoadsCorrectly(t *testing.T) {
	path := writeConfig(t, `
seed: 7
experiments: 5
trials: 3
device_increment: 20
max_rounds: 1000
final_round_latency: last-slot
trace_level: rounds
policies:
  - name: loglog
    initial_window_size: 8
  - name: linear
`)

	cfg, err := LoadSweepConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 5, cfg.Experiments)
	assert.Equal(t, 3, cfg.Trials)
	assert.Equal(t, 20, cfg.DeviceIncrement)
	assert.Equal(t, 1000, cfg.MaxRounds)
	assert.Equal(t, LatencyLastSlot, cfg.FinalRoundLatency)
	assert.Equal(t, trace.TraceLevelRounds, cfg.TraceLevel)
	require.Len(t, cfg.Policies, 2)
	assert.Equal(t, PolicyConfig{Name: "loglog", InitialWindowSize: 8}, cfg.Policies[0])
	assert.Equal(t, 2, cfg.Policies[1].ResolveInitialWindowSize(), "unset size falls back to policy default")
}

func TestLoadSweepConfig_PartialYAML_KeepsDefaults(t *testing.T) {
	cfg, err := LoadSweepConfig(writeConfig(t, "experiments: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Experiments)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, 100, cfg.DeviceIncrement)
	assert.Len(t, cfg.Policies, 3)
}

func TestLoadSweepConfig_UnknownKey_ReturnsError(t *testing.T) {
	_, err := LoadSweepConfig(writeConfig(t, "experiements: 3\n"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "experiements"), "error should name the typo: %v", err)
}

func TestLoadSweepConfig_MissingFile_ReturnsError(t *testing.T) {
	_, err := LoadSweepConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSweepConfig_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SweepConfig)
	}{
		{"zero experiments", func(c *SweepConfig) { c.Experiments = 0 }},
		{"zero trials", func(c *SweepConfig) { c.Trials = 0 }},
		{"zero increment", func(c *SweepConfig) { c.DeviceIncrement = 0 }},
		{"negative max rounds", func(c *SweepConfig) { c.MaxRounds = -5 }},
		{"bad final latency", func(c *SweepConfig) { c.FinalRoundLatency = "window" }},
		{"bad trace level", func(c *SweepConfig) { c.TraceLevel = "verbose" }},
		{"no policies", func(c *SweepConfig) { c.Policies = nil }},
		{"unknown policy", func(c *SweepConfig) { c.Policies = []PolicyConfig{{Name: "fibonacci"}} }},
		{"duplicate policy", func(c *SweepConfig) {
			c.Policies = []PolicyConfig{{Name: PolicyLinear}, {Name: PolicyLinear}}
		}},
		{"negative window", func(c *SweepConfig) { c.Policies = []PolicyConfig{{Name: PolicyLinear, InitialWindowSize: -1}} }},
		{"loglog outside domain", func(c *SweepConfig) { c.Policies = []PolicyConfig{{Name: PolicyLogLog, InitialWindowSize: 2}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSweepConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig), "want ErrInvalidConfig, got %v", err)
		})
	}
}
