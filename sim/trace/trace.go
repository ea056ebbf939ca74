package trace

// TraceLevel controls the verbosity of round tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelRounds captures one record per contention round.
	TraceLevelRounds TraceLevel = "rounds"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:   true,
	TraceLevelRounds: true,
	"":               true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// ExperimentTrace collects round records for one growth policy across
// all experiments run on its driver.
type ExperimentTrace struct {
	Policy string
	Level  TraceLevel
	Rounds []RoundRecord
}

// NewExperimentTrace creates an ExperimentTrace ready for recording.
func NewExperimentTrace(policy string, level TraceLevel) *ExperimentTrace {
	return &ExperimentTrace{
		Policy: policy,
		Level:  level,
		Rounds: make([]RoundRecord, 0),
	}
}

// Enabled reports whether records should be collected.
// Safe for nil traces.
func (et *ExperimentTrace) Enabled() bool {
	return et != nil && et.Level == TraceLevelRounds
}

// RecordRound appends a round record.
func (et *ExperimentTrace) RecordRound(record RoundRecord) {
	et.Rounds = append(et.Rounds, record)
}

// ForExperiment returns the records of one experiment, in round order.
func (et *ExperimentTrace) ForExperiment(experiment int) []RoundRecord {
	var out []RoundRecord
	for _, r := range et.Rounds {
		if r.Experiment == experiment {
			out = append(out, r)
		}
	}
	return out
}
