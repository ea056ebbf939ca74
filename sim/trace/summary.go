package trace

// TraceSummary aggregates statistics from an ExperimentTrace.
type TraceSummary struct {
	Experiments     int
	Rounds          int
	TotalSuccesses  int
	TotalCollisions int
	TotalIdle       int
	PeakWindowSize  int
	MeanContention  float64 // mean contenders per slot across rounds
	MaxRoundsPerRun int
}

// Summarize computes aggregate statistics from an ExperimentTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(et *ExperimentTrace) *TraceSummary {
	summary := &TraceSummary{}
	if et == nil || len(et.Rounds) == 0 {
		return summary
	}

	experiments := make(map[int]int)
	totalContention := 0.0
	for _, r := range et.Rounds {
		summary.Rounds++
		summary.TotalSuccesses += r.Successes
		summary.TotalCollisions += r.Collisions
		summary.TotalIdle += r.Idle()
		if r.WindowSize > summary.PeakWindowSize {
			summary.PeakWindowSize = r.WindowSize
		}
		if r.WindowSize > 0 {
			totalContention += float64(r.Contenders) / float64(r.WindowSize)
		}
		experiments[r.Experiment]++
	}

	summary.Experiments = len(experiments)
	summary.MeanContention = totalContention / float64(summary.Rounds)
	for _, n := range experiments {
		summary.MaxRoundsPerRun = max(summary.MaxRoundsPerRun, n)
	}
	return summary
}
