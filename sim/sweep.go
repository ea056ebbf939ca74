package sim

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/backoff-sim/backoff-sim/sim/recording"
	"github.com/backoff-sim/backoff-sim/sim/trace"
)

// SeriesPoint holds every trial run at one population size.
type SeriesPoint struct {
	Devices   int
	Latencies []int
	Rounds    []int
}

// PolicySeries is the outcome of a sweep for one growth policy.
type PolicySeries struct {
	Name              string
	InitialWindowSize int
	Points            []SeriesPoint
	Trace             *trace.ExperimentTrace // nil unless tracing is enabled
}

// SweepResult is the outcome of RunSweep, one series per policy in
// configuration order.
type SweepResult struct {
	RunID    string
	Seed     int64
	Policies []PolicySeries
}

// syncRecorder serializes access to a recorder shared by policy goroutines.
type syncRecorder struct {
	mu  sync.Mutex
	rec recording.Recorder
}

func (s *syncRecorder) record(row recording.Row) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Record(row)
}

// RunSweep runs cfg.Experiments experiments with growing populations for
// every configured policy. Each policy gets its own BackoffProtocol and RNG
// stream and runs on its own goroutine; results do not depend on
// scheduling. rec may be nil. The returned error is the first failure in
// policy order.
func RunSweep(cfg SweepConfig, rec recording.Recorder) (*SweepResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &SweepResult{
		RunID:    recording.NewRunID(),
		Seed:     cfg.Seed,
		Policies: make([]PolicySeries, len(cfg.Policies)),
	}

	// PartitionedRNG is not thread-safe: derive every stream up front.
	rngs := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	protocols := make([]*BackoffProtocol, len(cfg.Policies))
	for i, p := range cfg.Policies {
		bp, err := NewBackoffProtocol(cfg.ProtocolConfig(p), NewGrowthPolicy(p.Name), rngs.ForSubsystem(SubsystemPolicy(p.Name)))
		if err != nil {
			return nil, fmt.Errorf("policy %s: %w", p.Name, err)
		}
		series := PolicySeries{
			Name:              p.Name,
			InitialWindowSize: p.ResolveInitialWindowSize(),
			Points:            make([]SeriesPoint, 0, cfg.Experiments),
		}
		if cfg.TraceLevel == trace.TraceLevelRounds {
			series.Trace = trace.NewExperimentTrace(p.Name, cfg.TraceLevel)
			bp.SetTrace(series.Trace)
		}
		protocols[i] = bp
		result.Policies[i] = series
	}

	var shared *syncRecorder
	if rec != nil {
		shared = &syncRecorder{rec: rec}
	}

	errs := make([]error, len(protocols))
	var wg sync.WaitGroup
	for i := range protocols {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = runPolicy(&cfg, protocols[i], &result.Policies[i], result.RunID, shared)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return result, fmt.Errorf("policy %s: %w", cfg.Policies[i].Name, err)
		}
	}
	return result, nil
}

func runPolicy(cfg *SweepConfig, bp *BackoffProtocol, series *PolicySeries, runID string, rec *syncRecorder) error {
	for e := 1; e <= cfg.Experiments; e++ {
		point := SeriesPoint{
			Latencies: make([]int, 0, cfg.Trials),
			Rounds:    make([]int, 0, cfg.Trials),
		}
		for trial := 1; trial <= cfg.Trials; trial++ {
			var latency int
			var err error
			if trial == 1 {
				latency, err = bp.RunExperiment()
			} else {
				latency, err = bp.Rerun()
			}
			if err != nil {
				return fmt.Errorf("experiment %d trial %d (%d devices): %w", e, trial, bp.Devices(), err)
			}
			point.Devices = bp.Devices()
			point.Latencies = append(point.Latencies, latency)
			point.Rounds = append(point.Rounds, bp.Rounds())

			if err := rec.record(recording.Row{
				RunID:      runID,
				Policy:     series.Name,
				Experiment: e,
				Trial:      trial,
				Devices:    point.Devices,
				Latency:    latency,
				Rounds:     bp.Rounds(),
			}); err != nil {
				return fmt.Errorf("recording result: %w", err)
			}
		}
		series.Points = append(series.Points, point)
		logrus.Infof("[%s] experiment %d: devices=%d latency=%v", series.Name, e, point.Devices, point.Latencies)
	}
	return nil
}
