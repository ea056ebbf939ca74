// Aggregates sweep results into per-policy latency statistics for reporting.

package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// PointMetrics summarizes the trials at one population size.
type PointMetrics struct {
	Devices       int     `json:"devices"`
	Trials        int     `json:"trials"`
	MeanLatency   float64 `json:"mean_latency"`
	StdDevLatency float64 `json:"stddev_latency"`
	P50Latency    float64 `json:"p50_latency"`
	P90Latency    float64 `json:"p90_latency"`
	P99Latency    float64 `json:"p99_latency"`
	MinLatency    int     `json:"min_latency"`
	MaxLatency    int     `json:"max_latency"`
	MeanRounds    float64 `json:"mean_rounds"`
	// MeanLatencyPerDevice normalizes latency by population; an efficient
	// policy keeps it flat as the population grows.
	MeanLatencyPerDevice float64 `json:"mean_latency_per_device"`
}

// PolicyMetrics is the latency curve of one growth policy.
type PolicyMetrics struct {
	Policy            string         `json:"policy"`
	InitialWindowSize int            `json:"initial_window_size"`
	Points            []PointMetrics `json:"points"`
	TotalRounds       int            `json:"total_rounds"`
	TotalCollisions   *int           `json:"total_collisions,omitempty"` // only when traced
}

// MetricsOutput is the JSON document produced for a sweep.
type MetricsOutput struct {
	RunID      string          `json:"run_id"`
	Seed       int64           `json:"seed"`
	MaxLatency int             `json:"max_latency"`
	Policies   []PolicyMetrics `json:"policies"`
}

// ComputeMetrics aggregates a sweep result.
func ComputeMetrics(r *SweepResult) *MetricsOutput {
	out := &MetricsOutput{
		RunID:    r.RunID,
		Seed:     r.Seed,
		Policies: make([]PolicyMetrics, 0, len(r.Policies)),
	}
	for _, series := range r.Policies {
		pm := PolicyMetrics{
			Policy:            series.Name,
			InitialWindowSize: series.InitialWindowSize,
			Points:            make([]PointMetrics, 0, len(series.Points)),
		}
		for _, pt := range series.Points {
			m := computePointMetrics(pt)
			out.MaxLatency = max(out.MaxLatency, m.MaxLatency)
			for _, n := range pt.Rounds {
				pm.TotalRounds += n
			}
			pm.Points = append(pm.Points, m)
		}
		if series.Trace != nil {
			collisions := 0
			for _, rr := range series.Trace.Rounds {
				collisions += rr.Collisions
			}
			pm.TotalCollisions = &collisions
		}
		out.Policies = append(out.Policies, pm)
	}
	return out
}

func computePointMetrics(pt SeriesPoint) PointMetrics {
	m := PointMetrics{
		Devices:       pt.Devices,
		Trials:        len(pt.Latencies),
		MeanLatency:   CalculateMean(pt.Latencies),
		StdDevLatency: CalculateStdDev(pt.Latencies),
		P50Latency:    CalculatePercentile(pt.Latencies, 50),
		P90Latency:    CalculatePercentile(pt.Latencies, 90),
		P99Latency:    CalculatePercentile(pt.Latencies, 99),
		MeanRounds:    CalculateMean(pt.Rounds),
	}
	for i, l := range pt.Latencies {
		if i == 0 || l < m.MinLatency {
			m.MinLatency = l
		}
		m.MaxLatency = max(m.MaxLatency, l)
	}
	if pt.Devices > 0 {
		m.MeanLatencyPerDevice = m.MeanLatency / float64(pt.Devices)
	}
	return m
}

// Print writes the metrics as indented JSON to stdout.
func (m *MetricsOutput) Print() {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		logrus.Fatalf("Error marshalling metrics: %v", err)
	}
	fmt.Println("=== Backoff Simulation Metrics ===")
	fmt.Println(string(data))
}

// SaveResults writes the metrics as indented JSON to path.
func (m *MetricsOutput) SaveResults(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing metrics file %s: %w", path, err)
	}
	logrus.Infof("Metrics written to: %s", path)
	return nil
}
