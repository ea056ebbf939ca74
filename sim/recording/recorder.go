// Package recording persists per-trial sweep results.
// This package has no dependencies on sim/; callers convert results to Row.
package recording

import (
	"errors"
	"strconv"

	"github.com/rs/xid"
)

// Row is one trial of one growth policy.
type Row struct {
	RunID      string
	Policy     string
	Experiment int // 1-based
	Trial      int // 1-based
	Devices    int
	Latency    int
	Rounds     int
}

// columns is the shared column order of every backend.
var columns = []string{"run_id", "policy", "experiment", "trial", "devices", "latency", "rounds"}

func (r Row) strings() []string {
	return []string{
		r.RunID,
		r.Policy,
		strconv.Itoa(r.Experiment),
		strconv.Itoa(r.Trial),
		strconv.Itoa(r.Devices),
		strconv.Itoa(r.Latency),
		strconv.Itoa(r.Rounds),
	}
}

// Recorder is a backend that stores sweep results.
// Implementations are not safe for concurrent use.
type Recorder interface {
	// Record buffers one row.
	Record(row Row) error

	// Flush writes all buffered rows.
	Flush() error

	// Close flushes and releases the backend. Calling Close twice is a no-op.
	Close() error
}

// NewRunID returns a globally unique, time-sortable run identifier.
func NewRunID() string {
	return xid.New().String()
}

// multiRecorder fans rows out to several backends.
type multiRecorder []Recorder

// Multi returns a Recorder writing to every non-nil recorder in rs,
// or nil if there are none.
func Multi(rs ...Recorder) Recorder {
	var m multiRecorder
	for _, r := range rs {
		if r != nil {
			m = append(m, r)
		}
	}
	if len(m) == 0 {
		return nil
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}

func (m multiRecorder) Record(row Row) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Record(row))
	}
	return errors.Join(errs...)
}

func (m multiRecorder) Flush() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Flush())
	}
	return errors.Join(errs...)
}

func (m multiRecorder) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}
