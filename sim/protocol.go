package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/backoff-sim/backoff-sim/sim/trace"
)

// BackoffProtocol drives repeated collision-resolution experiments for one
// growth policy. It owns its Devices pool and Window for its whole lifetime
// and resets (not reallocates) them between experiments.
//
// Not safe for concurrent use.
type BackoffProtocol struct {
	cfg     ProtocolConfig
	devices *Devices
	window  *Window
	rng     RandomSource
	trace   *trace.ExperimentTrace

	experiments int // experiments started, for trace numbering
	rounds      int // rounds used by the last experiment
}

// NewBackoffProtocol validates cfg against growth and returns a driver with
// an empty device pool.
func NewBackoffProtocol(cfg ProtocolConfig, growth GrowthFunc, rng RandomSource) (*BackoffProtocol, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateGrowth(growth, cfg.InitialWindowSize); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}
	if cfg.FinalRoundLatency == "" {
		cfg.FinalRoundLatency = LatencyLastDevice
	}
	return &BackoffProtocol{
		cfg:     cfg,
		devices: NewDevices(),
		window:  NewWindow(cfg.InitialWindowSize, growth),
		rng:     rng,
	}, nil
}

// SetTrace attaches a round trace. Nil disables tracing.
func (p *BackoffProtocol) SetTrace(et *trace.ExperimentTrace) {
	p.trace = et
}

// Devices returns the number of devices in the pool.
func (p *BackoffProtocol) Devices() int {
	return p.devices.Len()
}

// Rounds returns the number of rounds used by the last experiment.
func (p *BackoffProtocol) Rounds() int {
	return p.rounds
}

// WindowSize returns the current window size.
func (p *BackoffProtocol) WindowSize() int {
	return p.window.Len()
}

// RunExperiment grows the device pool by the configured increment, resets
// all state and runs rounds until every device has transmitted.
// Returns the experiment's latency in slots.
func (p *BackoffProtocol) RunExperiment() (int, error) {
	return p.run(p.cfg.DeviceIncrement)
}

// Rerun runs another experiment at the current population.
func (p *BackoffProtocol) Rerun() (int, error) {
	return p.run(0)
}

func (p *BackoffProtocol) reset(increment int) {
	p.devices.ResetAndGrow(increment)
	p.window.Truncate(p.cfg.InitialWindowSize)
	p.experiments++
	p.rounds = 0
}

func (p *BackoffProtocol) run(increment int) (int, error) {
	p.reset(increment)
	latency := 0
	if p.devices.Remaining() == 0 {
		return 0, nil
	}

	for {
		p.rounds++
		if p.cfg.MaxRounds > 0 && p.rounds > p.cfg.MaxRounds {
			return latency, fmt.Errorf("%w: %d devices still waiting after %d rounds",
				ErrDivergentGrowthPolicy, p.devices.Remaining(), p.cfg.MaxRounds)
		}

		contenders := p.devices.Remaining()
		numSlots := p.window.Len()
		p.claim(numSlots)

		harvest := p.window.HarvestAll()
		p.devices.MarkSuccessful(harvest.Devices())
		p.record(harvest, contenders, numSlots)

		if p.devices.Remaining() == 0 {
			latency += p.terminalLatency(harvest)
			logrus.Debugf("experiment %d: %d devices done in %d rounds, latency %d",
				p.experiments, p.devices.Len(), p.rounds, latency)
			return latency, nil
		}

		prev := p.window.Grow()
		if p.window.Len() <= prev {
			return latency, fmt.Errorf("%w: window went from %d to %d slots with %d devices waiting",
				ErrDivergentGrowthPolicy, prev, p.window.Len(), p.devices.Remaining())
		}
		latency += prev
	}
}

// claim has every waiting device pick one slot uniformly at random.
func (p *BackoffProtocol) claim(numSlots int) {
	for id := 0; id < p.devices.Len(); id++ {
		if p.devices.State(id) == DeviceWaiting {
			p.window.Insert(id, p.rng.Intn(numSlots))
		}
	}
}

// terminalLatency is the final round's contribution: highest device id
// harvested + 1, or last clean slot + 1 under LatencyLastSlot.
func (p *BackoffProtocol) terminalLatency(h Harvest) int {
	if p.cfg.FinalRoundLatency == LatencyLastSlot {
		return h.LastSlot() + 1
	}
	last := -1
	for _, s := range h.Successes {
		last = max(last, s.Device)
	}
	return last + 1
}

func (p *BackoffProtocol) record(h Harvest, contenders, numSlots int) {
	if !p.trace.Enabled() {
		return
	}
	p.trace.RecordRound(trace.RoundRecord{
		Experiment: p.experiments,
		Round:      p.rounds,
		WindowSize: numSlots,
		Contenders: contenders,
		Successes:  len(h.Successes),
		Collisions: h.Collisions,
		LastSlot:   h.LastSlot(),
	})
}
