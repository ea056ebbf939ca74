package sim

import "fmt"

// DeviceState is the transmission state of one contending device.
type DeviceState uint8

const (
	// DeviceWaiting devices still contend for a slot every round.
	DeviceWaiting DeviceState = iota
	// DeviceSucceeded devices transmitted cleanly and never contend again.
	DeviceSucceeded
)

func (s DeviceState) String() string {
	switch s {
	case DeviceWaiting:
		return "waiting"
	case DeviceSucceeded:
		return "succeeded"
	default:
		return fmt.Sprintf("DeviceState(%d)", uint8(s))
	}
}

// defaultDeviceCapacity matches the largest population of the reference
// sweep (60 experiments of +100 devices).
const defaultDeviceCapacity = 6000

// Devices is the pool of contenders. Remaining() always equals the number
// of waiting entries.
type Devices struct {
	states    []DeviceState
	remaining int
}

// NewDevices creates an empty pool.
func NewDevices() *Devices {
	return &Devices{
		states: make([]DeviceState, 0, defaultDeviceCapacity),
	}
}

// ResetAndGrow resets every device to waiting, then appends increment
// waiting devices.
func (d *Devices) ResetAndGrow(increment int) {
	if increment < 0 {
		panic(fmt.Sprintf("Devices.ResetAndGrow: negative increment %d", increment))
	}
	clear(d.states)
	for i := 0; i < increment; i++ {
		d.states = append(d.states, DeviceWaiting)
	}
	d.remaining = len(d.states)
}

// MarkSuccessful transitions each id to succeeded. Ids must be distinct and
// currently waiting; anything else would corrupt the remaining count, so it
// panics.
func (d *Devices) MarkSuccessful(ids []int) {
	for _, id := range ids {
		if id < 0 || id >= len(d.states) {
			panic(fmt.Sprintf("Devices.MarkSuccessful: device %d out of range [0, %d)", id, len(d.states)))
		}
		if d.states[id] != DeviceWaiting {
			panic(fmt.Sprintf("Devices.MarkSuccessful: device %d is %s, want waiting", id, d.states[id]))
		}
		d.states[id] = DeviceSucceeded
		d.remaining--
	}
}

// Remaining returns the number of devices still waiting.
func (d *Devices) Remaining() int {
	return d.remaining
}

// Succeeded returns the number of devices that have transmitted.
func (d *Devices) Succeeded() int {
	return len(d.states) - d.remaining
}

// Len returns the pool size.
func (d *Devices) Len() int {
	return len(d.states)
}

// State returns the state of device id.
func (d *Devices) State(id int) DeviceState {
	return d.states[id]
}
