package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// GrowthFunc maps the current window size to the next window size.
// Implementations MUST be pure. The window does not check the result; the
// protocol driver treats a non-increasing result as a divergent policy.
type GrowthFunc func(size int) int

// Success is a clean (collision-free) claim harvested from a window.
type Success struct {
	Device int
	Slot   int
}

// Harvest is the outcome of clearing every slot of a window after a round.
type Harvest struct {
	Successes  []Success // ascending slot order
	Collisions int       // number of slots that held a collision
}

// LastSlot returns the highest slot index that harvested a success,
// or -1 when the round produced no success.
func (h Harvest) LastSlot() int {
	if len(h.Successes) == 0 {
		return -1
	}
	return h.Successes[len(h.Successes)-1].Slot
}

// Devices returns the harvested device ids in slot order.
func (h Harvest) Devices() []int {
	ids := make([]int, len(h.Successes))
	for i, s := range h.Successes {
		ids[i] = s.Device
	}
	return ids
}

// Window is the ordered sequence of slots available to contending devices
// in the current round, together with its growth policy.
type Window struct {
	slots  []Slot
	growth GrowthFunc
}

// NewWindow creates a window of initialSize empty slots.
func NewWindow(initialSize int, growth GrowthFunc) *Window {
	if initialSize < 0 {
		panic(fmt.Sprintf("NewWindow: negative initial size %d", initialSize))
	}
	if growth == nil {
		panic("NewWindow: nil growth function")
	}
	return &Window{
		slots:  make([]Slot, initialSize),
		growth: growth,
	}
}

// Len returns the current window size.
func (w *Window) Len() int {
	return len(w.slots)
}

// Slot returns a copy of the slot at index i.
func (w *Window) Slot(i int) Slot {
	return w.slots[i]
}

// Insert records a claim by device on slot. An out-of-range slot is a
// caller bug and panics.
func (w *Window) Insert(device, slot int) {
	if slot < 0 || slot >= len(w.slots) {
		panic(fmt.Sprintf("Window.Insert: slot %d out of range [0, %d)", slot, len(w.slots)))
	}
	w.slots[slot].Insert(device)
}

// HarvestAll clears every slot and returns the clean claims in ascending
// slot order. A second call with no intervening Insert returns nothing.
func (w *Window) HarvestAll() Harvest {
	var h Harvest
	for i := range w.slots {
		if w.slots[i].state == SlotCollision {
			h.Collisions++
		}
		if device, ok := w.slots[i].Clear(); ok {
			h.Successes = append(h.Successes, Success{Device: device, Slot: i})
		}
	}
	return h
}

// Grow resizes the window to growth(Len()). Existing slots keep their
// position and contents; new slots are empty. Returns the size before growth.
func (w *Window) Grow() int {
	prev := len(w.slots)
	next := w.growth(prev)
	w.resize(next)
	logrus.Debugf("window grew %d -> %d", prev, next)
	return prev
}

// Truncate resets the window to exactly size empty slots, discarding any
// state left by a previous experiment.
func (w *Window) Truncate(size int) {
	w.resize(size)
	clear(w.slots)
}

func (w *Window) resize(size int) {
	if size < 0 {
		panic(fmt.Sprintf("Window: negative size %d", size))
	}
	if size <= cap(w.slots) {
		old := len(w.slots)
		w.slots = w.slots[:size]
		if size > old {
			clear(w.slots[old:])
		}
		return
	}
	grown := make([]Slot, size)
	copy(grown, w.slots)
	w.slots = grown
}
