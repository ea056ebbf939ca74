package sim

import "fmt"

// SlotState is the contention outcome of a single slot within one round.
type SlotState uint8

const (
	// SlotEmpty means no device claimed the slot this round.
	SlotEmpty SlotState = iota
	// SlotOccupied means exactly one device claimed the slot.
	SlotOccupied
	// SlotCollision means two or more devices claimed the slot. The
	// claimants are not recoverable.
	SlotCollision
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotOccupied:
		return "occupied"
	case SlotCollision:
		return "collision"
	default:
		return fmt.Sprintf("SlotState(%d)", uint8(s))
	}
}

// Slot is one unit of the contention window.
// The zero value is an empty slot.
type Slot struct {
	state  SlotState
	device int // valid only when state == SlotOccupied
}

// Insert records a claim by device. A second claim in the same round turns
// the slot into a collision, and a collision stays a collision until Clear.
func (s *Slot) Insert(device int) {
	switch s.state {
	case SlotEmpty:
		s.state = SlotOccupied
		s.device = device
	default:
		s.state = SlotCollision
		s.device = 0
	}
}

// Clear harvests the slot and resets it to empty.
// Returns the occupant and true only if exactly one device claimed it.
func (s *Slot) Clear() (int, bool) {
	device, ok := s.device, s.state == SlotOccupied
	*s = Slot{}
	if !ok {
		return 0, false
	}
	return device, true
}

// State returns the slot's current state.
func (s Slot) State() SlotState {
	return s.state
}

// Occupant returns the claiming device if the slot is occupied.
func (s Slot) Occupant() (int, bool) {
	if s.state != SlotOccupied {
		return 0, false
	}
	return s.device, true
}
