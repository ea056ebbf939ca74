package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow_AllSlotsEmpty(t *testing.T) {
	w := NewWindow(5, Linear)
	require.Equal(t, 5, w.Len())
	for i := 0; i < w.Len(); i++ {
		assert.Equal(t, SlotEmpty, w.Slot(i).State(), "slot %d", i)
	}
}

func TestNewWindow_NilGrowth_Panics(t *testing.T) {
	assert.Panics(t, func() { NewWindow(2, nil) })
}

func TestWindow_Insert_OutOfRange_Panics(t *testing.T) {
	w := NewWindow(2, Linear)
	assert.Panics(t, func() { w.Insert(0, 2) })
	assert.Panics(t, func() { w.Insert(0, -1) })
}

func TestWindow_HarvestAll_ReturnsCleanClaimsInSlotOrder(t *testing.T) {
	// GIVEN a window of 5 slots with claims:
	// slot 0: device 4, slot 1: devices 1 and 2 (collision), slot 3: device 0, slot 4: device 3
	w := NewWindow(5, Linear)
	w.Insert(4, 0)
	w.Insert(1, 1)
	w.Insert(2, 1)
	w.Insert(0, 3)
	w.Insert(3, 4)

	// WHEN harvested
	h := w.HarvestAll()

	// THEN clean claims come back in ascending slot order
	assert.Equal(t, []Success{{Device: 4, Slot: 0}, {Device: 0, Slot: 3}, {Device: 3, Slot: 4}}, h.Successes)
	assert.Equal(t, []int{4, 0, 3}, h.Devices())
	assert.Equal(t, 1, h.Collisions)
	assert.Equal(t, 4, h.LastSlot())

	// AND every slot is empty
	for i := 0; i < w.Len(); i++ {
		assert.Equal(t, SlotEmpty, w.Slot(i).State(), "slot %d", i)
	}
}

func TestWindow_HarvestAll_Idempotent(t *testing.T) {
	// GIVEN a harvested window
	w := NewWindow(3, Linear)
	w.Insert(0, 0)
	w.Insert(1, 2)
	first := w.HarvestAll()
	require.Len(t, first.Successes, 2)

	// WHEN harvested again with no inserts
	second := w.HarvestAll()

	// THEN nothing is returned
	assert.Empty(t, second.Successes)
	assert.Zero(t, second.Collisions)
	assert.Equal(t, -1, second.LastSlot())
}

func TestWindow_Grow_ReturnsPreviousSizeAndPreservesSlots(t *testing.T) {
	// GIVEN a window of 2 with a claim on slot 1
	w := NewWindow(2, BinaryExponential)
	w.Insert(9, 1)

	// WHEN grown
	prev := w.Grow()

	// THEN the previous size is returned and the window doubled
	assert.Equal(t, 2, prev)
	assert.Equal(t, 4, w.Len())

	// AND slot 1 keeps its claim while new slots are empty
	d, ok := w.Slot(1).Occupant()
	assert.True(t, ok)
	assert.Equal(t, 9, d)
	assert.Equal(t, SlotEmpty, w.Slot(2).State())
	assert.Equal(t, SlotEmpty, w.Slot(3).State())
}

func TestWindow_Grow_NonGrowingPolicy_DoesNotGuard(t *testing.T) {
	// The window accepts any growth result; the driver detects stalls.
	w := NewWindow(4, func(n int) int { return n - 1 })
	assert.Equal(t, 4, w.Grow())
	assert.Equal(t, 3, w.Len())
}

func TestWindow_Truncate_RestoresExactSizeAllEmpty(t *testing.T) {
	// GIVEN a window grown well beyond its initial size with leftover claims
	w := NewWindow(2, BinaryExponential)
	for i := 0; i < 4; i++ {
		w.Grow()
	}
	require.Equal(t, 32, w.Len())
	w.Insert(1, 0)
	w.Insert(2, 31)

	// WHEN truncated to the initial size
	w.Truncate(2)

	// THEN exactly 2 empty slots remain
	require.Equal(t, 2, w.Len())
	for i := 0; i < w.Len(); i++ {
		assert.Equal(t, SlotEmpty, w.Slot(i).State(), "slot %d", i)
	}

	// AND growing back over reused capacity yields empty slots
	w.Grow()
	w.Grow()
	w.Grow()
	w.Grow()
	for i := 0; i < w.Len(); i++ {
		assert.Equal(t, SlotEmpty, w.Slot(i).State(), "slot %d after regrow", i)
	}
}

func TestWindow_Truncate_CanGrow(t *testing.T) {
	w := NewWindow(1, Linear)
	w.Truncate(3)
	assert.Equal(t, 3, w.Len())
}
