package recorder

import (
	"fmt"

	"github.com/mosaicnetworks/poh/src/entry"
)

// WorkingBank describes the block that the Recorder is producing entries for.
// Ticks with a height in (MinTickHeight, MaxTickHeight] belong to the block.
type WorkingBank struct {
	Slot          uint64
	MinTickHeight uint64
	MaxTickHeight uint64
}

func (wb WorkingBank) String() string {
	return fmt.Sprintf("slot %d (%d, %d]", wb.Slot, wb.MinTickHeight, wb.MaxTickHeight)
}

// TickedEntry is an Entry with the tick height of the chain when it was
// produced.
type TickedEntry struct {
	Entry      entry.Entry
	TickHeight uint64
}

// WorkingBankEntries is a batch of consecutive entries produced for a block.
// It is never empty. MaxTickHeight is the height of the block's last tick.
type WorkingBankEntries struct {
	Slot          uint64
	MaxTickHeight uint64
	Entries       []TickedEntry
}

// EntryList returns the batch's entries without their tick heights.
func (wbe WorkingBankEntries) EntryList() entry.Entries {
	es := make(entry.Entries, len(wbe.Entries))
	for i, te := range wbe.Entries {
		es[i] = te.Entry
	}
	return es
}

// CompletesSlot returns true if the batch ends with the last tick of its
// block.
func (wbe WorkingBankEntries) CompletesSlot() bool {
	if len(wbe.Entries) == 0 {
		return false
	}
	last := wbe.Entries[len(wbe.Entries)-1]
	return last.Entry.IsTick() && last.TickHeight == wbe.MaxTickHeight
}

// LastTickHeight returns the tick height of the batch's last entry.
func (wbe WorkingBankEntries) LastTickHeight() uint64 {
	if len(wbe.Entries) == 0 {
		return 0
	}
	return wbe.Entries[len(wbe.Entries)-1].TickHeight
}
