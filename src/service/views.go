package service

import (
	"github.com/mosaicnetworks/poh/src/entry"
)

// EntryView is the JSON representation of an Entry.
type EntryView struct {
	NumHashes  uint64
	Hash       string
	Tick       bool
	Signatures []string `json:",omitempty"`
}

// SlotView is the JSON representation of the entries of a slot.
type SlotView struct {
	Slot     uint64
	NumTicks uint64
	Entries  []EntryView
}

// NewSlotView ...
func NewSlotView(slot uint64, numTicks uint64, entries entry.Entries) SlotView {
	view := SlotView{
		Slot:     slot,
		NumTicks: numTicks,
		Entries:  make([]EntryView, len(entries)),
	}

	for i, e := range entries {
		ev := EntryView{
			NumHashes: e.NumHashes,
			Hash:      e.Hash.String(),
			Tick:      e.IsTick(),
		}
		for _, tx := range e.Transactions {
			if sig, ok := tx.FirstSignature(); ok {
				ev.Signatures = append(ev.Signatures, sig.String())
			}
		}
		view.Entries[i] = ev
	}

	return view
}
