// Package ledger persists the Blobs produced from the entry channel and reads
// slots back as entries.
package ledger

import (
	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/packet"
)

// SlotMeta summarizes the Blobs stored for a slot.
type SlotMeta struct {
	Slot     uint64
	NumBlobs uint64

	// Complete is set when the Blob carrying the slot's last tick is
	// stored.
	Complete bool
}

// Marshal ...
func (m *SlotMeta) Marshal() ([]byte, error) {
	return common.JSONEncode(m)
}

// Unmarshal ...
func (m *SlotMeta) Unmarshal(data []byte) error {
	return common.JSONDecode(data, m)
}

// checkIndex returns an error unless b is the next Blob of the slot described
// by meta.
func checkIndex(b *packet.Blob, meta *SlotMeta) error {
	switch {
	case b.Index < meta.NumBlobs:
		return common.NewStoreErr("Blob", common.KeyAlreadyExists, b.Key())
	case b.Index > meta.NumBlobs:
		return common.NewStoreErr("Blob", common.OutOfOrder, b.Key())
	}
	return nil
}

// Store is a sink for Blobs, indexed by slot and index.
type Store interface {
	// PutBlobs stores blobs, which must carry consecutive indexes within
	// their slot. Nothing is stored if any Blob is rejected.
	PutBlobs(blobs []*packet.Blob) error

	GetBlob(slot, index uint64) (*packet.Blob, error)

	// SlotBlobs returns a slot's Blobs ordered by index.
	SlotBlobs(slot uint64) ([]*packet.Blob, error)

	SlotMeta(slot uint64) (SlotMeta, error)

	// LastCompleteSlot returns the highest complete slot. It returns a
	// StoreErr of type Empty if no slot is complete.
	LastCompleteSlot() (uint64, error)

	Close() error
}
