package ledger

import (
	"fmt"
	"sync"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/packet"
)

// InmemStore keeps Blobs in memory.
type InmemStore struct {
	sync.RWMutex

	blobs  map[uint64][]*packet.Blob
	metas  map[uint64]*SlotMeta
	closed bool
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		blobs: make(map[uint64][]*packet.Blob),
		metas: make(map[uint64]*SlotMeta),
	}
}

// PutBlobs implements Store
func (s *InmemStore) PutBlobs(blobs []*packet.Blob) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return common.NewStoreErr("Blob", common.Closed, "")
	}

	// Stage the new metas so that a rejected batch leaves the store as it
	// was.
	staged := make(map[uint64]*SlotMeta)

	for _, b := range blobs {
		meta, ok := staged[b.Slot]
		if !ok {
			m := SlotMeta{Slot: b.Slot}
			if cur, ok := s.metas[b.Slot]; ok {
				m = *cur
			}
			meta = &m
			staged[b.Slot] = meta
		}

		if err := checkIndex(b, meta); err != nil {
			return err
		}

		meta.NumBlobs++
		if b.IsLastInSlot() {
			meta.Complete = true
		}
	}

	for _, b := range blobs {
		c := *b
		s.blobs[b.Slot] = append(s.blobs[b.Slot], &c)
	}
	for slot, meta := range staged {
		s.metas[slot] = meta
	}

	return nil
}

// GetBlob implements Store
func (s *InmemStore) GetBlob(slot, index uint64) (*packet.Blob, error) {
	s.RLock()
	defer s.RUnlock()

	blobs := s.blobs[slot]
	if index >= uint64(len(blobs)) {
		return nil, common.NewStoreErr("Blob", common.KeyNotFound, fmt.Sprintf("%d/%d", slot, index))
	}

	c := *blobs[index]
	return &c, nil
}

// SlotBlobs implements Store
func (s *InmemStore) SlotBlobs(slot uint64) ([]*packet.Blob, error) {
	s.RLock()
	defer s.RUnlock()

	blobs, ok := s.blobs[slot]
	if !ok {
		return nil, common.NewStoreErr("Slot", common.KeyNotFound, fmt.Sprint(slot))
	}

	res := make([]*packet.Blob, len(blobs))
	for i, b := range blobs {
		c := *b
		res[i] = &c
	}
	return res, nil
}

// SlotMeta implements Store
func (s *InmemStore) SlotMeta(slot uint64) (SlotMeta, error) {
	s.RLock()
	defer s.RUnlock()

	meta, ok := s.metas[slot]
	if !ok {
		return SlotMeta{}, common.NewStoreErr("SlotMeta", common.KeyNotFound, fmt.Sprint(slot))
	}
	return *meta, nil
}

// LastCompleteSlot implements Store
func (s *InmemStore) LastCompleteSlot() (uint64, error) {
	s.RLock()
	defer s.RUnlock()

	var last uint64
	found := false
	for slot, meta := range s.metas {
		if meta.Complete && (!found || slot > last) {
			last = slot
			found = true
		}
	}

	if !found {
		return 0, common.NewStoreErr("Slot", common.Empty, "")
	}
	return last, nil
}

// Close implements Store
func (s *InmemStore) Close() error {
	s.Lock()
	defer s.Unlock()

	s.closed = true
	return nil
}
