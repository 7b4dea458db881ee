package ledger

import (
	"sync"

	"github.com/armon/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/entry"
	"github.com/mosaicnetworks/poh/src/recorder"
)

// Writer consumes the Recorder's entry channel, packs every batch into Blobs
// and appends them to the Store.
type Writer struct {
	store   Store
	entryCh <-chan recorder.WorkingBankEntries

	// nextIndex is the index of the next Blob of each slot being written.
	nextIndex map[uint64]uint64

	shutdownCh chan struct{}
	wg         sync.WaitGroup

	metrics *metrics.Metrics
	logger  *logrus.Entry
}

// NewWriter ...
func NewWriter(store Store,
	entryCh <-chan recorder.WorkingBankEntries,
	m *metrics.Metrics,
	logger *logrus.Entry) *Writer {

	return &Writer{
		store:      store,
		entryCh:    entryCh,
		nextIndex:  make(map[uint64]uint64),
		shutdownCh: make(chan struct{}),
		metrics:    m,
		logger:     logger,
	}
}

// Start launches the goroutine that writes batches as they arrive.
func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run()
	}()
}

func (w *Writer) run() {
	for {
		select {
		case wbe := <-w.entryCh:
			if err := w.Write(wbe); err != nil {
				w.logger.WithError(err).WithField("slot", wbe.Slot).Error("Writing entries")
			}
		case <-w.shutdownCh:
			return
		}
	}
}

// Shutdown stops the writing goroutine. Batches still in the channel are
// written first.
func (w *Writer) Shutdown() {
	close(w.shutdownCh)
	w.wg.Wait()

	for {
		select {
		case wbe := <-w.entryCh:
			if err := w.Write(wbe); err != nil {
				w.logger.WithError(err).WithField("slot", wbe.Slot).Error("Writing entries")
			}
		default:
			return
		}
	}
}

// Write packs a batch into Blobs and stores them. The last Blob is flagged
// when the batch completes its slot.
func (w *Writer) Write(wbe recorder.WorkingBankEntries) error {
	es := wbe.EntryList()
	if len(es) == 0 {
		return nil
	}

	blobs, err := es.ToBlobs()
	if err != nil {
		return err
	}

	index, err := w.slotIndex(wbe.Slot)
	if err != nil {
		return err
	}

	for _, b := range blobs {
		b.Slot = wbe.Slot
		b.Index = index
		index++
	}

	if wbe.CompletesSlot() {
		blobs[len(blobs)-1].SetLastInSlot()
	}

	if err := w.store.PutBlobs(blobs); err != nil {
		return err
	}

	w.nextIndex[wbe.Slot] = index

	if wbe.CompletesSlot() {
		delete(w.nextIndex, wbe.Slot)

		w.logger.WithFields(logrus.Fields{
			"slot":  wbe.Slot,
			"blobs": index,
		}).Debug("Slot complete")
	}

	w.metrics.IncrCounter([]string{"ledger", "blobs"}, float32(len(blobs)))
	w.metrics.IncrCounter([]string{"ledger", "entries"}, float32(len(es)))

	return nil
}

func (w *Writer) slotIndex(slot uint64) (uint64, error) {
	if index, ok := w.nextIndex[slot]; ok {
		return index, nil
	}

	meta, err := w.store.SlotMeta(slot)
	if err != nil {
		if common.IsStore(err, common.KeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return meta.NumBlobs, nil
}

// ReadSlot returns the entries stored for a slot and the number of ticks among
// them.
func ReadSlot(store Store, slot uint64) (entry.Entries, uint64, error) {
	blobs, err := store.SlotBlobs(slot)
	if err != nil {
		return nil, 0, err
	}
	return entry.ReconstructEntriesFromBlobs(blobs)
}

// WriteEntries stores entries as the given slot, starting at Blob index 0.
func WriteEntries(store Store, slot uint64, entries entry.Entries, complete bool) error {
	blobs, err := entries.ToBlobs()
	if err != nil {
		return err
	}
	if len(blobs) == 0 {
		return nil
	}

	for i, b := range blobs {
		b.Slot = slot
		b.Index = uint64(i)
	}
	if complete {
		blobs[len(blobs)-1].SetLastInSlot()
	}

	return store.PutBlobs(blobs)
}
