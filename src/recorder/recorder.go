package recorder

import (
	"strconv"
	"sync"
	"time"

	"github.com/armon/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/entry"
	"github.com/mosaicnetworks/poh/src/poh"
	"github.com/mosaicnetworks/poh/src/transaction"
)

// Recorder owns the Proof-of-History chain. The PohService advances it with
// Hash and Tick while any number of goroutines timestamp transactions with
// Record. Every operation runs under a single lock, and entries are emitted on
// the entry channel under that same lock, so the channel order is the chain
// order.
type Recorder struct {
	sync.Mutex

	// poh is the cursor on the chain.
	poh *poh.Poh

	// tickHeight is the number of ticks since genesis.
	tickHeight uint64

	// tickCache holds the ticks that have not been delivered to a block yet,
	// oldest first.
	tickCache     []TickedEntry
	tickCacheSize int

	// workingBank is the block currently receiving entries. It is nil between
	// blocks.
	workingBank *WorkingBank

	// completedBank is the last block that reached its MaxTickHeight.
	completedBank *WorkingBank

	entryCh chan WorkingBankEntries

	metrics *metrics.Metrics
	logger  *logrus.Entry
}

// NewRecorder creates a Recorder whose chain starts at lastHash with the given
// tick height. m may not be nil.
func NewRecorder(tickHeight uint64,
	lastHash crypto.Hash,
	conf Config,
	m *metrics.Metrics,
	logger *logrus.Entry) *Recorder {

	r := &Recorder{
		poh:           poh.NewPoh(lastHash),
		tickHeight:    tickHeight,
		tickCacheSize: conf.TickCacheSize,
		entryCh:       make(chan WorkingBankEntries, conf.EntryChannelSize),
		metrics:       m,
		logger:        logger,
	}

	return r
}

// EntryCh returns the channel on which entries are delivered.
func (r *Recorder) EntryCh() <-chan WorkingBankEntries {
	return r.entryCh
}

// Hash advances the chain numHashes times.
func (r *Recorder) Hash(numHashes uint64) {
	r.Lock()
	defer r.Unlock()

	r.poh.Hash(numHashes)
}

// Tick closes the current chain segment with a tick and delivers it, along
// with any cached ticks, to the working bank if its tick range allows.
// tickStart is the time the PohService started working on this tick.
func (r *Recorder) Tick(tickStart time.Time) {
	r.Lock()
	defer r.Unlock()

	r.tick()

	r.metrics.MeasureSince([]string{"poh", "tick"}, tickStart)
}

func (r *Recorder) tick() {
	pe := r.poh.Tick()
	r.tickHeight++

	r.metrics.IncrCounter([]string{"poh", "ticks"}, 1)
	r.metrics.SetGauge([]string{"poh", "tick_height"}, float32(r.tickHeight))

	if len(r.tickCache) >= r.tickCacheSize && r.tickCacheSize > 0 {
		r.logger.WithFields(logrus.Fields{
			"tick_height": r.tickCache[0].TickHeight,
			"cache_size":  r.tickCacheSize,
		}).Warn("Tick cache full, dropping oldest tick")

		r.tickCache = r.tickCache[1:]
		r.metrics.IncrCounter([]string{"poh", "ticks_dropped"}, 1)
	}

	r.tickCache = append(r.tickCache, TickedEntry{
		Entry:      entry.NewTick(pe.NumHashes, pe.Hash),
		TickHeight: r.tickHeight,
	})

	_ = r.flushCache(true)
}

// flushCache delivers the cached ticks that belong to the working bank and
// clears the bank when its last tick has been produced. It returns a
// RecordError when the working bank cannot receive entries yet.
func (r *Recorder) flushCache(tick bool) error {
	if r.workingBank == nil {
		return NewRecordError(NoWorkingBank, 0)
	}

	wb := *r.workingBank

	if r.tickHeight < wb.MinTickHeight {
		return NewRecordError(MinHeightNotReached, wb.Slot)
	}
	if tick && r.tickHeight == wb.MinTickHeight {
		return NewRecordError(MinHeightNotReached, wb.Slot)
	}

	// Cached ticks at or below the bank's range belong to earlier blocks.
	stale := 0
	for stale < len(r.tickCache) && r.tickCache[stale].TickHeight <= wb.MinTickHeight {
		stale++
	}
	if stale > 0 {
		r.logger.WithFields(logrus.Fields{
			"slot":  wb.Slot,
			"ticks": stale,
		}).Debug("Discarding ticks of earlier blocks")
	}

	count := 0
	for stale+count < len(r.tickCache) && r.tickCache[stale+count].TickHeight <= wb.MaxTickHeight {
		count++
	}

	if count > 0 {
		ticks := make([]TickedEntry, count)
		copy(ticks, r.tickCache[stale:stale+count])
		r.send(wb, ticks)
	}

	r.tickCache = r.tickCache[stale+count:]

	if r.tickHeight >= wb.MaxTickHeight {
		r.logger.WithFields(logrus.Fields{
			"slot":        wb.Slot,
			"tick_height": r.tickHeight,
		}).Debug("Working bank complete")

		r.completedBank = &wb
		r.workingBank = nil
	}

	return nil
}

func (r *Recorder) send(wb WorkingBank, entries []TickedEntry) {
	r.entryCh <- WorkingBankEntries{
		Slot:          wb.Slot,
		MaxTickHeight: wb.MaxTickHeight,
		Entries:       entries,
	}
	r.metrics.IncrCounter([]string{"poh", "entries"}, float32(len(entries)))
}

// Record mixes mixin into the chain and delivers an Entry carrying txs to the
// working bank, provided it is producing slot. Transactions that would not fit
// in a single Blob are refused with an *entry.EntrySizeError and leave the
// chain untouched.
func (r *Recorder) Record(slot uint64, mixin crypto.Hash, txs []transaction.Transaction) error {
	return r.record(slot, txs, func() poh.Entry {
		return r.poh.Record(mixin)
	})
}

// RecordTransactions records txs with the digest of their signatures, so that
// the produced Entry verifies.
func (r *Recorder) RecordTransactions(slot uint64, txs []transaction.Transaction) error {
	mixin, ok := entry.HashTransactions(txs)
	if !ok {
		return r.record(slot, txs, func() poh.Entry {
			return r.poh.RecordUnmixed()
		})
	}
	return r.Record(slot, mixin, txs)
}

func (r *Recorder) record(slot uint64, txs []transaction.Transaction, closeEntry func() poh.Entry) error {
	start := time.Now()

	r.Lock()
	defer r.Unlock()

	err := r.checkRecord(slot, txs)
	if err != nil {
		r.metrics.IncrCounter([]string{"poh", "records_rejected"}, 1)
		return err
	}

	pe := closeEntry()

	r.send(*r.workingBank, []TickedEntry{{
		Entry: entry.Entry{
			NumHashes:    pe.NumHashes,
			Hash:         pe.Hash,
			Transactions: txs,
		},
		TickHeight: r.tickHeight,
	}})

	r.metrics.IncrCounter([]string{"poh", "transactions"}, float32(len(txs)))
	r.metrics.MeasureSince([]string{"poh", "record"}, start)

	return nil
}

func (r *Recorder) checkRecord(slot uint64, txs []transaction.Transaction) error {
	if len(txs) == 0 {
		return NewRecordError(InvalidRecord, slot)
	}

	// The Entry must fit in a Blob, or the ledger could not store it after
	// the chain moved past it.
	if err := entry.CheckSize(txs); err != nil {
		return err
	}

	if r.workingBank == nil {
		if r.completedBank != nil && r.completedBank.Slot == slot {
			return NewRecordError(MaxHeightReached, slot)
		}
		return NewRecordError(NoWorkingBank, slot)
	}

	if r.workingBank.Slot != slot {
		return NewRecordError(WrongSlot, slot)
	}

	// Deliver the pending ticks first so the data entry follows them.
	if err := r.flushCache(false); err != nil {
		return err
	}

	if r.workingBank == nil {
		return NewRecordError(MaxHeightReached, slot)
	}

	return nil
}

// SetWorkingBank installs the block that will receive entries, and delivers
// the cached ticks that belong to it.
func (r *Recorder) SetWorkingBank(wb WorkingBank) {
	r.Lock()
	defer r.Unlock()

	r.logger.WithField("bank", wb).Debug("SetWorkingBank")

	r.workingBank = &wb
	_ = r.flushCache(false)
}

// ClearWorkingBank stops the delivery of entries until the next
// SetWorkingBank.
func (r *Recorder) ClearWorkingBank() {
	r.Lock()
	defer r.Unlock()

	r.workingBank = nil
}

// WorkingBank returns the block currently receiving entries.
func (r *Recorder) WorkingBank() (WorkingBank, bool) {
	r.Lock()
	defer r.Unlock()

	if r.workingBank == nil {
		return WorkingBank{}, false
	}
	return *r.workingBank, true
}

// Reset moves the chain to hash and tickHeight, clearing the working bank and
// the tick cache.
func (r *Recorder) Reset(tickHeight uint64, hash crypto.Hash) {
	r.Lock()
	defer r.Unlock()

	r.logger.WithFields(logrus.Fields{
		"tick_height": tickHeight,
		"hash":        hash.String(),
	}).Info("Reset")

	r.poh = poh.NewPoh(hash)
	r.tickHeight = tickHeight
	r.tickCache = nil
	r.workingBank = nil
	r.completedBank = nil
}

// TickHeight ...
func (r *Recorder) TickHeight() uint64 {
	r.Lock()
	defer r.Unlock()

	return r.tickHeight
}

// LastHash returns the current value of the chain.
func (r *Recorder) LastHash() crypto.Hash {
	r.Lock()
	defer r.Unlock()

	return r.poh.LastHash()
}

// GetStats returns the state of the Recorder as strings.
func (r *Recorder) GetStats() map[string]string {
	r.Lock()
	defer r.Unlock()

	bank := "nil"
	if r.workingBank != nil {
		bank = r.workingBank.String()
	}

	return map[string]string{
		"tick_height":    strconv.FormatUint(r.tickHeight, 10),
		"last_hash":      r.poh.LastHash().String(),
		"pending_hashes": strconv.FormatUint(r.poh.PendingHashes(), 10),
		"cached_ticks":   strconv.Itoa(len(r.tickCache)),
		"working_bank":   bank,
		"entry_backlog":  strconv.Itoa(len(r.entryCh)),
	}
}
