package validator

import (
	"crypto/ecdsa"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/poh/src/entry"
	"github.com/mosaicnetworks/poh/src/packet"
	"github.com/mosaicnetworks/poh/src/recorder"
	"github.com/mosaicnetworks/poh/src/transaction"
)

// maxPendingTransactions bounds the number of demo transactions waiting for a
// working bank.
const maxPendingTransactions = 256

// minPollInterval bounds the polling period of the slot driver when the
// target tick duration is zero.
const minPollInterval = time.Millisecond

// SlotBank returns the WorkingBank of a slot. Slot s receives the ticks with
// a height in (s*ticksPerSlot, (s+1)*ticksPerSlot].
func SlotBank(slot, ticksPerSlot uint64) recorder.WorkingBank {
	return recorder.WorkingBank{
		Slot:          slot,
		MinTickHeight: slot * ticksPerSlot,
		MaxTickHeight: (slot + 1) * ticksPerSlot,
	}
}

// driveSlots installs a WorkingBank every time the previous one completes,
// until done is closed.
func (v *Validator) driveSlots(done <-chan struct{}) {
	interval := v.Config.TargetTickDuration / 2
	if interval < minPollInterval {
		interval = minPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	v.startSlot()

	for {
		select {
		case <-ticker.C:
			v.startSlot()
		case <-done:
			return
		}
	}
}

// startSlot installs the bank of the slot that the chain is currently in, if
// no bank is installed and that slot was not produced already. It returns the
// installed bank.
func (v *Validator) startSlot() (recorder.WorkingBank, bool) {
	if _, ok := v.Recorder.WorkingBank(); ok {
		return recorder.WorkingBank{}, false
	}

	slot := v.Recorder.TickHeight() / v.Config.TicksPerSlot
	if slot < v.nextSlot {
		return recorder.WorkingBank{}, false
	}

	if slot > v.nextSlot {
		v.logger.WithFields(logrus.Fields{
			"from": v.nextSlot,
			"to":   slot - 1,
		}).Warn("Skipping slots")
	}

	wb := SlotBank(slot, v.Config.TicksPerSlot)

	v.Recorder.SetWorkingBank(wb)
	v.nextSlot = slot + 1

	return wb, true
}

// submitTransactions records a signed transaction every SubmitInterval in the
// slot being produced. Transactions rejected by the Recorder are retried with
// the next one, up to maxPendingTransactions.
func (v *Validator) submitTransactions(done <-chan struct{}) {
	ticker := time.NewTicker(v.Config.SubmitInterval)
	defer ticker.Stop()

	var pending []transaction.Transaction
	var counter uint64

	for {
		select {
		case <-ticker.C:
			tx, err := v.newTransaction(counter)
			if err != nil {
				v.logger.WithError(err).Error("Creating transaction")
				continue
			}
			counter++

			pending = v.submit(v.queue(pending, tx))
		case <-done:
			if len(pending) > 0 {
				v.logger.WithField("transactions", len(pending)).Debug("Dropping pending transactions")
			}
			return
		}
	}
}

// queue appends tx to pending, dropping the oldest transactions beyond
// maxPendingTransactions.
func (v *Validator) queue(pending []transaction.Transaction, tx transaction.Transaction) []transaction.Transaction {
	pending = append(pending, tx)

	if over := len(pending) - maxPendingTransactions; over > 0 {
		v.logger.WithField("transactions", over).Warn("Too many pending transactions, dropping oldest")
		pending = pending[over:]
	}

	return pending
}

func (v *Validator) newTransaction(counter uint64) (transaction.Transaction, error) {
	data := []byte(fmt.Sprintf("%s/%d", v.Config.Moniker, counter))

	return transaction.NewSignedTransaction(
		[]*ecdsa.PrivateKey{v.Config.Key},
		data,
		v.Recorder.LastHash(),
	)
}

// submit records the longest prefix of pending that fits in a single Entry,
// in the current working bank. It returns the transactions that are still
// pending.
func (v *Validator) submit(pending []transaction.Transaction) []transaction.Transaction {
	if len(pending) == 0 {
		return pending
	}

	wb, ok := v.Recorder.WorkingBank()
	if !ok {
		v.logger.WithField("transactions", len(pending)).Debug("No working bank, retrying later")
		return pending
	}

	n := entry.NumWillFit(pending, packet.BlobDataSize, entrySize)
	if n == 0 {
		v.logger.Error("Transaction does not fit in an entry, dropping it")
		return pending[1:]
	}

	err := v.Recorder.RecordTransactions(wb.Slot, pending[:n])
	if err != nil {
		if _, ok := err.(recorder.RecordError); ok {
			v.logger.WithError(err).WithField("slot", wb.Slot).Debug("Transactions rejected, retrying later")
			return pending
		}
		v.logger.WithError(err).Error("Recording transactions")
		return pending[n:]
	}

	v.submitted.Add(uint64(n))

	return pending[n:]
}

func entrySize(txs []transaction.Transaction) uint64 {
	size, err := entry.SerializedToBlobSize(txs)
	if err != nil {
		return math.MaxUint64
	}
	return size
}
