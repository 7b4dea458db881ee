package validator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/ledger"
)

// bootstrap resumes the chain after the last complete slot of the Store. The
// slot is verified against the end of the previous slot when it is also
// complete, or against GenesisHash for slot 0.
func (v *Validator) bootstrap() error {
	slot, err := v.Store.LastCompleteSlot()
	if err != nil {
		if common.IsStore(err, common.Empty) {
			v.logger.Debug("Bootstrap: no complete slot, starting from genesis")
			return nil
		}
		return err
	}

	entries, numTicks, err := ledger.ReadSlot(v.Store, slot)
	if err != nil {
		return fmt.Errorf("reading slot %d: %w", slot, err)
	}

	if numTicks != v.Config.TicksPerSlot {
		return fmt.Errorf("slot %d has %d ticks, expected %d", slot, numTicks, v.Config.TicksPerSlot)
	}

	start, ok, err := v.slotStartHash(slot)
	if err != nil {
		return err
	}

	if ok {
		if err := entries.Check(start); err != nil {
			return fmt.Errorf("verifying slot %d: %w", slot, err)
		}
	} else {
		v.logger.WithField("slot", slot).Warn("Bootstrap: previous slot incomplete, slot not verified")
	}

	v.startHeight = (slot + 1) * v.Config.TicksPerSlot
	v.startHash = entries.LastHash(start)
	v.nextSlot = slot + 1

	v.logger.WithFields(logrus.Fields{
		"slot":        slot,
		"entries":     len(entries),
		"tick_height": v.startHeight,
		"hash":        v.startHash.String(),
	}).Info("Bootstrap")

	return nil
}

// slotStartHash returns the hash that a slot's entries chain from, if it is
// known.
func (v *Validator) slotStartHash(slot uint64) (crypto.Hash, bool, error) {
	if slot == 0 {
		return GenesisHash, true, nil
	}

	meta, err := v.Store.SlotMeta(slot - 1)
	if err != nil {
		if common.IsStore(err, common.KeyNotFound) {
			return crypto.Hash{}, false, nil
		}
		return crypto.Hash{}, false, err
	}

	if !meta.Complete {
		return crypto.Hash{}, false, nil
	}

	prev, _, err := ledger.ReadSlot(v.Store, slot-1)
	if err != nil {
		return crypto.Hash{}, false, fmt.Errorf("reading slot %d: %w", slot-1, err)
	}

	return prev.LastHash(GenesisHash), true, nil
}
