package ledger

import (
	"fmt"

	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"
	"github.com/sirupsen/logrus"

	cm "github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/packet"
)

const (
	blobPrefix     = "blob"
	metaPrefix     = "meta"
	completePrefix = "complete"
)

// BadgerStore persists Blobs in a Badger database. Blobs are stored under keys
// that sort by slot and index, next to a SlotMeta per slot and a marker per
// complete slot.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens the database in path, creating it if nothing is found.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithTruncate(true).
		WithTableLoadingMode(options.FileIO).
		WithValueLogLoadingMode(options.FileIO)

	if logger != nil {
		sub := logger.WithFields(logrus.Fields{"ns": "badger"})
		opts = opts.WithLogger(sub)
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

/*******************************************************************************
Keys
*******************************************************************************/

func slotBlobsPrefix(slot uint64) []byte {
	return []byte(fmt.Sprintf("%s_%020d_", blobPrefix, slot))
}

func blobKey(slot, index uint64) []byte {
	return []byte(fmt.Sprintf("%s_%020d_%020d", blobPrefix, slot, index))
}

func metaKey(slot uint64) []byte {
	return []byte(fmt.Sprintf("%s_%020d", metaPrefix, slot))
}

func completeKey(slot uint64) []byte {
	return []byte(fmt.Sprintf("%s_%020d", completePrefix, slot))
}

/*******************************************************************************
Store Methods
*******************************************************************************/

// PutBlobs implements Store
func (s *BadgerStore) PutBlobs(blobs []*packet.Blob) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	metas := make(map[uint64]*SlotMeta)

	for _, b := range blobs {
		meta, ok := metas[b.Slot]
		if !ok {
			m, err := txGetMeta(tx, b.Slot)
			if err != nil && !cm.IsStore(err, cm.KeyNotFound) {
				return err
			}
			if err != nil {
				m = SlotMeta{Slot: b.Slot}
			}
			meta = &m
			metas[b.Slot] = meta
		}

		if err := checkIndex(b, meta); err != nil {
			return err
		}

		val, err := b.Marshal()
		if err != nil {
			return err
		}

		//insert [slot_index] => [blob bytes]
		if err := tx.Set(blobKey(b.Slot, b.Index), val); err != nil {
			return err
		}

		meta.NumBlobs++

		if b.IsLastInSlot() {
			meta.Complete = true
			if err := tx.Set(completeKey(b.Slot), []byte{1}); err != nil {
				return err
			}
		}
	}

	for slot, meta := range metas {
		val, err := meta.Marshal()
		if err != nil {
			return err
		}
		if err := tx.Set(metaKey(slot), val); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBlob implements Store
func (s *BadgerStore) GetBlob(slot, index uint64) (*packet.Blob, error) {
	var blobBytes []byte
	key := blobKey(slot, index)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		blobBytes, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, mapError(err, "Blob", string(key))
	}

	blob := new(packet.Blob)
	if err := blob.Unmarshal(blobBytes); err != nil {
		return nil, err
	}

	return blob, nil
}

// SlotBlobs implements Store
func (s *BadgerStore) SlotBlobs(slot uint64) ([]*packet.Blob, error) {
	var res []*packet.Blob
	prefix := slotBlobsPrefix(slot)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			blob := new(packet.Blob)
			if err := blob.Unmarshal(v); err != nil {
				return err
			}
			res = append(res, blob)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, cm.NewStoreErr("Slot", cm.KeyNotFound, fmt.Sprint(slot))
	}

	return res, nil
}

// SlotMeta implements Store
func (s *BadgerStore) SlotMeta(slot uint64) (SlotMeta, error) {
	var meta SlotMeta

	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		meta, err = txGetMeta(txn, slot)
		return err
	})

	return meta, err
}

// LastCompleteSlot implements Store
func (s *BadgerStore) LastCompleteSlot() (uint64, error) {
	var last uint64
	found := false
	prefix := []byte(completePrefix + "_")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(append([]byte{}, prefix...), 0xFF))
		if !it.ValidForPrefix(prefix) {
			return nil
		}

		_, err := fmt.Sscanf(string(it.Item().Key()), completePrefix+"_%d", &last)
		if err != nil {
			return err
		}
		found = true
		return nil
	})

	if err != nil {
		return 0, err
	}

	if !found {
		return 0, cm.NewStoreErr("Slot", cm.Empty, "")
	}

	return last, nil
}

// Close implements Store
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StorePath returns the database directory.
func (s *BadgerStore) StorePath() string {
	return s.path
}

/*******************************************************************************
DB Methods
*******************************************************************************/

func txGetMeta(txn *badger.Txn, slot uint64) (SlotMeta, error) {
	var meta SlotMeta

	item, err := txn.Get(metaKey(slot))
	if err != nil {
		return meta, mapError(err, "SlotMeta", fmt.Sprint(slot))
	}

	val, err := item.ValueCopy(nil)
	if err != nil {
		return meta, err
	}

	if err := meta.Unmarshal(val); err != nil {
		return meta, err
	}

	return meta, nil
}

func isDBKeyNotFound(err error) bool {
	return err == badger.ErrKeyNotFound
}

func mapError(err error, name, key string) error {
	if err != nil {
		if isDBKeyNotFound(err) {
			return cm.NewStoreErr(name, cm.KeyNotFound, key)
		}
	}
	return err
}
