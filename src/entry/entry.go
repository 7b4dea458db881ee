package entry

import (
	"math"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/packet"
	"github.com/mosaicnetworks/poh/src/poh"
	"github.com/mosaicnetworks/poh/src/transaction"
)

// Entry is a link of the Proof-of-History chain. NumHashes is the number of
// hashes since the previous Entry, and Hash the value of the chain after them.
type Entry struct {
	NumHashes    uint64
	Hash         crypto.Hash
	Transactions []transaction.Transaction
}

// NewEntry creates the Entry that follows prevHash after numHashes hashes and
// records txs. A data Entry with numHashes 0 is created with one hash, which is
// the one that mixes in the transactions. A tick with numHashes 0 is the
// degenerate link that repeats prevHash.
func NewEntry(prevHash crypto.Hash, numHashes uint64, txs []transaction.Transaction) (Entry, error) {
	if err := CheckSize(txs); err != nil {
		return Entry{}, err
	}

	if numHashes == 0 && len(txs) > 0 {
		numHashes = 1
	}

	return Entry{
		NumHashes:    numHashes,
		Hash:         NextHash(prevHash, numHashes, txs),
		Transactions: txs,
	}, nil
}

// NewEntryMut creates the Entry following *start after *numHashes hashes,
// moves *start to the new Entry's hash, and resets *numHashes.
func NewEntryMut(start *crypto.Hash, numHashes *uint64, txs []transaction.Transaction) (Entry, error) {
	e, err := NewEntry(*start, *numHashes, txs)
	if err != nil {
		return Entry{}, err
	}

	*start = e.Hash
	*numHashes = 0

	return e, nil
}

// NewTick returns a tick with the given fields, without computing anything.
func NewTick(numHashes uint64, hash crypto.Hash) Entry {
	return Entry{
		NumHashes: numHashes,
		Hash:      hash,
	}
}

// IsTick returns true if the Entry carries no transactions.
func (e Entry) IsTick() bool {
	return len(e.Transactions) == 0
}

// Verify returns true if the Entry's hash can be reproduced from startHash.
func (e Entry) Verify(startHash crypto.Hash) bool {
	return e.CheckHash(startHash) == nil
}

// CheckHash is like Verify but returns a HashMismatchError describing the
// failure.
func (e Entry) CheckHash(startHash crypto.Hash) error {
	ref := NextHash(startHash, e.NumHashes, e.Transactions)
	if ref != e.Hash {
		return &HashMismatchError{Expected: ref, Actual: e.Hash}
	}
	return nil
}

// Marshal returns the Entry's encoding as a single-entry Blob payload.
func (e Entry) Marshal() ([]byte, error) {
	return common.MsgpackEncode([]Entry{e})
}

// HashTransactions returns the digest of the first signature of every
// transaction that has one, in order. The boolean is false when no
// transaction carries a signature, in which case there is nothing to mix into
// the chain.
func HashTransactions(txs []transaction.Transaction) (crypto.Hash, bool) {
	sigs := make([][]byte, 0, len(txs))
	for i := range txs {
		if sig, ok := txs[i].FirstSignature(); ok {
			sigs = append(sigs, sig[:])
		}
	}

	if len(sigs) == 0 {
		return crypto.Hash{}, false
	}

	return crypto.Hashv(sigs...), true
}

// NextHash returns the hash numHashes after startHash. The last hash mixes in
// the digest of txs if they carry signatures. With numHashes 0 and no
// transactions, startHash is returned unchanged.
func NextHash(startHash crypto.Hash, numHashes uint64, txs []transaction.Transaction) crypto.Hash {
	if numHashes == 0 && len(txs) == 0 {
		return startHash
	}

	p := poh.NewPoh(startHash)
	if numHashes > 0 {
		p.Hash(numHashes - 1)
	}

	if len(txs) == 0 {
		return p.Tick().Hash
	}

	if mixin, ok := HashTransactions(txs); ok {
		return p.Record(mixin).Hash
	}

	return p.RecordUnmixed().Hash
}

// CheckSize returns an EntrySizeError if an Entry carrying txs would not fit
// in a single Blob.
func CheckSize(txs []transaction.Transaction) error {
	size, err := SerializedToBlobSize(txs)
	if err != nil {
		return err
	}
	if size > packet.BlobDataSize {
		return &EntrySizeError{Size: size, Max: packet.BlobDataSize}
	}
	return nil
}

// SerializedToBlobSize returns the size of a Blob payload that carries a
// single Entry with txs. The Entry's counter is taken at its widest encoding,
// so the result bounds the payload of any Entry built from txs.
func SerializedToBlobSize(txs []transaction.Transaction) (uint64, error) {
	b, err := common.MsgpackEncode([]Entry{{
		NumHashes:    math.MaxUint64,
		Transactions: txs,
	}})
	if err != nil {
		return 0, err
	}
	return uint64(len(b)), nil
}
