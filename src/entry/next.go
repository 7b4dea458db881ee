package entry

import (
	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/packet"
	"github.com/mosaicnetworks/poh/src/transaction"
)

// NextEntries creates the entries that record txs after startHash, splitting
// the batch so that every Entry fits in a Blob. The first Entry takes
// numHashes hashes; the following ones take a single hash each.
func NextEntries(startHash crypto.Hash, numHashes uint64, txs []transaction.Transaction) (Entries, error) {
	hash := startHash
	return NextEntriesMut(&hash, &numHashes, txs)
}

// NextEntriesMut is like NextEntries but moves *start to the hash of the last
// Entry and resets *numHashes.
func NextEntriesMut(start *crypto.Hash, numHashes *uint64, txs []transaction.Transaction) (Entries, error) {
	var sizeErr error

	size := func(txs []transaction.Transaction) uint64 {
		s, err := SerializedToBlobSize(txs)
		if err != nil {
			sizeErr = err
			return packet.BlobDataSize + 1
		}
		return s
	}

	convert := func(txs []transaction.Transaction) (Entry, error) {
		chunk := make([]transaction.Transaction, len(txs))
		copy(chunk, txs)
		return NewEntryMut(start, numHashes, chunk)
	}

	entries, err := SplitSerializableChunks(txs, packet.BlobDataSize, size, convert)
	if err != nil {
		if sizeErr != nil {
			return nil, sizeErr
		}
		return nil, err
	}

	return entries, nil
}

// NextEntryMut creates the Entry following *start after numHashes hashes and
// moves *start to its hash.
func NextEntryMut(start *crypto.Hash, numHashes uint64, txs []transaction.Transaction) (Entry, error) {
	n := numHashes
	return NewEntryMut(start, &n, txs)
}

// CreateTicks returns numTicks consecutive single-hash ticks following hash.
func CreateTicks(numTicks uint64, hash crypto.Hash) Entries {
	ticks := make(Entries, 0, numTicks)
	for i := uint64(0); i < numTicks; i++ {
		t, _ := NextEntryMut(&hash, 1, nil)
		ticks = append(ticks, t)
	}
	return ticks
}
