// Package poh implements the Proof-of-History hash chain.
//
// The chain is a sequence of SHA256 applications where the output of one hash
// is the input of the next. Because each hash depends on the previous one, the
// chain cannot be computed in parallel, and the number of hashes between two
// points of the chain is evidence that time has passed between them. Data is
// timestamped by mixing its digest into the chain, which proves the data
// existed before every subsequent hash.
package poh

import (
	"github.com/mosaicnetworks/poh/src/crypto"
)

// Entry is the result of closing a segment of the chain with a Tick or a
// Record. NumHashes counts every hash applied since the previous Entry,
// including the closing one.
type Entry struct {
	NumHashes uint64
	Hash      crypto.Hash
}

// Poh is a cursor on the hash chain. It is not safe for concurrent use.
type Poh struct {
	hash      crypto.Hash
	numHashes uint64
}

// NewPoh creates a cursor starting at hash with no pending hashes.
func NewPoh(hash crypto.Hash) *Poh {
	return &Poh{hash: hash}
}

// Hash advances the chain numHashes times.
func (p *Poh) Hash(numHashes uint64) {
	p.hash = Advance(p.hash, numHashes)
	p.numHashes += numHashes
}

// Record mixes mixin into the chain as the closing hash of the current
// segment.
func (p *Poh) Record(mixin crypto.Hash) Entry {
	p.hash = Mix(p.hash, mixin)
	return p.close()
}

// RecordUnmixed closes the current segment as a data entry that has nothing to
// mix in. The chain is not advanced, but the closing step is still counted so
// that the entry verifies like any other data entry.
func (p *Poh) RecordUnmixed() Entry {
	return p.close()
}

// Tick closes the current segment with one final plain hash.
func (p *Poh) Tick() Entry {
	p.hash = Advance(p.hash, 1)
	return p.close()
}

func (p *Poh) close() Entry {
	e := Entry{
		NumHashes: p.numHashes + 1,
		Hash:      p.hash,
	}
	p.numHashes = 0
	return e
}

// LastHash returns the current value of the chain.
func (p *Poh) LastHash() crypto.Hash {
	return p.hash
}

// PendingHashes returns the number of hashes applied since the last Tick or
// Record.
func (p *Poh) PendingHashes() uint64 {
	return p.numHashes
}

// Advance applies SHA256 n times starting from state.
func Advance(state crypto.Hash, n uint64) crypto.Hash {
	for i := uint64(0); i < n; i++ {
		state = crypto.HashBytes(state[:])
	}
	return state
}

// Mix returns the hash of state concatenated with data.
func Mix(state crypto.Hash, data crypto.Hash) crypto.Hash {
	return crypto.Hashv(state[:], data[:])
}
