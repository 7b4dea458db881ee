package entry

import (
	"fmt"

	"github.com/mosaicnetworks/poh/src/crypto"
)

// EntrySizeError is returned when the transactions given to an Entry would not
// fit in a single Blob.
type EntrySizeError struct {
	Size uint64
	Max  uint64
}

func (e *EntrySizeError) Error() string {
	return fmt.Sprintf("entry of %d bytes exceeds blob capacity of %d bytes", e.Size, e.Max)
}

// OversizedItemError is returned by the chunking functions when an item does
// not fit in a chunk on its own.
type OversizedItemError struct {
	Index int
	Max   uint64
}

func (e *OversizedItemError) Error() string {
	return fmt.Sprintf("item %d does not fit in %d bytes", e.Index, e.Max)
}

// HashMismatchError is returned when an Entry's hash cannot be reproduced from
// the hash preceding it. Expected is the recomputed hash and Actual the hash
// carried by the Entry.
type HashMismatchError struct {
	Expected crypto.Hash
	Actual   crypto.Hash
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("next hash is invalid, expected: %v, actual: %v", e.Expected, e.Actual)
}

// VerificationError locates the first invalid Entry of a sequence. Previous is
// the hash the Entry links to, Expected the hash recomputed from it and Actual
// the Entry's own hash.
type VerificationError struct {
	Position        int
	Previous        crypto.Hash
	Expected        crypto.Hash
	Actual          crypto.Hash
	NumTransactions int
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("entry %d invalid, previous: %v, expected: %v, actual: %v, num txs: %d",
		e.Position,
		e.Previous,
		e.Expected,
		e.Actual,
		e.NumTransactions)
}

// Unwrap returns the HashMismatchError of the invalid Entry.
func (e *VerificationError) Unwrap() error {
	return &HashMismatchError{Expected: e.Expected, Actual: e.Actual}
}

// DecodeError is returned when a Blob's payload cannot be decoded into
// entries. It indicates malformed input rather than an invalid chain.
type DecodeError struct {
	Blob int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("blob %d: decoding entries: %v", e.Blob, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
