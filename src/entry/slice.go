package entry

import (
	"math"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mosaicnetworks/poh/src/crypto"
)

// Entries is a sequence of consecutive entries.
type Entries []Entry

// Verify returns true if every Entry links to the one before it, the first one
// linking to startHash. An empty sequence is valid.
func (es Entries) Verify(startHash crypto.Hash) bool {
	return es.Check(startHash) == nil
}

// Check verifies the sequence like Verify and returns a VerificationError
// locating the first invalid Entry.
//
// The links are checked in parallel, each worker taking a contiguous range of
// the sequence. A worker stops as soon as an earlier failure is known, so the
// reported Entry is always the first invalid one.
func (es Entries) Check(startHash crypto.Hash) error {
	if len(es) == 0 {
		return nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(es) {
		workers = len(es)
	}
	span := (len(es) + workers - 1) / workers

	var firstBad atomic.Int64
	firstBad.Store(math.MaxInt64)

	errs := make([]error, workers)

	var g errgroup.Group
	g.SetLimit(workers)

	for w := 0; w < workers; w++ {
		w := w
		from := w * span
		to := from + span
		if to > len(es) {
			to = len(es)
		}

		g.Go(func() error {
			for i := from; i < to; i++ {
				if int64(i) > firstBad.Load() {
					return nil
				}

				prev := startHash
				if i > 0 {
					prev = es[i-1].Hash
				}

				if err := es[i].CheckHash(prev); err != nil {
					mismatch := err.(*HashMismatchError)
					errs[w] = &VerificationError{
						Position:        i,
						Previous:        prev,
						Expected:        mismatch.Expected,
						Actual:          mismatch.Actual,
						NumTransactions: len(es[i].Transactions),
					}
					lowerFirstBad(&firstBad, int64(i))
					return errs[w]
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err == nil {
		return nil
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	return nil
}

func lowerFirstBad(v *atomic.Int64, i int64) {
	for {
		cur := v.Load()
		if i >= cur || v.CompareAndSwap(cur, i) {
			return
		}
	}
}

// NumTicks returns the number of ticks in the sequence.
func (es Entries) NumTicks() uint64 {
	var n uint64
	for i := range es {
		if es[i].IsTick() {
			n++
		}
	}
	return n
}

// LastHash returns the hash of the last Entry, or fallback if the sequence is
// empty.
func (es Entries) LastHash(fallback crypto.Hash) crypto.Hash {
	if len(es) == 0 {
		return fallback
	}
	return es[len(es)-1].Hash
}
