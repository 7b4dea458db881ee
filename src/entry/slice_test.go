package entry

import (
	"errors"
	"testing"

	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/transaction"
)

// makeChain creates a chain alternating ticks and single-transaction entries.
func makeChain(t *testing.T, start crypto.Hash, n int) Entries {
	key := newKey(t)

	hash := start
	chain := make(Entries, 0, n)
	for i := 0; i < n; i++ {
		var txs []transaction.Transaction
		if i%2 == 1 {
			txs = []transaction.Transaction{newTx(t, key, "tx", start)}
		}

		e, err := NextEntryMut(&hash, uint64(i%4+1), txs)
		if err != nil {
			t.Fatal(err)
		}
		chain = append(chain, e)
	}

	return chain
}

func TestVerifySlice(t *testing.T) {
	zero := crypto.ZeroHash
	one := crypto.HashBytes(zero[:])

	if !(Entries{}).Verify(zero) {
		t.Fatal("empty sequence should verify")
	}
	if !(Entries{NewTick(0, zero)}).Verify(zero) {
		t.Fatal("degenerate singleton should verify")
	}
	if (Entries{NewTick(0, zero)}).Verify(one) {
		t.Fatal("degenerate singleton should not verify against another hash")
	}

	degenerate := newEntry(t, zero, 0, nil)
	if !(Entries{degenerate, degenerate}).Verify(zero) {
		t.Fatal("degenerate pair should verify")
	}

	bad := Entries{degenerate, degenerate}
	bad[1].Hash = one
	if bad.Verify(zero) {
		t.Fatal("corrupted pair should not verify")
	}
}

func TestVerifyFreshChain(t *testing.T) {
	start := crypto.HashBytes([]byte("start"))

	chain := makeChain(t, start, 50)

	if err := chain.Check(start); err != nil {
		t.Fatal(err)
	}
	if chain.Verify(crypto.ZeroHash) {
		t.Fatal("chain should not verify from another start")
	}
}

func TestVerifyCorruptedChain(t *testing.T) {
	start := crypto.HashBytes([]byte("start"))

	for _, pos := range []int{0, 1, 17, 30, 49} {
		chain := makeChain(t, start, 50)
		chain[pos].Hash = crypto.HashBytes([]byte("corrupt"))

		err := chain.Check(start)

		var verr *VerificationError
		if !errors.As(err, &verr) {
			t.Fatalf("corruption at %d: expected a VerificationError, got %v", pos, err)
		}
		if verr.Position != pos {
			t.Fatalf("corruption at %d reported at %d", pos, verr.Position)
		}
		if verr.Actual != chain[pos].Hash {
			t.Fatalf("Actual should be the corrupted hash")
		}
		if verr.NumTransactions != len(chain[pos].Transactions) {
			t.Fatalf("NumTransactions should be %d, not %d", len(chain[pos].Transactions), verr.NumTransactions)
		}
	}
}

func TestVerifyReportsFirstFailure(t *testing.T) {
	start := crypto.HashBytes([]byte("start"))

	chain := makeChain(t, start, 64)
	chain[10].NumHashes++
	chain[40].NumHashes++
	chain[63].NumHashes++

	err := chain.Check(start)

	var verr *VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a VerificationError, got %v", err)
	}
	if verr.Position != 10 {
		t.Fatalf("first failure is at 10, reported at %d", verr.Position)
	}

	if verr.Previous != chain[9].Hash {
		t.Fatalf("Previous should be the hash of entry 9")
	}
	if verr.Actual != chain[10].Hash {
		t.Fatalf("Actual should be the stored hash of entry 10")
	}
	recomputed := NextHash(chain[9].Hash, chain[10].NumHashes, chain[10].Transactions)
	if verr.Expected != recomputed {
		t.Fatalf("Expected should be the recomputed hash %v, not %v", recomputed, verr.Expected)
	}
	if verr.Expected == verr.Actual {
		t.Fatal("Expected and Actual should differ")
	}

	var mismatch *HashMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("VerificationError should wrap a HashMismatchError")
	}
	if mismatch.Expected != recomputed || mismatch.Actual != chain[10].Hash {
		t.Fatalf("unexpected wrapped mismatch %v", mismatch)
	}
}
