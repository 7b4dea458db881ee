package validator

import (
	"crypto/ecdsa"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/config"
	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/crypto/keys"
	"github.com/mosaicnetworks/poh/src/entry"
	"github.com/mosaicnetworks/poh/src/ledger"
	"github.com/mosaicnetworks/poh/src/packet"
	"github.com/mosaicnetworks/poh/src/recorder"
	"github.com/mosaicnetworks/poh/src/transaction"
)

const testTicksPerSlot = 16

func newTestConfig(t *testing.T) *config.Config {
	conf := config.NewTestConfig(t, logrus.DebugLevel)
	conf.SetDataDir(t.TempDir())
	conf.HashesPerTick = 0
	conf.TargetTickDuration = time.Millisecond
	conf.TicksPerSlot = testTicksPerSlot
	conf.NoService = true
	conf.Moniker = "test"
	return conf
}

func newTestValidator(t *testing.T, conf *config.Config) *Validator {
	v := NewValidator(conf)
	if err := v.Init(); err != nil {
		t.Fatal(err)
	}
	return v
}

func receive(t *testing.T, v *Validator) recorder.WorkingBankEntries {
	t.Helper()

	select {
	case wbe := <-v.Recorder.EntryCh():
		return wbe
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for entries")
	}
	return recorder.WorkingBankEntries{}
}

func TestSlotBank(t *testing.T) {
	wb := SlotBank(3, 64)
	if wb.Slot != 3 || wb.MinTickHeight != 192 || wb.MaxTickHeight != 256 {
		t.Fatalf("unexpected bank %v", wb)
	}
}

func TestStartSlot(t *testing.T) {
	v := newTestValidator(t, newTestConfig(t))
	defer v.Shutdown()

	wb, ok := v.startSlot()
	if !ok || wb != SlotBank(0, testTicksPerSlot) {
		t.Fatalf("slot 0 should be installed, got %v %v", wb, ok)
	}

	if _, ok := v.startSlot(); ok {
		t.Fatal("no bank should be installed while slot 0 is in progress")
	}

	for i := 0; i < testTicksPerSlot; i++ {
		v.Recorder.Tick(time.Now())
	}

	if _, ok := v.Recorder.WorkingBank(); ok {
		t.Fatal("slot 0 should be complete")
	}

	wb, ok = v.startSlot()
	if !ok || wb.Slot != 1 {
		t.Fatalf("slot 1 should be installed, got %v %v", wb, ok)
	}

	// Slot 1 completes and slots 2 and 3 pass without a bank.
	for i := 0; i < 3*testTicksPerSlot; i++ {
		v.Recorder.Tick(time.Now())
	}

	wb, ok = v.startSlot()
	if !ok || wb.Slot != 4 {
		t.Fatalf("slot 4 should be installed, got %v %v", wb, ok)
	}
	if v.nextSlot != 5 {
		t.Fatalf("next slot should be 5, not %d", v.nextSlot)
	}
}

func TestSubmit(t *testing.T) {
	conf := newTestConfig(t)
	v := newTestValidator(t, conf)
	defer v.Shutdown()

	tx, err := v.newTransaction(0)
	if err != nil {
		t.Fatal(err)
	}
	if !tx.VerifySignatures() {
		t.Fatal("transaction signature should verify")
	}
	if string(tx.Message.Data) != "test/0" {
		t.Fatalf("unexpected transaction data %q", tx.Message.Data)
	}

	if left := v.submit([]transaction.Transaction{tx}); len(left) != 1 {
		t.Fatal("transaction should stay pending without a working bank")
	}

	v.startSlot()
	v.Recorder.Tick(time.Now())

	tick := receive(t, v)
	if len(tick.Entries) != 1 || !tick.Entries[0].Entry.IsTick() {
		t.Fatalf("expected a tick, got %+v", tick)
	}

	if left := v.submit([]transaction.Transaction{tx}); len(left) != 0 {
		t.Fatal("submit should succeed in slot 0")
	}
	if v.submitted.Load() != 1 {
		t.Fatalf("submitted should be 1, not %d", v.submitted.Load())
	}

	rec := receive(t, v)
	if rec.Slot != 0 || len(rec.Entries) != 1 {
		t.Fatalf("unexpected batch %+v", rec)
	}

	e := rec.Entries[0].Entry
	if e.IsTick() || len(e.Transactions) != 1 {
		t.Fatalf("expected a transaction entry, got %+v", e)
	}
	if !e.Verify(tick.Entries[0].Entry.Hash) {
		t.Fatal("transaction entry should verify against the previous tick")
	}
}

func newPayloadTransaction(t *testing.T, v *Validator, size int) transaction.Transaction {
	tx, err := transaction.NewSignedTransaction(
		[]*ecdsa.PrivateKey{v.Config.Key},
		make([]byte, size),
		v.Recorder.LastHash(),
	)
	if err != nil {
		t.Fatal(err)
	}
	return tx
}

func TestSubmitPacksEntries(t *testing.T) {
	v := newTestValidator(t, newTestConfig(t))
	defer v.Shutdown()

	v.startSlot()
	v.Recorder.Tick(time.Now())
	receive(t, v)

	oversized := newPayloadTransaction(t, v, packet.BlobSize)
	pending := []transaction.Transaction{
		oversized,
		newPayloadTransaction(t, v, 30000),
		newPayloadTransaction(t, v, 30000),
		newPayloadTransaction(t, v, 30000),
	}

	// A transaction that cannot fit on its own is dropped.
	pending = v.submit(pending)
	if len(pending) != 3 {
		t.Fatalf("the oversized transaction should be dropped, %d pending", len(pending))
	}

	pending = v.submit(pending)
	if len(pending) != 1 {
		t.Fatalf("two transactions should fit in an entry, %d pending", len(pending))
	}

	wbe := receive(t, v)
	if len(wbe.Entries) != 1 || len(wbe.Entries[0].Entry.Transactions) != 2 {
		t.Fatalf("expected one entry with 2 transactions, got %+v", wbe)
	}
	if err := entry.CheckSize(wbe.Entries[0].Entry.Transactions); err != nil {
		t.Fatal(err)
	}

	pending = v.submit(pending)
	if len(pending) != 0 || v.submitted.Load() != 3 {
		t.Fatalf("all transactions should be submitted, %d pending, %d submitted", len(pending), v.submitted.Load())
	}
}

func TestQueueBounded(t *testing.T) {
	v := newTestValidator(t, newTestConfig(t))
	defer v.Shutdown()

	var pending []transaction.Transaction
	for i := 0; i < maxPendingTransactions+10; i++ {
		tx, err := v.newTransaction(uint64(i))
		if err != nil {
			t.Fatal(err)
		}
		pending = v.queue(pending, tx)
	}

	if len(pending) != maxPendingTransactions {
		t.Fatalf("pending should be capped at %d, not %d", maxPendingTransactions, len(pending))
	}
	if string(pending[0].Message.Data) != "test/10" {
		t.Fatalf("oldest transactions should be dropped first, got %q", pending[0].Message.Data)
	}
}

func TestInitKeyReusesKeyfile(t *testing.T) {
	conf := newTestConfig(t)
	conf.Store = true

	v := newTestValidator(t, conf)
	pub := keys.PublicKeyHex(&v.Config.Key.PublicKey)
	v.Shutdown()

	conf2 := newTestConfig(t)
	conf2.SetDataDir(conf.DataDir)

	v2 := newTestValidator(t, conf2)
	defer v2.Shutdown()

	if keys.PublicKeyHex(&v2.Config.Key.PublicKey) != pub {
		t.Fatal("the key saved in the data dir should be reused")
	}
}

func TestValidatorRun(t *testing.T) {
	conf := newTestConfig(t)
	conf.SubmitInterval = 2 * time.Millisecond

	v := newTestValidator(t, conf)

	errCh := make(chan error, 1)
	go func() {
		errCh <- v.Run()
	}()

	deadline := time.Now().Add(10 * time.Second)
	for {
		last, err := v.Store.LastCompleteSlot()
		if err == nil && last >= 2 && v.submitted.Load() >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timeout: last complete slot %d (%v), submitted %d", last, err, v.submitted.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	stats := v.GetStats()
	if stats["moniker"] != "test" || stats["last_complete_slot"] == "nil" {
		t.Fatalf("unexpected stats %v", stats)
	}

	last, err := v.Store.LastCompleteSlot()
	if err != nil {
		t.Fatal(err)
	}

	var prev crypto.Hash
	prevOK := false
	for s := uint64(0); s <= last; s++ {
		meta, err := v.Store.SlotMeta(s)
		if err != nil || !meta.Complete {
			prevOK = false
			continue
		}

		es, numTicks, err := v.GetSlot(s)
		if err != nil {
			t.Fatal(err)
		}
		if numTicks != testTicksPerSlot {
			t.Fatalf("slot %d should have %d ticks, not %d", s, testTicksPerSlot, numTicks)
		}

		if s == 0 {
			prev, prevOK = GenesisHash, true
		}
		if prevOK {
			if err := es.Check(prev); err != nil {
				t.Fatalf("slot %d: %v", s, err)
			}
		}

		prev, prevOK = es.LastHash(prev), true
	}

	v.Shutdown()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func writeSlots(t *testing.T, dir string, start crypto.Hash, numSlots int) crypto.Hash {
	store, err := ledger.NewBadgerStore(dir, common.NewTestEntry(t, "badger"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	hash := start
	for s := 0; s < numSlots; s++ {
		ticks := entry.CreateTicks(testTicksPerSlot, hash)
		if err := ledger.WriteEntries(store, uint64(s), ticks, true); err != nil {
			t.Fatal(err)
		}
		hash = ticks.LastHash(hash)
	}

	return hash
}

func TestBootstrap(t *testing.T) {
	conf := newTestConfig(t)
	conf.Bootstrap = true

	last := writeSlots(t, conf.DatabaseDir, GenesisHash, 2)

	v := newTestValidator(t, conf)
	defer v.Shutdown()

	if h := v.Recorder.TickHeight(); h != 2*testTicksPerSlot {
		t.Fatalf("tick height should be %d, not %d", 2*testTicksPerSlot, h)
	}
	if h := v.Recorder.LastHash(); h != last {
		t.Fatalf("last hash should be %v, not %v", last, h)
	}

	wb, ok := v.startSlot()
	if !ok || wb.Slot != 2 {
		t.Fatalf("slot 2 should be installed, got %v %v", wb, ok)
	}

	if _, err := os.Stat(filepath.Join(conf.DataDir, config.DefaultKeyfile)); err != nil {
		t.Fatalf("key should be saved: %v", err)
	}
}

func TestBootstrapEmpty(t *testing.T) {
	conf := newTestConfig(t)
	conf.Bootstrap = true

	v := newTestValidator(t, conf)
	defer v.Shutdown()

	if v.Recorder.TickHeight() != 0 || v.Recorder.LastHash() != GenesisHash {
		t.Fatal("chain should start from genesis")
	}
}

func TestBootstrapInvalidChain(t *testing.T) {
	conf := newTestConfig(t)
	conf.Bootstrap = true

	writeSlots(t, conf.DatabaseDir, crypto.HashBytes([]byte("not genesis")), 1)

	v := NewValidator(conf)
	err := v.Init()
	if err == nil {
		t.Fatal("bootstrap should fail")
	}
	if !strings.Contains(err.Error(), "verifying slot 0") {
		t.Fatalf("unexpected error: %v", err)
	}
}
