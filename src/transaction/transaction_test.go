package transaction

import (
	"crypto/ecdsa"
	"testing"

	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/crypto/keys"
)

func newKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestSignedTransaction(t *testing.T) {
	key := newKey(t)
	blockhash := crypto.HashBytes([]byte("blockhash"))

	tx, err := NewSignedTransaction([]*ecdsa.PrivateKey{key}, []byte("transfer 1"), blockhash)
	if err != nil {
		t.Fatal(err)
	}

	if len(tx.Signatures) != 1 {
		t.Fatalf("transaction should have 1 signature, not %d", len(tx.Signatures))
	}

	if !tx.VerifySignatures() {
		t.Fatal("signatures should verify")
	}

	sig, ok := tx.FirstSignature()
	if !ok || sig != tx.Signatures[0] {
		t.Fatal("FirstSignature should return the first signature")
	}
}

func TestTamperedTransaction(t *testing.T) {
	key := newKey(t)

	tx, err := NewSignedTransaction([]*ecdsa.PrivateKey{key}, []byte("transfer 1"), crypto.ZeroHash)
	if err != nil {
		t.Fatal(err)
	}

	tx.Message.Data = []byte("transfer 1000")

	if tx.VerifySignatures() {
		t.Fatal("tampered message should not verify")
	}
}

func TestMultipleSigners(t *testing.T) {
	k1, k2 := newKey(t), newKey(t)

	tx, err := NewSignedTransaction([]*ecdsa.PrivateKey{k1, k2}, []byte("multisig"), crypto.ZeroHash)
	if err != nil {
		t.Fatal(err)
	}

	if !tx.VerifySignatures() {
		t.Fatal("signatures should verify")
	}

	tx.Signatures[0], tx.Signatures[1] = tx.Signatures[1], tx.Signatures[0]
	if tx.VerifySignatures() {
		t.Fatal("swapped signatures should not verify")
	}

	if err := tx.Sign([]*ecdsa.PrivateKey{k1}); err == nil {
		t.Fatal("Sign should reject a signer count that does not match")
	}
}

func TestUnsignedTransaction(t *testing.T) {
	tx := NewUnsignedTransaction([]byte("data"), crypto.ZeroHash)

	if _, ok := tx.FirstSignature(); ok {
		t.Fatal("unsigned transaction should not have a first signature")
	}
	if tx.VerifySignatures() {
		t.Fatal("unsigned transaction should not verify")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	key := newKey(t)

	tx, err := NewSignedTransaction([]*ecdsa.PrivateKey{key}, []byte("payload"), crypto.HashBytes([]byte("x")))
	if err != nil {
		t.Fatal(err)
	}

	b, err := tx.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	size, err := tx.SerializedSize()
	if err != nil {
		t.Fatal(err)
	}
	if size != uint64(len(b)) {
		t.Fatalf("SerializedSize should be %d, not %d", len(b), size)
	}

	var tx2 Transaction
	if err := tx2.Unmarshal(b); err != nil {
		t.Fatal(err)
	}

	if !tx2.VerifySignatures() {
		t.Fatal("decoded transaction should verify")
	}
	if tx2.Signatures[0] != tx.Signatures[0] {
		t.Fatal("decoded signature differs")
	}
}
