// Package transaction defines the transaction records that are timestamped by
// the Proof-of-History chain.
//
// The chain does not interpret transactions. It only needs their first
// signature, which binds a unique identity to each transaction, and their
// serialized size, which decides how they are packed into entries.
package transaction

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/crypto"
	"github.com/mosaicnetworks/poh/src/crypto/keys"
)

// Signature is a fixed-size ECDSA signature.
type Signature [keys.SignatureSize]byte

// String returns the hex encoding of the signature.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// Message is the signed part of a transaction. AccountKeys[i] is the
// uncompressed public key expected to produce Signatures[i].
type Message struct {
	AccountKeys     [][]byte
	RecentBlockhash crypto.Hash
	Data            []byte
}

// Marshal returns the msgpack encoding of the message.
func (m *Message) Marshal() ([]byte, error) {
	return common.MsgpackEncode(m)
}

// Hash returns the digest that signatures are computed over.
func (m *Message) Hash() (crypto.Hash, error) {
	b, err := m.Marshal()
	if err != nil {
		return crypto.Hash{}, err
	}
	return crypto.HashBytes(b), nil
}

// Transaction is a message and the signatures of its signers.
type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewUnsignedTransaction creates a transaction that carries no signature.
func NewUnsignedTransaction(data []byte, recentBlockhash crypto.Hash) Transaction {
	return Transaction{
		Message: Message{
			RecentBlockhash: recentBlockhash,
			Data:            data,
		},
	}
}

// NewSignedTransaction creates a transaction signed by every key in signers,
// in order.
func NewSignedTransaction(signers []*ecdsa.PrivateKey, data []byte, recentBlockhash crypto.Hash) (Transaction, error) {
	tx := NewUnsignedTransaction(data, recentBlockhash)
	for _, s := range signers {
		tx.Message.AccountKeys = append(tx.Message.AccountKeys, keys.FromPublicKey(&s.PublicKey))
	}

	if err := tx.Sign(signers); err != nil {
		return Transaction{}, err
	}

	return tx, nil
}

// Sign replaces the transaction's signatures with fresh ones from signers,
// which must match the message's AccountKeys.
func (tx *Transaction) Sign(signers []*ecdsa.PrivateKey) error {
	if len(signers) != len(tx.Message.AccountKeys) {
		return fmt.Errorf("%d signers for %d account keys", len(signers), len(tx.Message.AccountKeys))
	}

	h, err := tx.Message.Hash()
	if err != nil {
		return err
	}

	sigs := make([]Signature, len(signers))
	for i, s := range signers {
		sig, err := keys.SignBytes(s, h[:])
		if err != nil {
			return err
		}
		sigs[i] = Signature(sig)
	}

	tx.Signatures = sigs

	return nil
}

// VerifySignatures checks every signature against the corresponding account
// key. A transaction without signatures does not verify.
func (tx *Transaction) VerifySignatures() bool {
	if len(tx.Signatures) == 0 || len(tx.Signatures) > len(tx.Message.AccountKeys) {
		return false
	}

	h, err := tx.Message.Hash()
	if err != nil {
		return false
	}

	for i, sig := range tx.Signatures {
		pub := keys.ToPublicKey(tx.Message.AccountKeys[i])
		if pub == nil {
			return false
		}
		if !keys.VerifyBytes(pub, h[:], sig[:]) {
			return false
		}
	}

	return true
}

// FirstSignature returns the signature that identifies the transaction.
func (tx *Transaction) FirstSignature() (Signature, bool) {
	if len(tx.Signatures) == 0 {
		return Signature{}, false
	}
	return tx.Signatures[0], true
}

// Marshal returns the msgpack encoding of the transaction.
func (tx *Transaction) Marshal() ([]byte, error) {
	return common.MsgpackEncode(tx)
}

// Unmarshal ...
func (tx *Transaction) Unmarshal(data []byte) error {
	return common.MsgpackDecode(data, tx)
}

// SerializedSize returns the number of bytes in the msgpack encoding of the
// transaction.
func (tx *Transaction) SerializedSize() (uint64, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}
	return uint64(len(b)), nil
}
