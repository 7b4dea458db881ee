package keys

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
)

// PrivateKeySize is the length of an encoded private key.
const PrivateKeySize = 32

// GenerateECDSAKey creates a new secp256k1 key-pair.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(Curve(), rand.Reader)
}

// EncodePrivateKey returns the big-endian D value of the key, left-padded to
// PrivateKeySize bytes.
func EncodePrivateKey(priv *ecdsa.PrivateKey) [PrivateKeySize]byte {
	var d [PrivateKeySize]byte
	priv.D.FillBytes(d[:])
	return d
}

// DecodePrivateKey rebuilds the key-pair from an encoded D value.
func DecodePrivateKey(d []byte) (*ecdsa.PrivateKey, error) {
	if len(d) != PrivateKeySize {
		return nil, fmt.Errorf("wrong private key length: got %d, want %d", len(d), PrivateKeySize)
	}

	k := new(big.Int).SetBytes(d)
	if k.Sign() == 0 || k.Cmp(secp256k1N) >= 0 {
		return nil, fmt.Errorf("private key out of range")
	}

	priv := &ecdsa.PrivateKey{D: k}
	priv.PublicKey.Curve = Curve()
	priv.PublicKey.X, priv.PublicKey.Y = Curve().ScalarBaseMult(d)

	return priv, nil
}
