package keys

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"
)

// SignatureSize is the length of an encoded signature: R and S, 32 bytes each.
const SignatureSize = 64

// Sign signs the data with the private key and the built-in pseudo-random
// generator rand.Reader. S is normalized to the lower half of the curve order
// so that a given signature has a single valid encoding.
func Sign(priv *ecdsa.PrivateKey, data []byte) (r, s *big.Int, err error) {
	r, s, err = ecdsa.Sign(rand.Reader, priv, data)
	if err != nil {
		return nil, nil, err
	}
	if s.Cmp(secp256k1halfN) > 0 {
		s = new(big.Int).Sub(secp256k1N, s)
	}
	return r, s, nil
}

// Verify verifies that a signature represented by r and s values, is a valid
// signature of the data by an owner of the private key associated with the
// provided public key.
func Verify(pub *ecdsa.PublicKey, data []byte, r, s *big.Int) bool {
	if s.Cmp(secp256k1halfN) > 0 {
		return false
	}
	return ecdsa.Verify(pub, data, r, s)
}

// EncodeSignature returns the fixed-size encoding of a signature.
func EncodeSignature(r, s *big.Int) [SignatureSize]byte {
	var sig [SignatureSize]byte
	r.FillBytes(sig[:SignatureSize/2])
	s.FillBytes(sig[SignatureSize/2:])
	return sig
}

// DecodeSignature parses a signature produced by EncodeSignature.
func DecodeSignature(sig []byte) (r, s *big.Int, err error) {
	if len(sig) != SignatureSize {
		return nil, nil, fmt.Errorf("wrong signature length: got %d, want %d", len(sig), SignatureSize)
	}
	r = new(big.Int).SetBytes(sig[:SignatureSize/2])
	s = new(big.Int).SetBytes(sig[SignatureSize/2:])
	return r, s, nil
}

// SignBytes is a convenience wrapper around Sign and EncodeSignature.
func SignBytes(priv *ecdsa.PrivateKey, data []byte) ([SignatureSize]byte, error) {
	r, s, err := Sign(priv, data)
	if err != nil {
		return [SignatureSize]byte{}, err
	}
	return EncodeSignature(r, s), nil
}

// VerifyBytes is a convenience wrapper around DecodeSignature and Verify.
func VerifyBytes(pub *ecdsa.PublicKey, data []byte, sig []byte) bool {
	r, s, err := DecodeSignature(sig)
	if err != nil {
		return false
	}
	return Verify(pub, data, r, s)
}
