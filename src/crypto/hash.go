package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes in a Hash.
const HashSize = sha256.Size

// Hash is a SHA256 digest. It is the value carried along the Proof-of-History
// chain.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash.
var ZeroHash Hash

// SHA256 returns the SHA256 hash of the data.
func SHA256(data []byte) []byte {
	hasher := sha256.New()
	hasher.Write(data)
	hash := hasher.Sum(nil)
	return hash
}

// SimpleHashFromTwoHashes returns the SHA256 hash of the concatenation of left
// and right data.
func SimpleHashFromTwoHashes(left []byte, right []byte) []byte {
	var hasher = sha256.New()
	hasher.Write(left)
	hasher.Write(right)
	return hasher.Sum(nil)
}

// HashBytes returns the SHA256 Hash of data.
func HashBytes(data []byte) Hash {
	return sha256.Sum256(data)
}

// Hashv returns the SHA256 Hash of the concatenation of all the values.
func Hashv(values ...[]byte) Hash {
	hasher := sha256.New()
	for _, v := range values {
		hasher.Write(v)
	}
	var h Hash
	hasher.Sum(h[:0])
	return h
}

// HashFromBytes copies a 32-byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("invalid hash length %d, need %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// IsZero ...
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// String returns the lowercase hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}
