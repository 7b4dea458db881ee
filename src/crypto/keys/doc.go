// Package keys implements the public key cryptography used to sign and verify
// transactions.
//
// Keys are ECDSA key-pairs on the secp256k1 curve, the curve used by Bitcoin
// and Ethereum. A transaction signature is the fixed-size concatenation of the
// R and S values, 32 bytes each. Only the first signature of a transaction
// takes part in the Proof-of-History chain, so the encoding of signatures is
// part of the chain's wire format and must not change.
package keys
