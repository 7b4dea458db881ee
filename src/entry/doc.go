// Package entry implements the Entry, the unit of the Proof-of-History ledger.
//
// An Entry records that NumHashes hashes were applied to the chain since the
// previous Entry, and that Transactions were observed before Hash was
// produced. An Entry without transactions is a tick: it only marks the passage
// of time. An Entry with transactions mixes the digest of their first
// signatures into the last hash, so the transactions cannot be moved to a
// different position in the chain or reordered within the Entry without
// breaking verification.
//
// Entries travel in Blobs. ToBlobs packs an ordered list of entries into as
// few Blobs as possible without splitting an Entry, and
// ReconstructEntriesFromBlobs performs the inverse operation.
package entry
