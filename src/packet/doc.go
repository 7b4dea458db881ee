// Package packet defines the Blob, the bounded-size network unit that carries
// serialized entries between the chain producer and the ledger.
package packet
