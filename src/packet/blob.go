package packet

import (
	"fmt"

	"github.com/mosaicnetworks/poh/src/common"
)

const (
	// BlobSize is the maximum size of a Blob on the wire.
	BlobSize = 64*1024 - 128

	// BlobHeaderSize is the space reserved for the Blob's header fields.
	BlobHeaderSize = 64

	// BlobDataSize is the maximum size of a Blob's payload.
	BlobDataSize = BlobSize - BlobHeaderSize
)

// BlobFlags ...
type BlobFlags uint32

const (
	// BlobFlagLastInSlot marks the final Blob of a slot.
	BlobFlagLastInSlot BlobFlags = 1 << iota
)

// Blob is the size-bounded unit in which entries are transmitted and stored.
// Data holds the serialized entries, Size the number of meaningful bytes in
// Data.
type Blob struct {
	Slot  uint64
	Index uint64
	Flags BlobFlags
	Size  uint64
	Data  []byte
}

// NewBlob creates a Blob carrying payload. It fails if the payload does not
// fit in BlobDataSize.
func NewBlob(payload []byte) (*Blob, error) {
	if len(payload) > BlobDataSize {
		return nil, fmt.Errorf("blob payload of %d bytes exceeds %d", len(payload), BlobDataSize)
	}

	return &Blob{
		Size: uint64(len(payload)),
		Data: payload,
	}, nil
}

// Payload returns the meaningful part of Data. A Size that overruns Data is
// clamped.
func (b *Blob) Payload() []byte {
	if b.Size > uint64(len(b.Data)) {
		return b.Data
	}
	return b.Data[:b.Size]
}

// IsLastInSlot ...
func (b *Blob) IsLastInSlot() bool {
	return b.Flags&BlobFlagLastInSlot != 0
}

// SetLastInSlot ...
func (b *Blob) SetLastInSlot() {
	b.Flags |= BlobFlagLastInSlot
}

// Key returns the string representation of the Blob's position in the ledger.
func (b *Blob) Key() string {
	return fmt.Sprintf("%d/%d", b.Slot, b.Index)
}

// Marshal returns the msgpack encoding of the Blob, header included.
func (b *Blob) Marshal() ([]byte, error) {
	return common.MsgpackEncode(b)
}

// Unmarshal ...
func (b *Blob) Unmarshal(data []byte) error {
	return common.MsgpackDecode(data, b)
}
