package entry

import (
	"math"

	"github.com/mosaicnetworks/poh/src/common"
	"github.com/mosaicnetworks/poh/src/packet"
)

// ToBlobs packs the sequence into as few Blobs as possible, in order, each
// carrying one or more whole entries. Slot, Index and Flags are left for the
// caller to stamp.
func (es Entries) ToBlobs() ([]*packet.Blob, error) {
	return SplitSerializableChunks(
		[]Entry(es),
		packet.BlobDataSize,
		serializedSize,
		toBlob,
	)
}

// ToSingleEntryBlobs creates one Blob per Entry.
func (es Entries) ToSingleEntryBlobs() ([]*packet.Blob, error) {
	blobs := make([]*packet.Blob, 0, len(es))
	for i := range es {
		b, err := toBlob(es[i : i+1])
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

// ReconstructEntriesFromBlobs decodes the entries carried by blobs, in order,
// and counts the ticks among them. A Blob whose payload does not decode
// produces a DecodeError.
func ReconstructEntriesFromBlobs(blobs []*packet.Blob) (Entries, uint64, error) {
	var entries Entries
	var numTicks uint64

	for i, b := range blobs {
		var es Entries
		if err := common.MsgpackDecode(b.Payload(), &es); err != nil {
			return nil, 0, &DecodeError{Blob: i, Err: err}
		}

		numTicks += es.NumTicks()
		entries = append(entries, es...)
	}

	return entries, numTicks, nil
}

func serializedSize(es []Entry) uint64 {
	b, err := common.MsgpackEncode(es)
	if err != nil {
		return math.MaxUint64
	}
	return uint64(len(b))
}

func toBlob(es []Entry) (*packet.Blob, error) {
	b, err := common.MsgpackEncode(es)
	if err != nil {
		return nil, err
	}
	return packet.NewBlob(b)
}
