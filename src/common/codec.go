package common

import (
	"github.com/ugorji/go/codec"
)

var (
	msgpackHandle = newMsgpackHandle()
	jsonHandle    = newJSONHandle()
)

// The msgpack handle is used for everything that goes on the wire. Structs are
// encoded as arrays and byte slices as msgpack binaries, so the output only
// depends on field order and values.
func newMsgpackHandle() *codec.MsgpackHandle {
	mh := new(codec.MsgpackHandle)
	mh.WriteExt = true
	mh.StructToArray = true
	mh.Canonical = true
	return mh
}

func newJSONHandle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	return jh
}

// MsgpackEncode returns the msgpack encoding of v.
func MsgpackEncode(v interface{}) ([]byte, error) {
	var b []byte
	enc := codec.NewEncoderBytes(&b, msgpackHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b, nil
}

// MsgpackDecode decodes data into v, which must be a pointer.
func MsgpackDecode(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, msgpackHandle)
	return dec.Decode(v)
}

// JSONEncode returns the canonical JSON encoding of v.
func JSONEncode(v interface{}) ([]byte, error) {
	var b []byte
	enc := codec.NewEncoderBytes(&b, jsonHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return b, nil
}

// JSONDecode decodes JSON data into v, which must be a pointer.
func JSONDecode(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, jsonHandle)
	return dec.Decode(v)
}
