package recorder

import "fmt"

// RecordErrType ...
type RecordErrType uint32

const (
	// NoWorkingBank is returned when no block is being produced.
	NoWorkingBank RecordErrType = iota
	// WrongSlot is returned when the record targets another block than the
	// one being produced.
	WrongSlot
	// MaxHeightReached is returned when the targeted block is already
	// complete.
	MaxHeightReached
	// MinHeightNotReached is returned when the chain has not yet reached the
	// start of the working bank's tick range.
	MinHeightNotReached
	// InvalidRecord is returned when the record carries no transactions.
	InvalidRecord
)

// RecordError is returned when the Recorder refuses to record transactions.
// These rejections are part of normal operation. The caller is expected to
// retry in the next block.
type RecordError struct {
	errType RecordErrType
	slot    uint64
}

// NewRecordError ...
func NewRecordError(errType RecordErrType, slot uint64) RecordError {
	return RecordError{
		errType: errType,
		slot:    slot,
	}
}

// Type ...
func (e RecordError) Type() RecordErrType {
	return e.errType
}

// Error ...
func (e RecordError) Error() string {
	m := ""
	switch e.errType {
	case NoWorkingBank:
		m = "No Working Bank"
	case WrongSlot:
		m = "Wrong Slot"
	case MaxHeightReached:
		m = "Max Height Reached"
	case MinHeightNotReached:
		m = "Min Height Not Reached"
	case InvalidRecord:
		m = "Invalid Record"
	}

	return fmt.Sprintf("record in slot %d: %s", e.slot, m)
}

// IsRecordErr checks that an error is of type RecordError and that its code
// matches the provided code.
func IsRecordErr(err error, t RecordErrType) bool {
	recErr, ok := err.(RecordError)
	return ok && recErr.errType == t
}
