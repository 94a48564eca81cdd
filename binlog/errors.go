package binlog

import (
	"fmt"

	"github.com/go-mysql-org/go-mysql/replication"
)

// FormatError Structural failure: bad magic, truncated header, or an event
// that does not fit inside the buffer. Fatal for the whole parse.
type FormatError struct {
	// Offset Absolute byte offset in the file where decoding failed
	Offset int64
	// Msg Human readable description of the failure
	Msg string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("binlog format error at offset %d: %s", e.Offset, e.Msg)
}

// DecodeError Malformed length-prefixed fields inside an event body.
// Fatal for the whole parse, same as FormatError.
type DecodeError struct {
	// Offset Absolute byte offset of the owning event header
	Offset int64
	// EventType Type code of the event whose body failed to decode
	EventType replication.EventType
	// Msg Human readable description of the failure
	Msg string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("binlog decode error in %s event at offset %d: %s", e.EventType, e.Offset, e.Msg)
}
