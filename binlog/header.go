package binlog

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-mysql-org/go-mysql/replication"
)

// EventHeaderSize Fixed size of every binlog event header in bytes
const EventHeaderSize = 19

// EventHeader is the fixed 19-byte record preceding each event body.
// https://mariadb.com/kb/en/2-binlog-event-header/
type EventHeader struct {
	// Position Absolute byte offset of this header in the file
	Position int64
	// Timestamp Event timestamp in seconds since epoch
	Timestamp uint32
	// EventType Binlog event type code
	EventType replication.EventType
	// EventLength Total event size, header (19) plus body
	EventLength uint32
	// NextEventPosition Absolute offset of the next event, 0 marks the end
	NextEventPosition uint32
}

// End returns the absolute offset one past the last byte of the event.
func (h EventHeader) End() int64 {
	return h.Position + int64(h.EventLength)
}

// decodeEventHeader decodes one 19-byte header located at pos.
// Layout: uint32 timestamp, uint8 type, 4 reserved bytes, uint32 event
// length, uint32 next event position, 2 reserved bytes, all little-endian.
func decodeEventHeader(data []byte, pos int64) (EventHeader, error) {
	if len(data) < EventHeaderSize {
		return EventHeader{}, &FormatError{Offset: pos, Msg: "truncated event header"}
	}
	h := EventHeader{
		Position:          pos,
		Timestamp:         binary.LittleEndian.Uint32(data[0:4]),
		EventType:         replication.EventType(data[4]),
		EventLength:       binary.LittleEndian.Uint32(data[9:13]),
		NextEventPosition: binary.LittleEndian.Uint32(data[13:17]),
	}
	if h.EventLength < EventHeaderSize {
		return EventHeader{}, &FormatError{
			Offset: pos,
			Msg:    fmt.Sprintf("event length %d is smaller than the header size", h.EventLength),
		}
	}
	if h.NextEventPosition != 0 && int64(h.NextEventPosition) <= pos {
		return EventHeader{}, &FormatError{
			Offset: pos,
			Msg:    fmt.Sprintf("next event position %d does not advance past %d", h.NextEventPosition, pos),
		}
	}
	return h, nil
}

// indexHeaders walks the buffer once and returns every event header in
// file order. The walk starts right after the 4-byte magic signature and
// stops at a zero next-event position or when fewer than 19 bytes remain.
func indexHeaders(data []byte) ([]EventHeader, error) {
	if len(data) < len(replication.BinLogFileHeader) || !bytes.Equal(data[:len(replication.BinLogFileHeader)], replication.BinLogFileHeader) {
		return nil, &FormatError{Offset: 0, Msg: "invalid binlog magic signature"}
	}
	var headers []EventHeader
	position := int64(len(replication.BinLogFileHeader))
	dataLen := int64(len(data))
	for position+EventHeaderSize <= dataLen {
		header, err := decodeEventHeader(data[position:position+EventHeaderSize], position)
		if err != nil {
			return nil, err
		}
		headers = append(headers, header)
		if header.NextEventPosition == 0 {
			break
		}
		position = int64(header.NextEventPosition)
	}
	return headers, nil
}
