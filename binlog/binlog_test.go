package binlog

import (
	"encoding/binary"

	"github.com/go-mysql-org/go-mysql/replication"
)

// testBinlog builds synthetic binlog buffers event by event, tracking
// where each event starts and ends so tests can assert provenance
// offsets without hardcoding byte positions.
type testBinlog struct {
	buf    []byte
	starts []int64
	ends   []int64
}

func newTestBinlog() *testBinlog {
	return &testBinlog{buf: append([]byte(nil), replication.BinLogFileHeader...)}
}

// add appends one event with a well-formed header chained to the next
// offset, the way the server writes them.
func (tb *testBinlog) add(eventType replication.EventType, timestamp uint32, body []byte) *testBinlog {
	pos := int64(len(tb.buf))
	length := uint32(EventHeaderSize + len(body))
	header := make([]byte, EventHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], timestamp)
	header[4] = byte(eventType)
	binary.LittleEndian.PutUint32(header[9:13], length)
	binary.LittleEndian.PutUint32(header[13:17], uint32(pos)+length)
	tb.buf = append(tb.buf, header...)
	tb.buf = append(tb.buf, body...)
	tb.starts = append(tb.starts, pos)
	tb.ends = append(tb.ends, pos+int64(length))
	return tb
}

// addRaw appends one header with explicit length and next-position
// fields for malformed-input tests.
func (tb *testBinlog) addRaw(eventType replication.EventType, eventLength, nextPosition uint32, body []byte) *testBinlog {
	pos := int64(len(tb.buf))
	header := make([]byte, EventHeaderSize)
	header[4] = byte(eventType)
	binary.LittleEndian.PutUint32(header[9:13], eventLength)
	binary.LittleEndian.PutUint32(header[13:17], nextPosition)
	tb.buf = append(tb.buf, header...)
	tb.buf = append(tb.buf, body...)
	tb.starts = append(tb.starts, pos)
	tb.ends = append(tb.ends, pos+int64(eventLength))
	return tb
}

func (tb *testBinlog) bytes() []byte { return tb.buf }

// testChecksum stands in for the CRC32 the server appends to each body.
var testChecksum = []byte{0xde, 0xad, 0xbe, 0xef}

func tableMapBody(tableID uint64, db, table string) []byte {
	var id [8]byte
	binary.LittleEndian.PutUint64(id[:], tableID)
	body := append([]byte(nil), id[:6]...)
	body = append(body, 0, 0) // flags
	body = append(body, byte(len(db)))
	body = append(body, db...)
	body = append(body, 0)
	body = append(body, byte(len(table)))
	body = append(body, table...)
	body = append(body, 0)
	// Column metadata would follow here; the decoder never reads it.
	body = append(body, testChecksum...)
	return body
}

func queryEventBody(statusVars []byte, db, query string) []byte {
	body := make([]byte, 13) // thread id, exec time, db len, error code, status vars len
	body[8] = byte(len(db))
	binary.LittleEndian.PutUint16(body[11:13], uint16(len(statusVars)))
	body = append(body, statusVars...)
	body = append(body, db...)
	body = append(body, 0)
	body = append(body, query...)
	body = append(body, testChecksum...)
	return body
}

func annotateRowsBody(query string) []byte {
	return append([]byte(query), testChecksum...)
}

func rowsBody() []byte {
	body := make([]byte, 10) // opaque row images, never decoded
	return append(body, testChecksum...)
}
