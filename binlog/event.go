package binlog

import (
	"encoding/binary"

	"github.com/go-mysql-org/go-mysql/replication"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

// checksumLength Trailing bytes of every recognized event body that hold
// the CRC32 checksum. Stripping is unconditional, matching the MariaDB
// servers these files come from.
const checksumLength = 4

// decodeText maps each byte to the code point of the same value
// (latin-1). Statement text in the binlog is treated as opaque
// single-byte characters, never as UTF-8.
func decodeText(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}

// TableMapEventData binds a numeric table id to a (database, table) pair.
// https://mariadb.com/kb/en/table_map_event/
type TableMapEventData struct {
	// TableID 48-bit table identifier, zero-extended to 64 bits
	TableID uint64
	// Database Database the mapped table belongs to
	Database string
	// Table Mapped table name
	Table string
}

// decodeTableMapEvent decodes a TableMapEvent body. Only the table id and
// the two name fields are read; column metadata and row layout are left
// untouched.
func decodeTableMapEvent(body []byte, offset int64) (TableMapEventData, error) {
	if len(body) < 10 {
		return TableMapEventData{}, &DecodeError{
			Offset:    offset,
			EventType: replication.TABLE_MAP_EVENT,
			Msg:       "body too short for table id and database name length",
		}
	}
	// First 6 bytes are the table id, little-endian.
	tableID := uint64(body[0]) | uint64(body[1])<<8 | uint64(body[2])<<16 |
		uint64(body[3])<<24 | uint64(body[4])<<32 | uint64(body[5])<<40

	dbNameLen := int(body[8])
	// Database name starts at 9 and is followed by a null terminator, then
	// a one-byte table name length and the table name itself.
	tableNameLenAt := 10 + dbNameLen
	if tableNameLenAt >= len(body) {
		return TableMapEventData{}, &DecodeError{
			Offset:    offset,
			EventType: replication.TABLE_MAP_EVENT,
			Msg:       "database name overruns event body",
		}
	}
	tableNameLen := int(body[tableNameLenAt])
	tableNameEnd := tableNameLenAt + 1 + tableNameLen
	if tableNameEnd > len(body) {
		return TableMapEventData{}, &DecodeError{
			Offset:    offset,
			EventType: replication.TABLE_MAP_EVENT,
			Msg:       "table name overruns event body",
		}
	}
	return TableMapEventData{
		TableID:  tableID,
		Database: decodeText(body[9 : 9+dbNameLen]),
		Table:    decodeText(body[tableNameLenAt+1 : tableNameEnd]),
	}, nil
}

// QueryEventData carries a statement executed in statement-based mode.
// https://mariadb.com/kb/en/query_event/
type QueryEventData struct {
	// Database Default database; overridden when the statement text
	// carries a schema-qualified table reference
	Database string
	// Table Table name extracted from the statement text
	Table string
	// Query Statement text with the trailing checksum stripped
	Query string
	// Type Statement type derived from the text
	Type types.QueryType
	// queryStart Body-relative offset of the first text byte
	queryStart int
	// queryEnd Body-relative offset one past the last text byte
	queryEnd int
}

// decodeQueryEvent decodes a QueryEvent body. classify extracts the
// statement type and table hints from the raw text.
func decodeQueryEvent(body []byte, offset int64, classify func(string) types.Hint) (QueryEventData, error) {
	if len(body) < 13 {
		return QueryEventData{}, &DecodeError{
			Offset:    offset,
			EventType: replication.QUERY_EVENT,
			Msg:       "body too short for the post-header",
		}
	}
	dbNameLen := int(body[8])
	statusVarsLen := int(binary.LittleEndian.Uint16(body[11:13]))
	dbNameStart := 13 + statusVarsLen
	// Statement text sits one byte past the database name (its null
	// terminator) and ends before the trailing checksum.
	queryStart := dbNameStart + dbNameLen + 1
	queryEnd := len(body) - checksumLength
	if dbNameStart+dbNameLen > len(body) || queryStart > queryEnd {
		return QueryEventData{}, &DecodeError{
			Offset:    offset,
			EventType: replication.QUERY_EVENT,
			Msg:       "database name or statement text overruns event body",
		}
	}
	ev := QueryEventData{
		Database:   decodeText(body[dbNameStart : dbNameStart+dbNameLen]),
		Query:      decodeText(body[queryStart:queryEnd]),
		queryStart: queryStart,
		queryEnd:   queryEnd,
	}
	hint := classify(ev.Query)
	ev.Type = hint.Type
	ev.Table = hint.Table
	if hint.Database != "" {
		// Schema-qualified statements win over the session default.
		ev.Database = hint.Database
	}
	return ev, nil
}

// AnnotateRowsEventData carries the original statement text recorded
// alongside its row-based rewrite.
// https://mariadb.com/kb/en/annotate_rows_event/
type AnnotateRowsEventData struct {
	// Query Statement text exactly as issued, checksum stripped
	Query string
	// Type Statement type hint from the text, may be refined by the
	// rows events that follow
	Type types.QueryType
	// Database Fallback database hint from the text
	Database string
	// Table Fallback table hint from the text
	Table string
	// queryStart Body-relative offset of the first text byte
	queryStart int
	// queryEnd Body-relative offset one past the last text byte
	queryEnd int
}

// decodeAnnotateRowsEvent decodes an AnnotateRowsEvent body: the whole
// body minus the trailing checksum is the literal statement text.
func decodeAnnotateRowsEvent(body []byte, offset int64, classify func(string) types.Hint) (AnnotateRowsEventData, error) {
	if len(body) < checksumLength {
		return AnnotateRowsEventData{}, &DecodeError{
			Offset:    offset,
			EventType: replication.MARIADB_ANNOTATE_ROWS_EVENT,
			Msg:       "body too short to hold a checksum",
		}
	}
	ev := AnnotateRowsEventData{
		Query:      decodeText(body[:len(body)-checksumLength]),
		queryStart: 0,
		queryEnd:   len(body) - checksumLength,
	}
	hint := classify(ev.Query)
	ev.Type = hint.Type
	ev.Database = hint.Database
	ev.Table = hint.Table
	return ev, nil
}
