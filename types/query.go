package types

// QueryType 定义从 binlog 还原出的语句类型枚举
// TCL statements (COMMIT/ROLLBACK) are recognized but never emitted as queries.

type QueryType string

const (
	// QueryTypeInsert INSERT statements (also fixed by a following WriteRowsV1 event)
	QueryTypeInsert QueryType = "INSERT"
	// QueryTypeUpdate UPDATE statements (also fixed by a following UpdateRowsV1 event)
	QueryTypeUpdate QueryType = "UPDATE"
	// QueryTypeDelete DELETE statements (also fixed by a following DeleteRowsV1 event)
	QueryTypeDelete QueryType = "DELETE"
	// QueryTypeReplace REPLACE statements
	QueryTypeReplace QueryType = "REPLACE"
	// QueryTypeSelect SELECT statements
	QueryTypeSelect QueryType = "SELECT"
	// QueryTypeDDL CREATE/ALTER/DROP/TRUNCATE/RENAME/GRANT/REVOKE/LOCK/UNLOCK statements
	QueryTypeDDL QueryType = "DDL"
	// QueryTypeTCL COMMIT/ROLLBACK, excluded from output
	QueryTypeTCL QueryType = "TCL"
)

// Truncation bounds for the stored statement text. Anything longer than
// TruncateLimit is replaced with the first TruncateHead characters, a
// literal "...", and the last TruncateTail characters.
const (
	TruncateLimit = 500
	TruncateHead  = 200
	TruncateTail  = 300
)

// Source identifies one (database, table) pair touched by a statement.
type Source struct {
	Database string `json:"database"`
	Table    string `json:"table"`
}

// Hint is the classifier's reading of raw statement text. Empty fields
// mean the classifier could not tell; the parser applies its own
// fallback rules in that case.
type Hint struct {
	Type     QueryType `json:"type,omitempty"`
	Database string    `json:"database,omitempty"`
	Table    string    `json:"table,omitempty"`
}

// Query 是标准输出结构
// One logical SQL statement reconstructed from the binlog, attributed to
// the tables it touched, with byte-offset provenance back into the file.
type Query struct {
	// Sources 语句涉及的 (database, table) 列表，至少一个
	Sources []Source `json:"sources"`
	// Timestamp 事件头时间戳（秒）
	Timestamp uint32 `json:"timestamp"`
	// Type 语句类型
	Type QueryType `json:"type"`
	// Query 语句文本，超长时会被截断
	Query string `json:"query"`
	// IsTruncated 文本是否被截断
	IsTruncated bool `json:"is_truncated"`
	// QueryStart 语句文本在文件中的起始偏移
	QueryStart int64 `json:"query_start"`
	// QueryEnd 语句文本在文件中的结束偏移
	QueryEnd int64 `json:"query_end"`
	// EventStart 所属事件头的文件偏移
	EventStart int64 `json:"event_start"`
	// EventLength 所属事件的总长度（头 + 体）
	EventLength int64 `json:"event_length"`
	// RelatedEventsEndPos 最后一个关联原始事件的结束偏移
	RelatedEventsEndPos int64 `json:"related_events_end_pos"`
}

// NewQuery builds a Query and applies the truncation rule to the text.
// Provenance offsets are always those of the untruncated text.
func NewQuery(sources []Source, timestamp uint32, queryType QueryType, text string,
	eventStart, eventLength, queryStart, queryEnd, relatedEventsEndPos int64) Query {
	q := Query{
		Sources:             sources,
		Timestamp:           timestamp,
		Type:                queryType,
		Query:               text,
		QueryStart:          queryStart,
		QueryEnd:            queryEnd,
		EventStart:          eventStart,
		EventLength:         eventLength,
		RelatedEventsEndPos: relatedEventsEndPos,
	}
	// Statement text is decoded one byte per character, so rune count is
	// what the truncation bounds are expressed in.
	if runes := []rune(text); len(runes) > TruncateLimit {
		q.Query = string(runes[:TruncateHead]) + "..." + string(runes[len(runes)-TruncateTail:])
		q.IsTruncated = true
	}
	return q
}
