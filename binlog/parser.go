package binlog

import (
	"context"
	"fmt"

	"github.com/go-mysql-org/go-mysql/replication"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

// Classifier 定义语句分类接口
// Extracts the statement type and the first table reference from raw SQL
// text. Implementations must be side-effect free; a zero Hint means the
// text was not recognized.
type Classifier interface {
	Classify(query string) types.Hint
}

// Parser decodes one in-memory binlog file into logical queries. It owns
// a table-map cache scoped to the file, so concurrent files each need
// their own Parser instance; a single Parser is not safe for concurrent
// use.
type Parser struct {
	// data Raw binlog file contents
	data []byte
	// headers Ordered event headers produced by the one-time index walk
	headers []EventHeader
	// cur Index of the current header
	cur int
	// tableMap Transient table_id -> (database, table) cache, valid for
	// one parse only
	tableMap map[uint64]types.Source
	// classifier Statement text classifier collaborator
	classifier Classifier
}

// NewParser indexes the event headers of data and returns a parser ready
// to produce queries. A nil classifier falls back to no hints at all, so
// callers normally pass classify.New().
func NewParser(data []byte, classifier Classifier) (*Parser, error) {
	headers, err := indexHeaders(data)
	if err != nil {
		return nil, err
	}
	return &Parser{
		data:       data,
		headers:    headers,
		classifier: classifier,
		tableMap:   make(map[uint64]types.Source),
	}, nil
}

// Headers returns the indexed event headers in file order.
func (p *Parser) Headers() []EventHeader {
	return p.headers
}

// ParseQueries replays the header list from the start and returns every
// reconstructed query in file order. Cancellation is polled once per
// header step since a file can hold very many small events.
func (p *Parser) ParseQueries(ctx context.Context) ([]types.Query, error) {
	p.cur = 0
	p.tableMap = make(map[uint64]types.Source)
	var queries []types.Query
	for p.cur < len(p.headers) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		consumed, query, err := p.step(p.cur)
		if err != nil {
			return nil, err
		}
		if query != nil {
			queries = append(queries, *query)
		}
		p.cur += consumed
	}
	return queries, nil
}

// step examines the header at index i and applies the correlation rules:
// skip it, emit one query, or consume a lookahead run of table-map and
// rows events before emitting. It returns how many headers were consumed
// (always at least one) so the caller owns all cursor movement.
func (p *Parser) step(i int) (int, *types.Query, error) {
	header := p.headers[i]
	switch header.EventType {
	case replication.QUERY_EVENT:
		return p.stepQueryEvent(header)
	case replication.MARIADB_ANNOTATE_ROWS_EVENT:
		return p.stepAnnotateRowsEvent(i)
	default:
		// Covers FormatDescriptionEvent, every unrecognized type, and
		// table-map/rows events reached outside an annotate run (pure
		// row-based mode); queries are never rebuilt from row images
		// alone.
		return 1, nil, nil
	}
}

// stepQueryEvent emits one query for a statement-based event. TCL
// statements and text the classifier cannot type at all produce nothing.
func (p *Parser) stepQueryEvent(header EventHeader) (int, *types.Query, error) {
	body, err := p.body(header)
	if err != nil {
		return 0, nil, err
	}
	ev, err := decodeQueryEvent(body, header.Position, p.classify)
	if err != nil {
		return 0, nil, err
	}
	if ev.Type == "" || ev.Type == types.QueryTypeTCL {
		return 1, nil, nil
	}
	query := types.NewQuery(
		[]types.Source{{Database: ev.Database, Table: ev.Table}},
		header.Timestamp,
		ev.Type,
		ev.Query,
		header.Position,
		int64(header.EventLength),
		header.Position+EventHeaderSize+int64(ev.queryStart),
		header.Position+EventHeaderSize+int64(ev.queryEnd),
		header.End(),
	)
	return 1, &query, nil
}

// stepAnnotateRowsEvent correlates an annotate event with the table-map
// and rows events that follow it into a single logical statement.
func (p *Parser) stepAnnotateRowsEvent(i int) (int, *types.Query, error) {
	header := p.headers[i]
	body, err := p.body(header)
	if err != nil {
		return 0, nil, err
	}
	ann, err := decodeAnnotateRowsEvent(body, header.Position, p.classify)
	if err != nil {
		return 0, nil, err
	}

	// Consume the run of table-map events, upserting each mapping and
	// remembering the ids bound by this statement, in order.
	next := i + 1
	var tableIDs []uint64
	for next < len(p.headers) && p.headers[next].EventType == replication.TABLE_MAP_EVENT {
		tmBody, err := p.body(p.headers[next])
		if err != nil {
			return 0, nil, err
		}
		tm, err := decodeTableMapEvent(tmBody, p.headers[next].Position)
		if err != nil {
			return 0, nil, err
		}
		p.tableMap[tm.TableID] = types.Source{Database: tm.Database, Table: tm.Table}
		tableIDs = append(tableIDs, tm.TableID)
		next++
	}

	// The first rows event fixes the logical type and overrides whatever
	// the classifier guessed from the annotated text.
	queryType := types.QueryType("")
	if next < len(p.headers) {
		switch p.headers[next].EventType {
		case replication.WRITE_ROWS_EVENTv1:
			queryType = types.QueryTypeInsert
		case replication.UPDATE_ROWS_EVENTv1:
			queryType = types.QueryTypeUpdate
		case replication.DELETE_ROWS_EVENTv1:
			queryType = types.QueryTypeDelete
		}
	}
	if queryType == "" {
		queryType = ann.Type
	}

	// Skip past every rows event of the statement, tracking where the
	// last one ends.
	for next < len(p.headers) && isRowsEvent(p.headers[next].EventType) {
		next++
	}

	consumed := next - i
	relatedEventsEndPos := header.End()
	if consumed > 1 {
		relatedEventsEndPos = p.headers[next-1].End()
	} else {
		consumed = 1
	}

	if queryType == "" {
		return consumed, nil, nil
	}

	sources := make([]types.Source, 0, len(tableIDs))
	for _, tableID := range tableIDs {
		source, ok := p.tableMap[tableID]
		if !ok {
			return 0, nil, &DecodeError{
				Offset:    header.Position,
				EventType: replication.MARIADB_ANNOTATE_ROWS_EVENT,
				Msg:       fmt.Sprintf("table id %d is not in the table map", tableID),
			}
		}
		sources = append(sources, source)
	}
	if len(sources) == 0 {
		// No table-map run: fall back to what the annotated text itself
		// says.
		sources = []types.Source{{Database: ann.Database, Table: ann.Table}}
	}

	query := types.NewQuery(
		sources,
		header.Timestamp,
		queryType,
		ann.Query,
		header.Position,
		int64(header.EventLength),
		header.Position+EventHeaderSize+int64(ann.queryStart),
		header.Position+EventHeaderSize+int64(ann.queryEnd),
		relatedEventsEndPos,
	)
	return consumed, &query, nil
}

// classify calls the classifier collaborator; a panicking classifier is
// downgraded to an absent hint so internal failures never abort a parse.
func (p *Parser) classify(query string) (hint types.Hint) {
	defer func() {
		if r := recover(); r != nil {
			hint = types.Hint{}
		}
	}()
	if p.classifier == nil {
		return types.Hint{}
	}
	return p.classifier.Classify(query)
}

// body slices the event body out of the buffer, checking that the event
// fits inside it.
func (p *Parser) body(header EventHeader) ([]byte, error) {
	if header.End() > int64(len(p.data)) {
		return nil, &FormatError{
			Offset: header.Position,
			Msg:    fmt.Sprintf("event of length %d overruns the buffer", header.EventLength),
		}
	}
	return p.data[header.Position+EventHeaderSize : header.End()], nil
}

// isRowsEvent reports whether the event type carries row images for the
// statement being correlated.
func isRowsEvent(eventType replication.EventType) bool {
	switch eventType {
	case replication.WRITE_ROWS_EVENTv1, replication.UPDATE_ROWS_EVENTv1, replication.DELETE_ROWS_EVENTv1:
		return true
	}
	return false
}
