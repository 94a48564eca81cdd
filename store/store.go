package store

import (
	"fmt"

	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

type StoreType string

const (
	// SqliteStoreType Type for the sqlite query store
	SqliteStoreType StoreType = "sqlite"
	// RedisStoreType Type for the redis query store
	RedisStoreType StoreType = "redis"
)

var (
	// stores holds the registered store creators for different types
	stores = map[StoreType]func(cfg Config) (IStore, error){}
)

func init() {
	Register(SqliteStoreType, func(cfg Config) (IStore, error) {
		return NewSqliteStore(cfg.Sqlite)
	})
	Register(RedisStoreType, func(cfg Config) (IStore, error) {
		return NewRedisStore(cfg.Redis)
	})
}

// Register registers a custom store creator function for a given store type
func Register(storeType StoreType, fn func(Config) (IStore, error)) {
	stores[storeType] = fn
}

// Config Query store configuration structure
// Used to configure the store type and the type-specific settings
type Config struct {
	// Type Store type, e.g., "sqlite"
	Type   StoreType    `yaml:"type" json:"type" mapstructure:"type" env:"STORE_TYPE" envDefault:"sqlite"`
	Sqlite SqliteConfig `yaml:"sqlite" json:"sqlite" mapstructure:"sqlite"`
	Redis  RedisConfig  `yaml:"redis" json:"redis" mapstructure:"redis"`
}

// IStore persists reconstructed queries keyed by binlog file name.
// Implementations fan each query into one stored row per source pair and
// keep a registry of indexed file names.
type IStore interface {
	// InsertQueries stores the queries parsed from one binlog file and
	// records the file name as indexed. Inserting for an
	// already-recorded name is a no-op.
	//
	// Parameters:
	//   - binlogName: name of the binlog file the queries came from.
	//   - queries: the parsed queries, in file order.
	//
	// Returns:
	//   - error: non-nil if persisting fails.
	InsertQueries(binlogName string, queries []types.Query) error

	// HasBinlog reports whether the binlog name has already been indexed.
	HasBinlog(binlogName string) bool

	// DeleteBinlog removes every stored row for the binlog name and
	// forgets that it was indexed. Unknown names are not an error.
	DeleteBinlog(binlogName string) error

	// Close releases any resources held by the store.
	Close() error
}

// NewStore Creates a new store instance based on the provided configuration
// cfg: The configuration for the store
// Returns the store instance and any error encountered during creation
func NewStore(cfg Config) (IStore, error) {
	creator, exists := stores[cfg.Type]
	if !exists {
		return nil, fmt.Errorf("store type %s is not registered", cfg.Type)
	}
	return creator(cfg)
}

// Row is the flattened, per-source form of a query as persisted: one row
// per (database, table) pair, sharing the remaining fields.
type Row struct {
	Timestamp           uint32          `json:"timestamp"`
	Database            string          `json:"database"`
	Table               string          `json:"table"`
	Type                types.QueryType `json:"type"`
	Query               string          `json:"query"`
	IsTruncated         bool            `json:"is_truncated"`
	QueryStart          int64           `json:"query_start"`
	QueryEnd            int64           `json:"query_end"`
	EventStart          int64           `json:"event_start"`
	EventLength         int64           `json:"event_length"`
	RelatedEventsEndPos int64           `json:"related_events_end_pos"`
	BinlogName          string          `json:"binlog_name"`
}

// FanOut expands one query into its stored rows, one per source pair.
func FanOut(binlogName string, query types.Query) []Row {
	rows := make([]Row, 0, len(query.Sources))
	for _, source := range query.Sources {
		rows = append(rows, Row{
			Timestamp:           query.Timestamp,
			Database:            source.Database,
			Table:               source.Table,
			Type:                query.Type,
			Query:               query.Query,
			IsTruncated:         query.IsTruncated,
			QueryStart:          query.QueryStart,
			QueryEnd:            query.QueryEnd,
			EventStart:          query.EventStart,
			EventLength:         query.EventLength,
			RelatedEventsEndPos: query.RelatedEventsEndPos,
			BinlogName:          binlogName,
		})
	}
	return rows
}
