package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

// SqliteConfig sqlite 配置
type SqliteConfig struct {
	// Path Database file path; ":memory:" keeps everything in memory
	Path string `yaml:"path" json:"path" mapstructure:"path" env:"STORE_SQLITE_PATH" envDefault:"binlog.db"`
}

// DefaultSqliteConfig 返回 sqlite 默认配置
func DefaultSqliteConfig() SqliteConfig {
	return SqliteConfig{
		Path: "binlog.db",
	}
}

// SqliteStore persists queries in a local sqlite database: a queries
// table with one row per (query, source) pair and a binlogs table
// registering indexed file names.
type SqliteStore struct {
	db *sql.DB
}

// NewSqliteStore opens (or creates) the database file and prepares the
// schema.
func NewSqliteStore(cfg SqliteConfig) (*SqliteStore, error) {
	def := DefaultSqliteConfig()
	if cfg.Path == "" {
		cfg.Path = def.Path
	}
	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.Path, err)
	}
	// sqlite allows a single writer; one pooled connection also keeps
	// ":memory:" databases from silently splitting per connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.Path, err)
	}
	store := &SqliteStore{db: db}
	if err := store.prepareSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// prepareSchema applies the pragmas and creates the tables and indexes
// when missing.
func (s *SqliteStore) prepareSchema() error {
	statements := []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA synchronous = NORMAL`,
		`CREATE TABLE IF NOT EXISTS binlogs (
			name VARCHAR(60) PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS queries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp BIGINT NOT NULL,
			database_name VARCHAR(70) NOT NULL,
			table_name VARCHAR(70) NOT NULL,
			type VARCHAR(10) NOT NULL,
			query VARCHAR(600) NOT NULL,
			is_query_truncated BOOLEAN NOT NULL,
			query_start BIGINT NOT NULL,
			query_end BIGINT NOT NULL,
			event_start BIGINT NOT NULL,
			event_length BIGINT NOT NULL,
			related_events_end_pos BIGINT NOT NULL,
			binlog_name VARCHAR(60) NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_timestamp ON queries (timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_database_name ON queries (database_name)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_table_name ON queries (table_name)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_type ON queries (type)`,
		`CREATE INDEX IF NOT EXISTS idx_queries_binlog_name ON queries (binlog_name)`,
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return fmt.Errorf("failed to prepare sqlite schema: %w", err)
		}
	}
	return nil
}

// InsertQueries stores the rows of one binlog file inside a single
// transaction; an already-indexed name is a no-op.
func (s *SqliteStore) InsertQueries(binlogName string, queries []types.Query) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM binlogs WHERE name = ?`, binlogName).Scan(&count); err != nil {
		return fmt.Errorf("failed to check binlog %s: %w", binlogName, err)
	}
	if count > 0 {
		return nil
	}
	if _, err := tx.Exec(`INSERT INTO binlogs (name) VALUES (?)`, binlogName); err != nil {
		return fmt.Errorf("failed to record binlog %s: %w", binlogName, err)
	}

	insert, err := tx.Prepare(`INSERT INTO queries (
		timestamp, database_name, table_name, type, query, is_query_truncated,
		query_start, query_end, event_start, event_length, related_events_end_pos, binlog_name
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = insert.Close()
	}()

	for _, query := range queries {
		for _, row := range FanOut(binlogName, query) {
			if _, err := insert.Exec(
				row.Timestamp, row.Database, row.Table, string(row.Type), row.Query, row.IsTruncated,
				row.QueryStart, row.QueryEnd, row.EventStart, row.EventLength, row.RelatedEventsEndPos, row.BinlogName,
			); err != nil {
				return fmt.Errorf("failed to insert query row: %w", err)
			}
		}
	}
	return tx.Commit()
}

// HasBinlog reports whether the binlog name is in the registry table.
func (s *SqliteStore) HasBinlog(binlogName string) bool {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM binlogs WHERE name = ?`, binlogName).Scan(&count); err != nil {
		return false
	}
	return count > 0
}

// DeleteBinlog removes the registry entry and every query row of the
// binlog name.
func (s *SqliteStore) DeleteBinlog(binlogName string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err := tx.Exec(`DELETE FROM binlogs WHERE name = ?`, binlogName); err != nil {
		return fmt.Errorf("failed to delete binlog %s: %w", binlogName, err)
	}
	if _, err := tx.Exec(`DELETE FROM queries WHERE binlog_name = ?`, binlogName); err != nil {
		return fmt.Errorf("failed to delete queries of %s: %w", binlogName, err)
	}
	return tx.Commit()
}

// Close closes the underlying database handle.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}
