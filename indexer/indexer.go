package indexer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/chihqiang/logx"
	_ "github.com/go-sql-driver/mysql" // MySQL driver for binlog discovery
	"github.com/tanmoysrt/binlog-parser-indexer/binlog"
	"github.com/tanmoysrt/binlog-parser-indexer/classify"
	"github.com/tanmoysrt/binlog-parser-indexer/store"
)

// Config 定义索引器配置结构
type Config struct {
	// BasePath Directory the server writes its binlog files to
	BasePath string      `yaml:"base_path" json:"base_path" mapstructure:"base_path" env:"INDEXER_BASE_PATH" envDefault:"/var/lib/mysql"`
	Mysql    MysqlConfig `yaml:"mysql" json:"mysql" mapstructure:"mysql"`
}

// MysqlConfig MySQL connection settings, only used to discover binlog
// file names via SHOW BINARY LOGS. Parsing itself never touches the
// server.
type MysqlConfig struct {
	Addr     string `yaml:"addr" json:"addr" mapstructure:"addr" env:"INDEXER_MYSQL_ADDR" envDefault:"127.0.0.1:3306"`
	User     string `yaml:"user" json:"user" mapstructure:"user" env:"INDEXER_MYSQL_USER" envDefault:"root"`
	Password string `yaml:"password" json:"password" mapstructure:"password" env:"INDEXER_MYSQL_PASSWORD" envDefault:""`
}

// Indexer parses binlog files from a base directory and persists the
// resulting queries through an injected store handle. The caller owns
// the store's lifecycle; the indexer never opens connections of its own
// beyond discovery.
type Indexer struct {
	cfg   Config
	store store.IStore
}

// New creates an Indexer writing to the given store.
func New(cfg Config, st store.IStore) *Indexer {
	if cfg.BasePath == "" {
		cfg.BasePath = "/var/lib/mysql"
	}
	return &Indexer{cfg: cfg, store: st}
}

// Add parses the named binlog file under the base path and stores its
// queries. A name that was already indexed is skipped.
func (ix *Indexer) Add(ctx context.Context, binlogName string) error {
	if ix.store.HasBinlog(binlogName) {
		logx.Info("binlog %s is already indexed, skipping", binlogName)
		return nil
	}
	path := filepath.Join(ix.cfg.BasePath, binlogName)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read binlog file %s: %w", path, err)
	}
	parser, err := binlog.NewParser(data, classify.New())
	if err != nil {
		return err
	}
	queries, err := parser.ParseQueries(ctx)
	if err != nil {
		return err
	}
	logx.Info("parsed %d queries from %s", len(queries), binlogName)
	return ix.store.InsertQueries(binlogName, queries)
}

// Remove deletes everything stored for the named binlog file.
func (ix *Indexer) Remove(binlogName string) error {
	return ix.store.DeleteBinlog(binlogName)
}

// Reindex drops the stored rows of the named binlog file and indexes it
// again from disk.
func (ix *Indexer) Reindex(ctx context.Context, binlogName string) error {
	if err := ix.Remove(binlogName); err != nil {
		return err
	}
	return ix.Add(ctx, binlogName)
}

// ListServerBinlogs asks the server for its binlog file names via
// SHOW BINARY LOGS, sorted ascending.
func ListServerBinlogs(cfg MysqlConfig) ([]string, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s)/", cfg.User, cfg.Password, cfg.Addr)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logx.Warn("error closing database connection: %v", cerr)
		}
	}()

	rows, err := db.Query("SHOW BINARY LOGS")
	if err != nil {
		return nil, fmt.Errorf("failed to execute SHOW BINARY LOGS: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			logx.Warn("error closing rows: %v", cerr)
		}
	}()

	var binlogFiles []string
	for rows.Next() {
		var filename string
		var size int64
		if err := rows.Scan(&filename, &size); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		binlogFiles = append(binlogFiles, filename)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	// The server already returns them in order, but don't rely on it.
	sort.Strings(binlogFiles)
	return binlogFiles, nil
}
