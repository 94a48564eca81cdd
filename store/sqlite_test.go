package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

func newTestSqliteStore(t *testing.T) *SqliteStore {
	t.Helper()
	s, err := NewSqliteStore(SqliteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testQueries() []types.Query {
	return []types.Query{
		{
			Sources:   []types.Source{{Database: "shop", Table: "orders"}},
			Timestamp: 100,
			Type:      types.QueryTypeInsert,
			Query:     "INSERT INTO orders VALUES (1)",
		},
		{
			Sources: []types.Source{
				{Database: "shop", Table: "orders"},
				{Database: "shop", Table: "order_lines"},
			},
			Timestamp: 101,
			Type:      types.QueryTypeDelete,
			Query:     "DELETE o, l FROM orders o JOIN order_lines l",
		},
	}
}

func (s *SqliteStore) countRows(t *testing.T, binlogName string) int {
	t.Helper()
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM queries WHERE binlog_name = ?`, binlogName).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestSqliteStoreInsertFansOutPerSource(t *testing.T) {
	s := newTestSqliteStore(t)

	require.NoError(t, s.InsertQueries("mysql-bin.000001", testQueries()))
	// Two queries, one with two sources, so three rows.
	assert.Equal(t, 3, s.countRows(t, "mysql-bin.000001"))
	assert.True(t, s.HasBinlog("mysql-bin.000001"))

	var database, table string
	err := s.db.QueryRow(
		`SELECT database_name, table_name FROM queries WHERE type = ? ORDER BY id LIMIT 1`,
		string(types.QueryTypeInsert),
	).Scan(&database, &table)
	require.NoError(t, err)
	assert.Equal(t, "shop", database)
	assert.Equal(t, "orders", table)
}

func TestSqliteStoreInsertIsIdempotent(t *testing.T) {
	s := newTestSqliteStore(t)

	require.NoError(t, s.InsertQueries("mysql-bin.000001", testQueries()))
	require.NoError(t, s.InsertQueries("mysql-bin.000001", testQueries()))
	assert.Equal(t, 3, s.countRows(t, "mysql-bin.000001"))
}

func TestSqliteStoreHasBinlog(t *testing.T) {
	s := newTestSqliteStore(t)

	assert.False(t, s.HasBinlog("mysql-bin.000001"))
	require.NoError(t, s.InsertQueries("mysql-bin.000001", nil))
	assert.True(t, s.HasBinlog("mysql-bin.000001"))
	assert.False(t, s.HasBinlog("mysql-bin.000002"))
}

func TestSqliteStoreDeleteBinlog(t *testing.T) {
	s := newTestSqliteStore(t)

	require.NoError(t, s.InsertQueries("mysql-bin.000001", testQueries()))
	require.NoError(t, s.DeleteBinlog("mysql-bin.000001"))
	assert.False(t, s.HasBinlog("mysql-bin.000001"))
	assert.Equal(t, 0, s.countRows(t, "mysql-bin.000001"))

	// Unknown names are not an error.
	require.NoError(t, s.DeleteBinlog("mysql-bin.000099"))
}

func TestNewStoreByType(t *testing.T) {
	s, err := NewStore(Config{Type: SqliteStoreType, Sqlite: SqliteConfig{Path: ":memory:"}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = NewStore(Config{Type: "bogus"})
	assert.Error(t, err)
}
