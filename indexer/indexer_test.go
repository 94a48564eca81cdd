package indexer

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-mysql-org/go-mysql/replication"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanmoysrt/binlog-parser-indexer/binlog"
	"github.com/tanmoysrt/binlog-parser-indexer/store"
)

// writeBinlogFile writes a minimal binlog holding one statement-based
// query event per statement text.
func writeBinlogFile(t *testing.T, path string, statements ...string) {
	t.Helper()
	buf := append([]byte(nil), replication.BinLogFileHeader...)
	for _, statement := range statements {
		body := make([]byte, 13)
		body[8] = 1 // database name length, "d"
		body = append(body, 'd', 0)
		body = append(body, statement...)
		body = append(body, 0, 0, 0, 0) // checksum placeholder

		pos := len(buf)
		length := binlog.EventHeaderSize + len(body)
		header := make([]byte, binlog.EventHeaderSize)
		binary.LittleEndian.PutUint32(header[0:4], 1700000000)
		header[4] = byte(replication.QUERY_EVENT)
		binary.LittleEndian.PutUint32(header[9:13], uint32(length))
		binary.LittleEndian.PutUint32(header[13:17], uint32(pos+length))
		buf = append(buf, header...)
		buf = append(buf, body...)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func newTestIndexer(t *testing.T) (*Indexer, store.IStore, string) {
	t.Helper()
	st, err := store.NewSqliteStore(store.SqliteConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	dir := t.TempDir()
	return New(Config{BasePath: dir}, st), st, dir
}

func TestIndexerAdd(t *testing.T) {
	ix, st, dir := newTestIndexer(t)
	writeBinlogFile(t, filepath.Join(dir, "mysql-bin.000001"), "INSERT INTO users VALUES (1)")

	require.NoError(t, ix.Add(context.Background(), "mysql-bin.000001"))
	assert.True(t, st.HasBinlog("mysql-bin.000001"))
}

func TestIndexerAddSkipsIndexedFile(t *testing.T) {
	ix, _, dir := newTestIndexer(t)
	path := filepath.Join(dir, "mysql-bin.000001")
	writeBinlogFile(t, path, "INSERT INTO users VALUES (1)")

	require.NoError(t, ix.Add(context.Background(), "mysql-bin.000001"))

	// The second call never opens the file again.
	require.NoError(t, os.Remove(path))
	require.NoError(t, ix.Add(context.Background(), "mysql-bin.000001"))
}

func TestIndexerAddMissingFile(t *testing.T) {
	ix, _, _ := newTestIndexer(t)
	assert.Error(t, ix.Add(context.Background(), "mysql-bin.000404"))
}

func TestIndexerAddCorruptFile(t *testing.T) {
	ix, _, dir := newTestIndexer(t)
	path := filepath.Join(dir, "mysql-bin.000001")
	require.NoError(t, os.WriteFile(path, []byte("not a binlog"), 0o644))

	err := ix.Add(context.Background(), "mysql-bin.000001")
	var formatErr *binlog.FormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestIndexerRemove(t *testing.T) {
	ix, st, dir := newTestIndexer(t)
	writeBinlogFile(t, filepath.Join(dir, "mysql-bin.000001"), "DELETE FROM users")

	require.NoError(t, ix.Add(context.Background(), "mysql-bin.000001"))
	require.NoError(t, ix.Remove("mysql-bin.000001"))
	assert.False(t, st.HasBinlog("mysql-bin.000001"))
}

func TestIndexerReindex(t *testing.T) {
	ix, st, dir := newTestIndexer(t)
	path := filepath.Join(dir, "mysql-bin.000001")
	writeBinlogFile(t, path, "INSERT INTO users VALUES (1)")
	require.NoError(t, ix.Add(context.Background(), "mysql-bin.000001"))

	// The file grew since it was indexed; a plain Add would skip it.
	writeBinlogFile(t, path, "INSERT INTO users VALUES (1)", "UPDATE users SET x=2")
	require.NoError(t, ix.Reindex(context.Background(), "mysql-bin.000001"))
	assert.True(t, st.HasBinlog("mysql-bin.000001"))
}
