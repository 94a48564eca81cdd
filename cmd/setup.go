package cmd

import (
	"fmt"
	"log/slog"

	"github.com/tanmoysrt/binlog-parser-indexer/config"
	"github.com/tanmoysrt/binlog-parser-indexer/indexer"
	"github.com/tanmoysrt/binlog-parser-indexer/store"
)

// SetupIndexer wires the query store and the indexer together; the
// returned store handle must be closed by the caller.
func SetupIndexer(cfg *config.Config) (*indexer.Indexer, store.IStore, error) {
	iStore, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}
	return indexer.New(cfg.Indexer, iStore), iStore, nil
}

// CloseStore closes the store handle, logging instead of failing.
func CloseStore(iStore store.IStore) {
	if err := iStore.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
}
