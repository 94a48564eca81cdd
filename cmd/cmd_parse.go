package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tanmoysrt/binlog-parser-indexer/binlog"
	"github.com/tanmoysrt/binlog-parser-indexer/classify"
	"github.com/tanmoysrt/binlog-parser-indexer/output"
	"github.com/urfave/cli/v3"
)

func ParseCommand() *cli.Command {
	return &cli.Command{
		UseShortOptionHandling: true,
		Name:                   "parse",
		Usage:                  "Parse a binlog file and publish its queries to the configured output",
		ArgsUsage:              "BINLOG_NAME",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, ok := configFromContext(ctx)
			if !ok {
				return fmt.Errorf("config not found in context")
			}
			name := cmd.Args().First()
			if name == "" {
				return fmt.Errorf("a binlog name is required")
			}
			path := filepath.Join(cfg.Indexer.BasePath, name)
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
			iOutput, err := output.NewOutput(cfg.Output)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer func() {
				if err := iOutput.Close(); err != nil {
					slog.Error("failed to close output", "error", err)
				}
			}()
			for _, query := range queries {
				if err := output.SendWithRetry(ctx, iOutput, query, 3); err != nil {
					return fmt.Errorf("failed to send query: %w", err)
				}
			}
			slog.Info("parsed binlog", "name", name, "queries", len(queries))
			return nil
		},
	}
}
