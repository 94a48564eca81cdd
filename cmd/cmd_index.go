package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

func IndexCommand() *cli.Command {
	return &cli.Command{
		UseShortOptionHandling: true,
		Name:                   "index",
		Usage:                  "Parse binlog files and store their queries",
		ArgsUsage:              "BINLOG_NAME...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Drop previously stored rows of the file before indexing",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, ok := configFromContext(ctx)
			if !ok {
				return fmt.Errorf("config not found in context")
			}
			names := cmd.Args().Slice()
			if len(names) == 0 {
				return fmt.Errorf("at least one binlog name is required")
			}
			ix, iStore, err := SetupIndexer(cfg)
			if err != nil {
				return err
			}
			defer CloseStore(iStore)
			for _, name := range names {
				slog.Info("indexing binlog", "name", name)
				if cmd.Bool("force") {
					err = ix.Reindex(ctx, name)
				} else {
					err = ix.Add(ctx, name)
				}
				if err != nil {
					return fmt.Errorf("failed to index %s: %w", name, err)
				}
			}
			return nil
		},
	}
}
