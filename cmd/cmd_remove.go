package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
)

func RemoveCommand() *cli.Command {
	return &cli.Command{
		UseShortOptionHandling: true,
		Name:                   "remove",
		Usage:                  "Remove every stored query of the given binlog files",
		ArgsUsage:              "BINLOG_NAME...",
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
				slog.Info("removing binlog", "name", name)
				if err := ix.Remove(name); err != nil {
					return fmt.Errorf("failed to remove %s: %w", name, err)
				}
			}
			return nil
		},
	}
}
