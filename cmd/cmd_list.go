package cmd

import (
	"context"
	"fmt"

	"github.com/tanmoysrt/binlog-parser-indexer/indexer"
	"github.com/urfave/cli/v3"
)

func ListCommand() *cli.Command {
	return &cli.Command{
		UseShortOptionHandling: true,
		Name:                   "list",
		Usage:                  "List the binlog files the MySQL server currently has",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, ok := configFromContext(ctx)
			if !ok {
				return fmt.Errorf("config not found in context")
			}
			names, err := indexer.ListServerBinlogs(cfg.Indexer.Mysql)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}
