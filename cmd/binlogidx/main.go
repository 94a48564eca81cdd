package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/tanmoysrt/binlog-parser-indexer/cmd"
	"github.com/urfave/cli/v3"
)

var (
	version = "main"
)

func init() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}

func main() {
	app := &cli.Command{}
	app.Name = "binlogidx"
	app.Usage = "parse MariaDB/MySQL binlog files into logical queries and index them for audit"
	app.Version = version
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Printf("binlogidx version %s %s/%s\n", cmd.Version, runtime.GOOS, runtime.GOARCH)
	}
	app.Flags = cmd.Flags()
	app.Before = cmd.Before
	app.Commands = []*cli.Command{
		cmd.IndexCommand(),
		cmd.RemoveCommand(),
		cmd.ParseCommand(),
		cmd.ListCommand(),
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
