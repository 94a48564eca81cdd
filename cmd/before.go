package cmd

import (
	"context"

	"github.com/tanmoysrt/binlog-parser-indexer/config"
	"github.com/urfave/cli/v3"
)

type CliContextValue string

var (
	CliContextValueConfig CliContextValue = "config"
)

// Before 加载配置文件并放入 context
func Before(ctx context.Context, command *cli.Command) (context.Context, error) {
	filename := command.String(FlagConfig)
	conf, err := config.Load(filename)
	if err != nil {
		return ctx, err
	}
	// 将配置存储在context中，而不是使用全局变量
	return context.WithValue(ctx, CliContextValueConfig, conf), nil
}

// configFromContext 从 context 中取回加载好的配置
func configFromContext(ctx context.Context) (*config.Config, bool) {
	cfg, ok := ctx.Value(CliContextValueConfig).(*config.Config)
	return cfg, ok
}
