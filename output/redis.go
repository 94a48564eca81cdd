package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tanmoysrt/binlog-parser-indexer/pkg/redisx"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

// RedisConfig Redis 配置实体
type RedisConfig struct {
	// Redis 地址，例如 "127.0.0.1:6379"
	Addr string `yaml:"addr" json:"addr" mapstructure:"addr" env:"OUTPUT_REDIS_ADDR"`
	// Redis 密码，可为空
	Password string `yaml:"password" json:"password" mapstructure:"password" env:"OUTPUT_REDIS_PASSWORD"`
	// Redis 数据库编号
	DB int `yaml:"db" json:"db" mapstructure:"db" env:"OUTPUT_REDIS_DB"`
	// 用于存储查询的 key（List 名称）
	Key string `yaml:"key" json:"key" mapstructure:"key" env:"OUTPUT_REDIS_KEY" envDefault:"binlog_queries"`
}

// DefaultRedisConfig 返回 Redis 默认配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr: "127.0.0.1:6379",
		DB:   0,
		Key:  "binlog_queries",
	}
}

type RedisOutput struct {
	cfg RedisConfig
	rdb *redis.Client
	key string
}

// NewRedisOutput 创建 RedisOutput，并填充默认值
func NewRedisOutput(cfg RedisConfig) (*RedisOutput, error) {
	def := DefaultRedisConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.Key == "" {
		cfg.Key = def.Key
	}
	rdb, err := redisx.Open(redisx.Config{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, err
	}
	return &RedisOutput{
		cfg: cfg,
		rdb: rdb,
		key: cfg.Key,
	}, nil
}

// Send 将查询发送到 Redis（使用 List）
func (r *RedisOutput) Send(ctx context.Context, query types.Query) error {
	data, err := json.Marshal(query)
	if err != nil {
		return err
	}
	if err := r.rdb.LPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("failed to push query to Redis: %w", err)
	}
	return nil
}

// Close 关闭 Redis 客户端
func (r *RedisOutput) Close() error {
	return r.rdb.Close()
}
