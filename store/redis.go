package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tanmoysrt/binlog-parser-indexer/pkg/redisx"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr" json:"addr" mapstructure:"addr" env:"STORE_REDIS_ADDR"`
	Password string `yaml:"password" json:"password" mapstructure:"password" env:"STORE_REDIS_PASSWORD"`
	DB       int    `yaml:"db" json:"db" mapstructure:"db" env:"STORE_REDIS_DB"`
	// Prefix Key prefix shared by the registry set and the per-file lists
	Prefix string `yaml:"prefix" json:"prefix" mapstructure:"prefix" env:"STORE_REDIS_PREFIX" envDefault:"binlogidx"`
}

// DefaultRedisConfig 返回 Redis 默认配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:   "127.0.0.1:6379",
		DB:     0,
		Prefix: "binlogidx",
	}
}

// RedisStore keeps query rows in redis: a set of indexed binlog names
// under <prefix>:binlogs and one list of JSON rows per file under
// <prefix>:queries:<name>.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
	prefix string
}

// NewRedisStore 创建 RedisStore
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	def := DefaultRedisConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.Prefix == "" {
		cfg.Prefix = def.Prefix
	}
	client, err := redisx.Open(redisx.Config{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, err
	}
	return &RedisStore{
		client: client,
		ctx:    context.Background(),
		prefix: cfg.Prefix,
	}, nil
}

func (r *RedisStore) registryKey() string {
	return r.prefix + ":binlogs"
}

func (r *RedisStore) queriesKey(binlogName string) string {
	return r.prefix + ":queries:" + binlogName
}

// InsertQueries pushes one JSON row per (query, source) pair; an
// already-indexed name is a no-op.
func (r *RedisStore) InsertQueries(binlogName string, queries []types.Query) error {
	if r.HasBinlog(binlogName) {
		return nil
	}
	pipe := r.client.TxPipeline()
	pipe.SAdd(r.ctx, r.registryKey(), binlogName)
	for _, query := range queries {
		for _, row := range FanOut(binlogName, query) {
			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("failed to marshal query row: %w", err)
			}
			pipe.RPush(r.ctx, r.queriesKey(binlogName), data)
		}
	}
	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to store queries of %s: %w", binlogName, err)
	}
	return nil
}

// HasBinlog 判断 binlog 是否已经索引过
func (r *RedisStore) HasBinlog(binlogName string) bool {
	exists, err := r.client.SIsMember(r.ctx, r.registryKey(), binlogName).Result()
	if err != nil {
		return false
	}
	return exists
}

// DeleteBinlog drops the per-file list and the registry membership.
func (r *RedisStore) DeleteBinlog(binlogName string) error {
	pipe := r.client.TxPipeline()
	pipe.SRem(r.ctx, r.registryKey(), binlogName)
	pipe.Del(r.ctx, r.queriesKey(binlogName))
	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to delete binlog %s: %w", binlogName, err)
	}
	return nil
}

// Close 关闭 Redis 客户端
func (r *RedisStore) Close() error {
	return r.client.Close()
}
