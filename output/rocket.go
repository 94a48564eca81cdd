package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

// RocketMQConfig RocketMQ 配置实体
type RocketMQConfig struct {
	// Servers 地址列表，例如 ["127.0.0.1:9876"]
	Servers []string `yaml:"servers" json:"servers" mapstructure:"servers" env:"OUTPUT_ROCKETMQ_SERVERS"`
	// Topic 消息发送到的 topic 名称
	Topic string `yaml:"topic" json:"topic" mapstructure:"topic" env:"OUTPUT_ROCKETMQ_TOPIC"`
	// Group 消息生产者分组名称
	Group string `yaml:"group" json:"group" mapstructure:"group" env:"OUTPUT_ROCKETMQ_GROUP"`
	// Retry 发送失败重试次数
	Retry int `yaml:"retry" json:"retry" mapstructure:"retry" env:"OUTPUT_ROCKETMQ_RETRY"`
}

// DefaultRocketMQConfig 返回默认 RocketMQ 配置
func DefaultRocketMQConfig() RocketMQConfig {
	return RocketMQConfig{
		Servers: []string{"127.0.0.1:9876"},
		Topic:   "binlog-queries",
		Group:   "binlogidx",
		Retry:   3,
	}
}

// RocketMQOutput RocketMQ 实现，满足 IOutput 接口
type RocketMQOutput struct {
	cfg      RocketMQConfig
	producer rocketmq.Producer
}

// NewRocketMQOutput 创建 RocketMQOutput 并填充默认值
func NewRocketMQOutput(cfg RocketMQConfig) (*RocketMQOutput, error) {
	def := DefaultRocketMQConfig()
	if len(cfg.Servers) == 0 {
		cfg.Servers = def.Servers
	}
	if cfg.Topic == "" {
		cfg.Topic = def.Topic
	}
	if cfg.Group == "" {
		cfg.Group = def.Group
	}

	options := []producer.Option{
		producer.WithNameServer(cfg.Servers),
		producer.WithGroupName(cfg.Group),
		producer.WithRetry(cfg.Retry),
	}
	p, err := rocketmq.NewProducer(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create RocketMQ producer: %w", err)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("failed to start RocketMQ producer: %w", err)
	}
	return &RocketMQOutput{
		cfg:      cfg,
		producer: p,
	}, nil
}

// Send 将 Query 序列化为 JSON 并发送到 RocketMQ
func (r *RocketMQOutput) Send(ctx context.Context, query types.Query) error {
	data, err := json.Marshal(query)
	if err != nil {
		return err
	}
	msg := &primitive.Message{
		Topic: r.cfg.Topic,
		Body:  data,
	}
	_, err = r.producer.SendSync(ctx, msg)
	return err
}

// Close 关闭 RocketMQ 生产者
func (r *RocketMQOutput) Close() error {
	return r.producer.Shutdown()
}
