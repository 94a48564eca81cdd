package output

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

// KafkaConfig Kafka 配置实体，用于初始化 KafkaOutput
type KafkaConfig struct {
	// Brokers Kafka broker 列表，例如 ["127.0.0.1:9092"]
	Brokers []string `yaml:"brokers" json:"brokers" mapstructure:"brokers" env:"OUTPUT_KAFKA_BROKERS"`

	// Topic 要发送的 Kafka topic 名称
	Topic string `yaml:"topic" json:"topic" mapstructure:"topic" env:"OUTPUT_KAFKA_TOPIC" envDefault:"binlog-queries"`
}

// DefaultKafkaConfig 返回 Kafka 默认配置
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers: []string{"127.0.0.1:9092"},
		Topic:   "binlog-queries",
	}
}

// KafkaOutput Kafka 实现，满足 IOutput 接口
type KafkaOutput struct {
	// writer Kafka 写入器
	writer *kafka.Writer
	// config Kafka 配置实体
	config KafkaConfig
}

// NewKafkaOutput 使用配置实体创建 KafkaOutput
func NewKafkaOutput(cfg KafkaConfig) (*KafkaOutput, error) {
	def := DefaultKafkaConfig()
	if len(cfg.Brokers) == 0 {
		cfg.Brokers = def.Brokers
	}
	if cfg.Topic == "" {
		cfg.Topic = def.Topic
	}
	writer := &kafka.Writer{
		Addr:  kafka.TCP(cfg.Brokers...),
		Topic: cfg.Topic,
		// 分区选择策略，LeastBytes 表示选择当前负载最小的分区
		Balancer: &kafka.LeastBytes{},
		// 等待所有副本确认消息已写入
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
	// 尝试与第一个 broker 建立连接，确认可用
	conn, err := kafka.DialLeader(context.Background(), "tcp", cfg.Brokers[0], cfg.Topic, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka broker %s: %w", cfg.Brokers[0], err)
	}
	defer func() {
		_ = conn.Close()
	}()
	return &KafkaOutput{
		writer: writer,
		config: cfg,
	}, nil
}

// Send 将 Query 序列化为 JSON 并发送到 Kafka
func (k *KafkaOutput) Send(ctx context.Context, query types.Query) error {
	value, err := json.Marshal(query)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Value: value,
		Time:  time.Now(),
	})
}

// Close 关闭 Kafka 连接
func (k *KafkaOutput) Close() error {
	return k.writer.Close()
}
