package output

import (
	"context"
	"encoding/json"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

type PulsarConfig struct {
	URL               string `yaml:"url" json:"url" mapstructure:"url" env:"OUTPUT_PULSAR_URL"`
	Topic             string `yaml:"topic" json:"topic" mapstructure:"topic" env:"OUTPUT_PULSAR_TOPIC"`
	Token             string `yaml:"token" json:"token" mapstructure:"token" env:"OUTPUT_PULSAR_TOKEN"`
	OperationTimeout  int    `yaml:"operation_timeout" json:"operation_timeout" mapstructure:"operation_timeout" env:"OUTPUT_PULSAR_OPERATION_TIMEOUT"`
	ConnectionTimeout int    `yaml:"connection_timeout" json:"connection_timeout" mapstructure:"connection_timeout" env:"OUTPUT_PULSAR_CONNECTION_TIMEOUT"`
}

// DefaultPulsarConfig 返回 Pulsar 默认配置
func DefaultPulsarConfig() PulsarConfig {
	return PulsarConfig{
		URL:               "pulsar://localhost:6650",
		Topic:             "binlog-queries",
		OperationTimeout:  30,
		ConnectionTimeout: 30,
	}
}

type PulsarOutput struct {
	cfg      PulsarConfig
	client   pulsar.Client
	producer pulsar.Producer
}

// NewPulsarOutput initializes the Pulsar client and producer
func NewPulsarOutput(cfg PulsarConfig) (*PulsarOutput, error) {
	def := DefaultPulsarConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.Topic == "" {
		cfg.Topic = def.Topic
	}
	if cfg.OperationTimeout == 0 {
		cfg.OperationTimeout = def.OperationTimeout
	}
	if cfg.ConnectionTimeout == 0 {
		cfg.ConnectionTimeout = def.ConnectionTimeout
	}

	o := &PulsarOutput{cfg: cfg}

	clientOptions := pulsar.ClientOptions{
		URL:               cfg.URL,
		OperationTimeout:  time.Duration(cfg.OperationTimeout) * time.Second,
		ConnectionTimeout: time.Duration(cfg.ConnectionTimeout) * time.Second,
	}
	if cfg.Token != "" {
		clientOptions.Authentication = pulsar.NewAuthenticationToken(cfg.Token)
	}

	client, err := pulsar.NewClient(clientOptions)
	if err != nil {
		return nil, err
	}
	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: cfg.Topic,
	})
	if err != nil {
		client.Close()
		return nil, err
	}
	o.client = client
	o.producer = producer
	return o, nil
}

// Send sends a query to Pulsar
func (p *PulsarOutput) Send(ctx context.Context, query types.Query) error {
	payload, err := json.Marshal(query)
	if err != nil {
		return err
	}
	_, err = p.producer.Send(ctx, &pulsar.ProducerMessage{
		Payload: payload,
	})
	return err
}

// Close closes the producer and client
func (p *PulsarOutput) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	if p.client != nil {
		p.client.Close()
	}
	return nil
}
