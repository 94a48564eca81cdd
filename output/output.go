package output

import (
	"context"
	"time"

	"github.com/tanmoysrt/binlog-parser-indexer/types"
)

type OutputType string

var (
	OutputTypeStdout   OutputType = "stdout"
	OutputTypeRedis    OutputType = "redis"
	OutputTypeKafka    OutputType = "kafka"
	OutputTypeRabbitMQ OutputType = "rabbitmq"
	OutputTypeRocketMQ OutputType = "rocketmq"
	OutputTypePulsar   OutputType = "pulsar"
	outputs                       = map[OutputType]func(Config) (IOutput, error){}
)

func init() {
	Register(OutputTypeStdout, func(cfg Config) (IOutput, error) {
		return NewStdoutOutput()
	})
	Register(OutputTypeRedis, func(cfg Config) (IOutput, error) {
		return NewRedisOutput(cfg.Redis)
	})
	Register(OutputTypeKafka, func(cfg Config) (IOutput, error) {
		return NewKafkaOutput(cfg.Kafka)
	})
	Register(OutputTypeRabbitMQ, func(cfg Config) (IOutput, error) {
		return NewRabbitMQOutput(cfg.RabbitMQ)
	})
	Register(OutputTypeRocketMQ, func(cfg Config) (IOutput, error) {
		return NewRocketMQOutput(cfg.RocketMQ)
	})
	Register(OutputTypePulsar, func(cfg Config) (IOutput, error) {
		return NewPulsarOutput(cfg.Pulsar)
	})
}

func Register(outputType OutputType, fn func(Config) (IOutput, error)) {
	outputs[outputType] = fn
}

type Config struct {
	Type     OutputType     `yaml:"type" json:"type" mapstructure:"type" env:"OUTPUT_TYPE" envDefault:"stdout"`
	Redis    RedisConfig    `yaml:"redis" json:"redis" mapstructure:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka" json:"kafka" mapstructure:"kafka"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq" json:"rabbitmq" mapstructure:"rabbitmq"`
	RocketMQ RocketMQConfig `yaml:"rocketmq" json:"rocketmq" mapstructure:"rocketmq"`
	Pulsar   PulsarConfig   `yaml:"pulsar" json:"pulsar" mapstructure:"pulsar"`
}

// IOutput Defines the parsed-query publication interface
type IOutput interface {
	// Send Publishes one reconstructed query downstream
	Send(ctx context.Context, query types.Query) error
	// Close Closes the resource
	Close() error
}

func NewOutput(cfg Config) (IOutput, error) {
	creator, exists := outputs[cfg.Type]
	if !exists {
		// Default to Stdout output
		return NewStdoutOutput()
	}
	return creator(cfg)
}

// SendWithRetry Sends with retry functionality
func SendWithRetry(ctx context.Context, output IOutput, query types.Query, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := output.Send(ctx, query); err == nil {
			return nil
		} else {
			lastErr = err
			if i < maxRetries {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
			}
		}
	}
	return lastErr
}
