package kafka

import (
	"context"
	"crypto/tls"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// Config structure
type Config struct {
	Brokers     []string     `mapstructure:"brokers"`
	UseTLS      bool         `mapstructure:"use_tls"`
	PayoutTopic string       `mapstructure:"payout_topic"`
	Writer      WriterConfig `mapstructure:"writer"`
}

// WriterConfig structure
type WriterConfig struct {
	BatchSize    int  `mapstructure:"batch_size"`
	BatchBytes   int  `mapstructure:"batch_bytes"`
	BatchTimeout int  `mapstructure:"batch_timeout"`
	Async        bool `mapstructure:"async"`
}

// KafkaProducer is the producer side contract used by the payout dispatcher
type KafkaProducer interface {
	WriteMessages(ctx context.Context, msgs ...kafkaGo.Message) error
	Close() error
}

// NewWriter creates a producer for the given topic based on the configuration
func NewWriter(cfg Config, topic string) KafkaProducer {
	transport := &kafkaGo.Transport{}
	if cfg.UseTLS {
		transport.TLS = &tls.Config{}
	}
	writer := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(cfg.Brokers...),
		Topic:        topic,
		Balancer:     &kafkaGo.LeastBytes{},
		BatchSize:    cfg.Writer.BatchSize,
		BatchBytes:   int64(cfg.Writer.BatchBytes),
		BatchTimeout: time.Duration(cfg.Writer.BatchTimeout) * time.Millisecond,
		Async:        cfg.Writer.Async,
		Transport:    transport,
	}
	return writer
}
