package kafka

import (
	"time"

	"AnomalyLens/pkg/config"
	applogger "AnomalyLens/pkg/logger"
)

// ProducerOption configures Producer.
type ProducerOption func(*ProducerConfig)

// ProducerConfig holds producer configuration.
type ProducerConfig struct {
	Brokers         []string
	Topic           string
	RequiredAcks    int
	Compression     string
	MaxAttempts     int
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	BatchSize       int
	BatchBytes      int
	BatchTimeout    time.Duration
	Async           bool
	HashByKey       bool
	AutoCreateTopic bool
	Logger          *applogger.Logger
}

func WithBrokers(brokers []string) ProducerOption {
	return func(c *ProducerConfig) { c.Brokers = brokers }
}

func WithTopic(topic string) ProducerOption {
	return func(c *ProducerConfig) { c.Topic = topic }
}

// WithRequiredAcks sets required acknowledgements (-1 = all).
func WithRequiredAcks(acks int) ProducerOption {
	return func(c *ProducerConfig) { c.RequiredAcks = acks }
}

// WithCompression accepts gzip, snappy, lz4 or zstd.
func WithCompression(compression string) ProducerOption {
	return func(c *ProducerConfig) { c.Compression = compression }
}

// WithBatching sets how many messages or bytes are grouped, and how long the writer lingers.
func WithBatching(size, bytes int, linger time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if size > 0 {
			c.BatchSize = size
		}
		if bytes > 0 {
			c.BatchBytes = bytes
		}
		if linger > 0 {
			c.BatchTimeout = linger
		}
	}
}

// WithRetries sets writer attempts and per-attempt timeouts.
func WithRetries(attempts int, write, read time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if attempts > 0 {
			c.MaxAttempts = attempts
		}
		if write > 0 {
			c.WriteTimeout = write
		}
		if read > 0 {
			c.ReadTimeout = read
		}
	}
}

// WithAsync makes Publish return once the message is queued.
func WithAsync(async bool) ProducerOption {
	return func(c *ProducerConfig) { c.Async = async }
}

// WithHashByKey keeps all events of one symbol on one partition.
func WithHashByKey(hash bool) ProducerOption {
	return func(c *ProducerConfig) { c.HashByKey = hash }
}

func WithAutoCreateTopic(on bool) ProducerOption {
	return func(c *ProducerConfig) { c.AutoCreateTopic = on }
}

func WithLogger(l *applogger.Logger) ProducerOption {
	return func(c *ProducerConfig) { c.Logger = l }
}

// OptionsFromConfig translates the kafka config section into producer options.
func OptionsFromConfig(cfg config.KafkaConfig) []ProducerOption {
	return []ProducerOption{
		WithBrokers(cfg.Brokers),
		WithTopic(cfg.Topic),
		WithRequiredAcks(cfg.RequiredAcks),
		WithCompression(cfg.Compression),
		WithBatching(cfg.Producer.BatchSize, cfg.Producer.BatchBytes, cfg.Producer.Linger),
		WithRetries(cfg.Producer.MaxAttempts, cfg.Producer.WriteTimeout, cfg.Producer.ReadTimeout),
		WithAsync(cfg.Producer.Async),
		WithAutoCreateTopic(cfg.AutoCreateTopic),
	}
}
