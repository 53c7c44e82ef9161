package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	applogger "AnomalyLens/pkg/logger"
)

// messageSink is the part of *kafka.Writer the producer uses.
type messageSink interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes JSON events to a single topic.
type Producer struct {
	sink  messageSink
	topic string
	comp  string
	l     *applogger.Logger
}

// NewProducer creates a producer bound to the configured topic.
func NewProducer(opts ...ProducerOption) (*Producer, error) {
	cfg := &ProducerConfig{
		RequiredAcks: -1,
		Compression:  "snappy",
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
		BatchSize:    100,
		BatchBytes:   1 << 20,
		BatchTimeout: 10 * time.Millisecond,
		HashByKey:    true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = applogger.Nop()
	}

	initProducerMetricsOnce()

	var bal kafka.Balancer = &kafka.LeastBytes{}
	if cfg.HashByKey {
		bal = &kafka.Hash{}
	}
	p := &Producer{topic: cfg.Topic, comp: cfg.Compression, l: cfg.Logger}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               bal,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            parseCompression(cfg.Compression),
		MaxAttempts:            cfg.MaxAttempts,
		WriteTimeout:           cfg.WriteTimeout,
		ReadTimeout:            cfg.ReadTimeout,
		BatchSize:              cfg.BatchSize,
		BatchBytes:             int64(cfg.BatchBytes),
		BatchTimeout:           cfg.BatchTimeout,
		Async:                  cfg.Async,
		AllowAutoTopicCreation: cfg.AutoCreateTopic,
	}
	if cfg.Async {
		w.Completion = p.onAsyncCompletion
	}
	p.sink = w
	return p, nil
}

// Topic returns the topic every message is written to.
func (p *Producer) Topic() string { return p.topic }

// Publish JSON-encodes value and writes it under key. In async mode a nil
// return means the message was queued, and delivery failures are logged.
func (p *Producer) Publish(ctx context.Context, key string, value interface{}, headers map[string]string) error {
	start := time.Now()
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(key),
		Value:   v,
		Time:    start.UTC(),
		Headers: toHeaders(headers),
	}
	err = p.sink.WriteMessages(ctx, msg)
	observeProducerMetrics(p.topic, p.comp, len(v), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	if p.sink == nil {
		return nil
	}
	return p.sink.Close()
}

func (p *Producer) onAsyncCompletion(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	producerErrsTotal.WithLabelValues(p.topic, "async").Add(float64(len(msgs)))
	p.l.Error("kafka async delivery failed",
		applogger.String("topic", p.topic),
		applogger.Int("messages", len(msgs)),
		applogger.Error(err),
	)
}

func toHeaders(h map[string]string) []kafka.Header {
	if len(h) == 0 {
		return nil
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]kafka.Header, 0, len(keys)+1)
	out = append(out, kafka.Header{Key: "content-type", Value: []byte("application/json")})
	for _, k := range keys {
		out = append(out, kafka.Header{Key: k, Value: []byte(h[k])})
	}
	return out
}

func parseCompression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return kafka.Snappy
	}
}

var (
	producerMsgsTotal   *prometheus.CounterVec
	producerErrsTotal   *prometheus.CounterVec
	producerBytesTotal  *prometheus.CounterVec
	producerLatencyHist *prometheus.HistogramVec
	producerOnce        sync.Once
)

func initProducerMetricsOnce() {
	producerOnce.Do(func() {
		producerMsgsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anomalylens",
			Subsystem: "kafka",
			Name:      "messages_total",
			Help:      "Result events handed to the writer.",
		}, []string{"topic", "compression", "result"})
		producerErrsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anomalylens",
			Subsystem: "kafka",
			Name:      "errors_total",
			Help:      "Failed writes, by mode.",
		}, []string{"topic", "mode"})
		producerBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "anomalylens",
			Subsystem: "kafka",
			Name:      "bytes_total",
			Help:      "Encoded payload bytes.",
		}, []string{"topic"})
		producerLatencyHist = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "anomalylens",
			Subsystem: "kafka",
			Name:      "publish_seconds",
			Help:      "WriteMessages latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"topic"})
	})
}

func observeProducerMetrics(topic, comp string, n int, dur time.Duration, err error) {
	if producerMsgsTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
		producerErrsTotal.WithLabelValues(topic, "sync").Inc()
	}
	producerMsgsTotal.WithLabelValues(topic, comp, result).Inc()
	producerBytesTotal.WithLabelValues(topic).Add(float64(n))
	producerLatencyHist.WithLabelValues(topic).Observe(dur.Seconds())
}
