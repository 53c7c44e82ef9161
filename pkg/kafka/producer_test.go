package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnomalyLens/pkg/config"
)

type memSink struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (m *memSink) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *memSink) Close() error {
	m.closed = true
	return nil
}

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(WithTopic("t"))
	assert.ErrorContains(t, err, "brokers")
	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}))
	assert.ErrorContains(t, err, "topic")
}

func TestNewProducer_FromConfig(t *testing.T) {
	cfg := config.KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "anomaly.results",
		RequiredAcks: 1,
		Compression:  "zstd",
	}
	cfg.Producer.MaxAttempts = 2
	cfg.Producer.Linger = 25 * time.Millisecond

	p, err := NewProducer(OptionsFromConfig(cfg)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	w, ok := p.sink.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "anomaly.results", w.Topic)
	assert.Equal(t, kafka.RequiredAcks(1), w.RequiredAcks)
	assert.Equal(t, 2, w.MaxAttempts)
	assert.Equal(t, 25*time.Millisecond, w.BatchTimeout)
	assert.Equal(t, 100, w.BatchSize)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Nil(t, w.Completion)
	assert.Equal(t, "anomaly.results", p.Topic())
}

func TestProducer_Publish(t *testing.T) {
	sink := &memSink{}
	p := &Producer{sink: sink, topic: "anomaly.results", comp: "snappy"}

	err := p.Publish(context.Background(), "SPY", map[string]int{"anomalies": 2}, map[string]string{"strategy": "6"})
	require.NoError(t, err)
	require.Len(t, sink.msgs, 1)
	msg := sink.msgs[0]
	assert.Equal(t, []byte("SPY"), msg.Key)
	assert.JSONEq(t, `{"anomalies":2}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "content-type", msg.Headers[0].Key)
	assert.Equal(t, "strategy", msg.Headers[1].Key)

	sink.err = errors.New("leader not available")
	assert.ErrorContains(t, p.Publish(context.Background(), "SPY", 1, nil), "write message")

	sink.err = nil
	assert.ErrorContains(t, p.Publish(context.Background(), "SPY", make(chan int), nil), "marshal value")

	require.NoError(t, p.Close())
	assert.True(t, sink.closed)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Snappy, parseCompression("unknown"))
}
