package repository

import (
	"context"
	"fmt"

	"AnomalyLens/internal/domain/models"
	domrepo "AnomalyLens/internal/domain/repository"
	pkgkafka "AnomalyLens/pkg/kafka"
)

const resultEventType = "anomaly.result.v1"

// messageWriter is the subset of pkg/kafka.Producer the publisher needs.
type messageWriter interface {
	Publish(ctx context.Context, key string, value interface{}, headers map[string]string) error
	Close() error
}

// KafkaResultPublisher emits one summary event per successful run, keyed by symbol.
type KafkaResultPublisher struct {
	producer messageWriter
}

func NewKafkaResultPublisher(producer *pkgkafka.Producer) *KafkaResultPublisher {
	return &KafkaResultPublisher{producer: producer}
}

func (p *KafkaResultPublisher) Publish(ctx context.Context, ev *models.ResultEvent) error {
	if ev == nil {
		return nil
	}
	headers := map[string]string{
		"event-type": resultEventType,
		"strategy":   ev.Strategy,
		"model":      ev.Model,
	}
	if err := p.producer.Publish(ctx, ev.Symbol, ev, headers); err != nil {
		return fmt.Errorf("publish result: %w", err)
	}
	return nil
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopResultPublisher drops every event. Used when kafka is disabled.
type NopResultPublisher struct{}

func (NopResultPublisher) Publish(context.Context, *models.ResultEvent) error { return nil }
func (NopResultPublisher) Close() error                                     { return nil }

var (
	_ domrepo.ResultPublisher = (*KafkaResultPublisher)(nil)
	_ domrepo.ResultPublisher = NopResultPublisher{}
)
