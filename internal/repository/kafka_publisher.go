package repository

import (
	"context"

	"CryptoLiq/internal/domain/models"
	domrepo "CryptoLiq/internal/domain/repository"
	pkgkafka "CryptoLiq/pkg/kafka"
)

// KafkaPublisher emits every prediction to a topic, keyed by coin so one
// coin's predictions stay ordered.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, pred *models.Prediction) error {
	key := pred.Coin
	if key == "" {
		key = pred.ID
	}
	return p.producer.Publish(ctx, p.topic, []byte(key), pred)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.PredictionSink = (*KafkaPublisher)(nil)
