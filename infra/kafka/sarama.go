package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// SaramaProducer publishes through IBM/sarama's synchronous producer.
type SaramaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func SaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	return cfg
}

func NewSaramaProducer(brokers []string, topic string) (*SaramaProducer, error) {
	producer, err := sarama.NewSyncProducer(brokers, SaramaConfig())
	if err != nil {
		return nil, err
	}
	return NewSaramaProducerFrom(producer, topic), nil
}

// NewSaramaProducerFrom wraps an existing producer, e.g. sarama's mocks.
func NewSaramaProducerFrom(producer sarama.SyncProducer, topic string) *SaramaProducer {
	return &SaramaProducer{producer: producer, topic: topic}
}

// Publish sends one message. sarama's sync producer does not take a
// context, so cancellation is only checked before sending.
func (p *SaramaProducer) Publish(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.ByteEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	return err
}

func (p *SaramaProducer) Close() error {
	return p.producer.Close()
}
