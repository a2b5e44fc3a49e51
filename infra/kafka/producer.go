package kafka

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"
)

// Producer publishes insert events through segmentio/kafka-go. Each
// Publish is flushed on its own: the broadcaster records the outcome per
// event, so batching across calls would only add latency.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: newWriter(brokers, topic)}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    1,
		WriteTimeout: 10 * time.Second,

		AllowAutoTopicCreation: true,
	}
}

// Publish writes one keyed event and waits for every in-sync replica.
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
	if err != nil {
		return errors.Wrapf(err, "kafka-go publish to %s", p.writer.Topic)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
