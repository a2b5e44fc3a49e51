package kafka

import (
	"context"

	"github.com/cockroachdb/errors"
)

const (
	DriverKafkaGo = "kafka-go"
	DriverSarama  = "sarama"
)

var ErrUnknownDriver = errors.New("kafka: unknown driver")

// Publisher is what the broadcaster needs from a message bus.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = (*SaramaProducer)(nil)
)

// NewPublisher builds a publisher for the named client library.
func NewPublisher(driver string, brokers []string, topic string) (Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	switch driver {
	case DriverKafkaGo, "":
		return NewProducer(brokers, topic), nil
	case DriverSarama:
		p, err := NewSaramaProducer(brokers, topic)
		if err != nil {
			return nil, errors.Wrap(err, "sarama producer")
		}
		return p, nil
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "%q", driver)
	}
}
