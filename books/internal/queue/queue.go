package queue

import (
	"context"

	"github.com/Astemirdum/books-service/books/internal/model"
	cb "github.com/Astemirdum/books-service/pkg/circuit_breaker"
	"github.com/Astemirdum/books-service/pkg/serializer"
	"github.com/IBM/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, event model.BookEvent) error
	Close() error
}

type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       cb.CircuitBreaker
	log      *zap.Logger
}

func NewPublisher(producer sarama.SyncProducer, topic string, breaker cb.CircuitBreaker, log *zap.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		cb:       breaker,
		log:      log.Named("queue"),
	}
}

func (p *kafkaPublisher) Publish(_ context.Context, event model.BookEvent) error {
	data, err := serializer.JSON.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.BookID),
		Value: sarama.ByteEncoder(data),
	}
	return p.cb.Call(func() error {
		partition, offset, err := p.producer.SendMessage(msg)
		if err != nil {
			return errors.Wrap(err, "producer.SendMessage")
		}
		p.log.Debug("Publish",
			zap.String("type", string(event.Type)),
			zap.String("book_id", event.BookID),
			zap.Int32("partition", partition),
			zap.Int64("offset", offset))
		return nil
	})
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type nopPublisher struct{}

// NewNopPublisher is used when no broker is configured.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, model.BookEvent) error { return nil }

func (nopPublisher) Close() error { return nil }
