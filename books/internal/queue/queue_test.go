package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/books-service/books/internal/model"
	"github.com/Astemirdum/books-service/books/internal/queue"
	cb "github.com/Astemirdum/books-service/pkg/circuit_breaker"
	"github.com/Astemirdum/books-service/pkg/kafka"
	"github.com/Astemirdum/books-service/pkg/serializer"
	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	book := model.Book{ID: "00000000-0000-0000-0000-000000000001", Title: "A", Author: "B", Year: 2020, Pages: 10, Language: "EN"}
	event := model.BookEvent{
		Type:       model.EventCreated,
		BookID:     book.ID,
		Book:       &book,
		OccurredAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != kafka.BooksTopic {
			return errors.Errorf("unexpected topic %s", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != book.ID {
			return errors.Errorf("unexpected key %s", key)
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got model.BookEvent
		if err := serializer.JSON.Unmarshal(value, &got); err != nil {
			return err
		}
		if got.Type != model.EventCreated || got.Book == nil || *got.Book != book {
			return errors.Errorf("unexpected event %s", value)
		}
		return nil
	})

	p := queue.NewPublisher(producer, kafka.BooksTopic, cb.New(10, time.Second, 0.5, 1), zap.NewNop())
	require.NoError(t, p.Publish(context.Background(), event))
	require.NoError(t, p.Close())
}

func TestKafkaPublisher_BreakerOpens(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	breaker := cb.New(1, time.Minute, 1, 1)
	p := queue.NewPublisher(producer, kafka.BooksTopic, breaker, zap.NewNop())

	event := model.BookEvent{Type: model.EventDeleted, BookID: "1"}
	err := p.Publish(context.Background(), event)
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.Equal(t, cb.Open, breaker.State())

	// the producer is not reached while the breaker is open
	require.ErrorIs(t, p.Publish(context.Background(), event), cb.ErrOpenCB)
	require.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	p := queue.NewNopPublisher()
	require.NoError(t, p.Publish(context.Background(), model.BookEvent{}))
	require.NoError(t, p.Close())
}
