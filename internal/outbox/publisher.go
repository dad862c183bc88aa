package outbox

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	applog "libris/internal/log"
	"libris/internal/repos"
)

// Publisher delivers one outbox event downstream.
type Publisher interface {
	Publish(ctx context.Context, ev repos.OutboxEvent) error
	Close() error
}

// KafkaPublisher writes events to a topic keyed by aggregate id, so every
// event of one loan lands on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev repos.OutboxEvent) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.AggregateID),
		Value: []byte(ev.Payload),
		Time:  ev.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.ID)},
			{Key: "event_type", Value: []byte(ev.EventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// LogPublisher writes events to the process log. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, ev repos.OutboxEvent) error {
	applog.L().Info("outbox.event",
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.EventType),
		zap.String("aggregate_id", ev.AggregateID),
		zap.String("payload", ev.Payload),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
