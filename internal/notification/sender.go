package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wichananm65/storefront/internal/order"
)

const eventType = "order.status_changed"

// LogSender writes events to the log. It is used when no broker is
// configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, ev order.StatusEvent) error {
	s.logger.Info("order notification",
		zap.String("event_type", eventType),
		zap.String("order_id", ev.OrderID),
		zap.Int("owner_id", ev.OwnerID),
		zap.String("previous_status", string(ev.PreviousStatus)),
		zap.String("new_status", string(ev.NewStatus)),
		zap.Time("occurred_at", ev.OccurredAt),
	)
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes events as JSON keyed by order id, so every event of
// one order lands on the same partition in order. The email service
// consumes the topic.
type KafkaSender struct {
	writer messageWriter
}

func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

type envelope struct {
	Type string `json:"type"`
	order.StatusEvent
}

func (s *KafkaSender) Send(ctx context.Context, ev order.StatusEvent) error {
	data, err := json.Marshal(envelope{Type: eventType, StatusEvent: ev})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.OrderID),
		Value: data,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
