package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
	"github.com/segmentio/kafka-go"
)

var ErrPublisherFull = errors.New("event buffer full")

// KafkaPublisher buffers events and writes them from a single goroutine.
type KafkaPublisher struct {
	w        *kafka.Writer
	producer string
	inbox    chan kafka.Message
	closeCh  chan struct{}
}

func NewKafkaPublisher(brokers []string, topic, producer string, buf int) *KafkaPublisher {
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		producer: producer,
		inbox:    make(chan kafka.Message, buf),
		closeCh:  make(chan struct{}),
	}
}

// Start runs the write loop until Close is called.
func (p *KafkaPublisher) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := p.w.WriteMessages(wctx, m); err != nil {
				slog.Error("failed to publish event", "topic", p.w.Topic, "error", err)
			}
			cancel()
		}
		if err := p.w.Close(); err != nil {
			slog.Warn("failed to close kafka writer", "error", err)
		}
	}()
}

func (p *KafkaPublisher) NotificationCreated(_ context.Context, n models.Notification, smsDelivered bool) error {
	env, err := newEnvelope(p.producer, EventNotificationCreated, n.Timestamp, NotificationCreatedPayload{
		NotificationID: n.ID,
		UserID:         n.UserID,
		ProductID:      n.ProductID,
		Type:           n.Type,
		Message:        n.Message,
		SMSDelivered:   smsDelivered,
	})
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(n.UserID)),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(env.EventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrPublisherFull
	}
}

// Close stops accepting events and waits for the buffer to drain.
func (p *KafkaPublisher) Close() {
	close(p.inbox)
	<-p.closeCh
}
