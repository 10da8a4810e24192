// Package events publishes notification lifecycle events to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

const EventNotificationCreated = "notification.created"

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type NotificationCreatedPayload struct {
	NotificationID int                     `json:"notification_id"`
	UserID         int                     `json:"user_id"`
	ProductID      int                     `json:"product_id"`
	Type           models.NotificationType `json:"type"`
	Message        string                  `json:"message"`
	SMSDelivered   bool                    `json:"sms_delivered"`
}

type Publisher interface {
	NotificationCreated(ctx context.Context, n models.Notification, smsDelivered bool) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) NotificationCreated(context.Context, models.Notification, bool) error { return nil }

func newEnvelope(producer, eventType string, occurredAt time.Time, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   occurredAt.UTC(),
		Producer:     producer,
		Payload:      raw,
	}, nil
}
