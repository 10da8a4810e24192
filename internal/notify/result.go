package notify

import "github.com/rogerio-castellano/stock-notifier/internal/models"

type Status string

const (
	StatusSent       Status = "sent"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
	StatusAboveLevel Status = "above_level"
)

// Kind tells apart the three notification decisions taken for a product.
type Kind string

const (
	KindExpiry  Kind = "expiry"
	KindExpired Kind = "expired"
	KindReorder Kind = "reorder"
)

// ItemResult is the outcome of one decision within a sweep.
type ItemResult struct {
	ProductID    int
	Kind         Kind
	Status       Status
	SMSDelivered bool
	Notification *models.Notification
	Err          error
}

type SweepResult struct {
	Items []ItemResult
}

// NotificationsSent counts items that produced a notification record.
func (r SweepResult) NotificationsSent() int {
	return r.count(StatusSent)
}

func (r SweepResult) Failed() int {
	return r.count(StatusFailed)
}

func (r SweepResult) count(s Status) int {
	n := 0
	for _, it := range r.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}

// ReorderCheck carries the stock snapshot a caller wants evaluated.
type ReorderCheck struct {
	ProductID    int
	Quantity     int
	ReorderLevel int
	ForceCheck   bool
}

type ReorderOutcome struct {
	Status       Status
	SMSDelivered bool
	Notification *models.Notification
}
