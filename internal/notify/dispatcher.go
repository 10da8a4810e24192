// Package notify decides when expiry and reorder SMS notifications are due,
// sends them and records them.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/clock"
	"github.com/rogerio-castellano/stock-notifier/internal/events"
	"github.com/rogerio-castellano/stock-notifier/internal/lastseen"
	"github.com/rogerio-castellano/stock-notifier/internal/metrics"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
	"github.com/rogerio-castellano/stock-notifier/internal/repo"
	"github.com/rogerio-castellano/stock-notifier/internal/sms"
)

type Deps struct {
	Products      repo.ProductRepository
	Notifications repo.NotificationRepository
	Users         repo.UserRepository
	SMS           sms.Sender
	// Throttle holds the last reorder notification time per product.
	Throttle lastseen.Store
	Clock    clock.Clock
	Events   events.Publisher
	Metrics  *metrics.Sweeps
	// From is the sender number for outgoing SMS.
	From string
}

type Dispatcher struct {
	products      repo.ProductRepository
	notifications repo.NotificationRepository
	users         repo.UserRepository
	sms           sms.Sender
	throttle      lastseen.Store
	clock         clock.Clock
	events        events.Publisher
	metrics       *metrics.Sweeps
	from          string
}

func NewDispatcher(d Deps) *Dispatcher {
	if d.SMS == nil {
		d.SMS = sms.Disabled{}
	}
	if d.Throttle == nil {
		d.Throttle = lastseen.NewMemoryStore()
	}
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	return &Dispatcher{
		products:      d.Products,
		notifications: d.Notifications,
		users:         d.Users,
		sms:           d.SMS,
		throttle:      d.Throttle,
		clock:         d.Clock,
		events:        d.Events,
		metrics:       d.Metrics,
		from:          d.From,
	}
}

func throttleKey(productID int) string {
	return "reorder:" + strconv.Itoa(productID)
}

// owners memoizes user lookups for the duration of a sweep.
type owners struct {
	users repo.UserRepository
	cache map[int]models.User
}

func (d *Dispatcher) newOwners() *owners {
	return &owners{users: d.users, cache: map[int]models.User{}}
}

func (o *owners) get(ctx context.Context, id int) (models.User, error) {
	if u, ok := o.cache[id]; ok {
		return u, nil
	}
	u, err := o.users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	o.cache[id] = u
	return u, nil
}

func (d *Dispatcher) record(result *SweepResult, items ...ItemResult) {
	for _, it := range items {
		d.metrics.Outcome(string(it.Kind), string(it.Status))
		if it.Status == StatusFailed {
			slog.Error("notification item failed", "product_id", it.ProductID, "kind", it.Kind, "error", it.Err)
		}
	}
	result.Items = append(result.Items, items...)
}

// RunExpirySweep evaluates every product with an expiry date and a notify
// threshold. A product may yield both an expiry reminder and the one-off
// expired notice in the same sweep.
func (d *Dispatcher) RunExpirySweep(ctx context.Context) (SweepResult, error) {
	defer d.metrics.ObserveSweep("expiry", time.Now())

	products, err := d.products.ListExpiring(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to list expiring products: %w", err)
	}
	slog.Debug("expiry sweep started", "products", len(products))

	now := d.clock.Now()
	cache := d.newOwners()
	var result SweepResult
	for _, p := range products {
		d.record(&result, d.expiryItems(ctx, p, now, cache)...)
	}

	slog.Info("expiry sweep completed", "notifications_sent", result.NotificationsSent(), "failed", result.Failed())
	return result, nil
}

func (d *Dispatcher) expiryItems(ctx context.Context, p models.Product, now time.Time, cache *owners) []ItemResult {
	owner, err := cache.get(ctx, p.UserID)
	if err != nil {
		status := StatusFailed
		if errors.Is(err, repo.ErrUserNotFound) {
			status = StatusSkipped
			err = nil
		}
		return []ItemResult{{ProductID: p.ID, Kind: KindExpiry, Status: status, Err: err}}
	}

	items := []ItemResult{d.expiryReminder(ctx, &p, owner, now)}
	if HasExpired(*p.ExpirationDate, now) {
		items = append(items, d.expiredNotice(ctx, &p, owner, now))
	}
	return items
}

func (d *Dispatcher) expiryReminder(ctx context.Context, p *models.Product, owner models.User, now time.Time) ItemResult {
	daysLeft := DaysBetween(now, *p.ExpirationDate)
	if daysLeft > *p.Notify {
		return ItemResult{ProductID: p.ID, Kind: KindExpiry, Status: StatusSkipped}
	}
	if !ShouldSendExpiryNotification(p.LastNotificationSent, now, NotificationInterval(daysLeft)) {
		slog.Debug("expiry reminder throttled", "product_id", p.ID, "days_left", daysLeft)
		return ItemResult{ProductID: p.ID, Kind: KindExpiry, Status: StatusSkipped}
	}

	item := d.deliver(ctx, owner, *p, KindExpiry, models.NotificationExpiry, expiryMessage(p.Name, daysLeft), now)
	d.markProductNotified(ctx, p, &item, now)
	return item
}

func (d *Dispatcher) expiredNotice(ctx context.Context, p *models.Product, owner models.User, now time.Time) ItemResult {
	exists, err := d.notifications.ExistsForProductWithMessage(ctx, p.ID, expiredPhrase)
	if err != nil {
		return ItemResult{ProductID: p.ID, Kind: KindExpired, Status: StatusFailed,
			Err: fmt.Errorf("failed to look up expired notice: %w", err)}
	}
	if exists {
		return ItemResult{ProductID: p.ID, Kind: KindExpired, Status: StatusSkipped}
	}

	item := d.deliver(ctx, owner, *p, KindExpired, models.NotificationExpiry, expiredMessage(p.Name), now)
	d.markProductNotified(ctx, p, &item, now)
	return item
}

func (d *Dispatcher) markProductNotified(ctx context.Context, p *models.Product, item *ItemResult, now time.Time) {
	if item.Status != StatusSent {
		return
	}
	if err := d.products.SetLastNotificationSent(ctx, p.ID, now); err != nil {
		item.Status = StatusFailed
		item.Err = fmt.Errorf("failed to update last notification time: %w", err)
		return
	}
	p.LastNotificationSent = &now
}

// RunReorderSweep evaluates every product at or below its reorder level,
// honoring the per-product reorder cooldown.
func (d *Dispatcher) RunReorderSweep(ctx context.Context) (SweepResult, error) {
	defer d.metrics.ObserveSweep("reorder", time.Now())

	products, err := d.products.ListWithReorderLevel(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to list products: %w", err)
	}

	now := d.clock.Now()
	cache := d.newOwners()
	var result SweepResult
	for _, p := range products {
		if !p.BelowReorderLevel() {
			continue
		}
		owner, err := cache.get(ctx, p.UserID)
		if err != nil {
			item := ItemResult{ProductID: p.ID, Kind: KindReorder, Status: StatusFailed, Err: err}
			if errors.Is(err, repo.ErrUserNotFound) {
				item.Status, item.Err = StatusSkipped, nil
			}
			d.record(&result, item)
			continue
		}
		d.record(&result, d.reorder(ctx, p, owner, p.Quantity, p.ReorderLevel, false, now))
	}

	slog.Info("reorder sweep completed", "notifications_sent", result.NotificationsSent(), "failed", result.Failed())
	return result, nil
}

// CheckReorderForProduct evaluates a single product against the supplied
// quantity snapshot instead of the stored one, so a caller that has just
// changed the stock gets a decision on the value it wrote.
func (d *Dispatcher) CheckReorderForProduct(ctx context.Context, check ReorderCheck) (ReorderOutcome, error) {
	p, err := d.products.GetByID(ctx, check.ProductID)
	if err != nil {
		return ReorderOutcome{}, fmt.Errorf("failed to load product %d: %w", check.ProductID, err)
	}
	if check.Quantity > check.ReorderLevel {
		return ReorderOutcome{Status: StatusAboveLevel}, nil
	}

	owner, err := d.users.GetByID(ctx, p.UserID)
	if err != nil {
		return ReorderOutcome{}, fmt.Errorf("failed to load owner of product %d: %w", p.ID, err)
	}

	item := d.reorder(ctx, p, owner, check.Quantity, check.ReorderLevel, check.ForceCheck, d.clock.Now())
	d.record(&SweepResult{}, item)
	if item.Status == StatusFailed {
		return ReorderOutcome{}, item.Err
	}
	return ReorderOutcome{Status: item.Status, SMSDelivered: item.SMSDelivered, Notification: item.Notification}, nil
}

func (d *Dispatcher) reorder(ctx context.Context, p models.Product, owner models.User, quantity, reorderLevel int, forceCheck bool, now time.Time) ItemResult {
	key := throttleKey(p.ID)

	var lastSent *time.Time
	if !forceCheck {
		t, ok, err := d.throttle.Get(ctx, key)
		if err != nil {
			return ItemResult{ProductID: p.ID, Kind: KindReorder, Status: StatusFailed, Err: err}
		}
		if ok {
			lastSent = &t
		}
	}
	if !ShouldSendReorderNotification(lastSent, now, forceCheck) {
		slog.Debug("reorder notification throttled", "product_id", p.ID)
		return ItemResult{ProductID: p.ID, Kind: KindReorder, Status: StatusSkipped}
	}

	item := d.deliver(ctx, owner, p, KindReorder, models.NotificationReorder,
		reorderMessage(owner.Username, p.Name, quantity, reorderLevel), now)
	if item.Status == StatusSent {
		if err := d.throttle.Set(ctx, key, now); err != nil {
			slog.Warn("failed to record reorder throttle", "product_id", p.ID, "error", err)
		}
	}
	return item
}

// deliver sends the SMS and stores the notification. The record is written
// even when the SMS fails, so each attempt leaves exactly one record.
func (d *Dispatcher) deliver(ctx context.Context, owner models.User, p models.Product, kind Kind, typ models.NotificationType, message string, now time.Time) ItemResult {
	delivered := true
	receipt, err := d.sms.Send(ctx, sms.Message{To: owner.Contact, From: d.from, Body: message})
	if err != nil {
		delivered = false
		d.metrics.SMSFailed()
		slog.Warn("failed to send sms", "product_id", p.ID, "user_id", owner.ID, "kind", kind, "error", err)
	} else {
		slog.Info("sms sent", "product_id", p.ID, "user_id", owner.ID, "kind", kind, "sid", receipt.ID)
	}

	n, err := d.notifications.Create(ctx, models.Notification{
		UserID:      owner.ID,
		ProductID:   p.ID,
		ProductName: p.Name,
		Type:        typ,
		Message:     message,
		Timestamp:   now,
	})
	if err != nil {
		return ItemResult{ProductID: p.ID, Kind: kind, Status: StatusFailed,
			Err: fmt.Errorf("failed to save notification: %w", err)}
	}

	if err := d.events.NotificationCreated(ctx, n, delivered); err != nil {
		slog.Warn("failed to publish notification event", "notification_id", n.ID, "error", err)
	}
	return ItemResult{ProductID: p.ID, Kind: kind, Status: StatusSent, SMSDelivered: delivered, Notification: &n}
}

// ListNotifications returns the user's notifications newest first, after
// dropping the ones whose product no longer exists for that user.
func (d *Dispatcher) ListNotifications(ctx context.Context, userID int) ([]models.Notification, error) {
	d.cleanupNotifications(ctx, userID)

	notifications, err := d.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (d *Dispatcher) cleanupNotifications(ctx context.Context, userID int) {
	notifications, err := d.notifications.ListByUser(ctx, userID)
	if err != nil {
		slog.Error("failed to load notifications for cleanup", "user_id", userID, "error", err)
		return
	}
	ids, err := d.products.IDsByUser(ctx, userID)
	if err != nil {
		slog.Error("failed to load product ids for cleanup", "user_id", userID, "error", err)
		return
	}

	existing := make(map[int]bool, len(ids))
	for _, id := range ids {
		existing[id] = true
	}
	var orphans []int
	for _, n := range notifications {
		if n.ProductID != 0 && !existing[n.ProductID] {
			orphans = append(orphans, n.ID)
		}
	}
	if len(orphans) == 0 {
		return
	}

	deleted, err := d.notifications.DeleteMany(ctx, orphans)
	if err != nil {
		slog.Error("failed to clean up notifications", "user_id", userID, "error", err)
		return
	}
	slog.Info("cleaned up notifications for deleted products", "user_id", userID, "deleted", deleted)
}

func (d *Dispatcher) DeleteNotification(ctx context.Context, userID, id int) error {
	return d.notifications.Delete(ctx, userID, id)
}

func (d *Dispatcher) DeleteNotificationsForProduct(ctx context.Context, userID, productID int) (int, error) {
	return d.notifications.DeleteByProduct(ctx, userID, productID)
}

func (d *Dispatcher) MarkRead(ctx context.Context, userID, id int) error {
	return d.notifications.MarkRead(ctx, userID, id)
}
