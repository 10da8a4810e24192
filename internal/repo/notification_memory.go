package repo

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type InMemoryNotificationRepository struct {
	mu            sync.Mutex
	notifications []models.Notification
	nextID        int
}

func NewInMemoryNotificationRepository() *InMemoryNotificationRepository {
	return &InMemoryNotificationRepository{
		notifications: []models.Notification{},
		nextID:        1,
	}
}

func (r *InMemoryNotificationRepository) Create(_ context.Context, n models.Notification) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = r.nextID
	r.nextID++
	r.notifications = append(r.notifications, n)
	return n, nil
}

func (r *InMemoryNotificationRepository) ListByUser(_ context.Context, userID int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *InMemoryNotificationRepository) ExistsForProductWithMessage(_ context.Context, productID int, phrase string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ProductID == productID && strings.Contains(n.Message, phrase) {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryNotificationRepository) Delete(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (r *InMemoryNotificationRepository) DeleteMany(_ context.Context, ids []int) (int, error) {
	return r.deleteWhere(func(n models.Notification) bool {
		return slices.Contains(ids, n.ID)
	}), nil
}

func (r *InMemoryNotificationRepository) DeleteByProduct(_ context.Context, userID, productID int) (int, error) {
	return r.deleteWhere(func(n models.Notification) bool {
		return n.UserID == userID && n.ProductID == productID
	}), nil
}

func (r *InMemoryNotificationRepository) MarkRead(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			r.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (r *InMemoryNotificationRepository) CountUnread(_ context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryNotificationRepository) Clear() {
	r.mu.Lock()
	r.notifications = []models.Notification{}
	r.mu.Unlock()
}

func (r *InMemoryNotificationRepository) deleteWhere(match func(models.Notification) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.notifications[:0]
	deleted := 0
	for _, n := range r.notifications {
		if match(n) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	r.notifications = kept
	return deleted
}
