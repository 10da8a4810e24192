package repo

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

type InMemoryBillRepository struct {
	mu     sync.Mutex
	bills  []models.Bill
	nextID int
}

func NewInMemoryBillRepository() *InMemoryBillRepository {
	return &InMemoryBillRepository{
		bills:  []models.Bill{},
		nextID: 1,
	}
}

func (r *InMemoryBillRepository) Create(_ context.Context, bill models.Bill) (models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bills {
		if b.BillNumber == bill.BillNumber {
			return models.Bill{}, ErrDuplicatedValueUnique
		}
	}
	bill.ID = r.nextID
	bill.Items = slices.Clone(bill.Items)
	r.nextID++
	r.bills = append(r.bills, bill)
	return bill, nil
}

func (r *InMemoryBillRepository) ListByUser(_ context.Context, userID int, bf BillFilter) ([]models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Bill
	for _, b := range r.bills {
		if b.UserID == userID && bf.matches(b.Date) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *InMemoryBillRepository) Count(_ context.Context, userID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bills {
		if b.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *InMemoryBillRepository) Clear() {
	r.mu.Lock()
	r.bills = []models.Bill{}
	r.mu.Unlock()
}
