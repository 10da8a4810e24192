// Package billing records bills and applies their stock side effects.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rogerio-castellano/stock-notifier/internal/clock"
	"github.com/rogerio-castellano/stock-notifier/internal/lastseen"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
	"github.com/rogerio-castellano/stock-notifier/internal/notify"
	"github.com/rogerio-castellano/stock-notifier/internal/repo"
)

var ErrInvalidBill = errors.New("invalid bill")

// ErrUnknownFilter is returned by ListBills for a filter other than today, week, month or year.
var ErrUnknownFilter = errors.New("unknown bill filter")

// lastBillKey holds the time of the most recent bill in the last-seen store.
const lastBillKey = "bill:last_created"

// SweepSuppression is how long after a bill the periodic reorder sweep stays quiet.
const SweepSuppression = time.Hour

// ReorderChecker is satisfied by *notify.Dispatcher.
type ReorderChecker interface {
	CheckReorderForProduct(ctx context.Context, check notify.ReorderCheck) (notify.ReorderOutcome, error)
}

type NewBill struct {
	CustomerName string
	Items        []models.BillItem
}

type Deps struct {
	Bills     repo.BillRepository
	Products  repo.ProductRepository
	Movements repo.MovementRepository
	Reorder   ReorderChecker
	Activity  lastseen.Store
	Clock     clock.Clock
}

type Service struct {
	bills     repo.BillRepository
	products  repo.ProductRepository
	movements repo.MovementRepository
	reorder   ReorderChecker
	activity  lastseen.Store
	clock     clock.Clock
}

func NewService(d Deps) *Service {
	if d.Activity == nil {
		d.Activity = lastseen.NewMemoryStore()
	}
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	return &Service{
		bills:     d.Bills,
		products:  d.Products,
		movements: d.Movements,
		reorder:   d.Reorder,
		activity:  d.Activity,
		clock:     d.Clock,
	}
}

func validate(nb NewBill) error {
	if strings.TrimSpace(nb.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrInvalidBill)
	}
	if len(nb.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidBill)
	}
	for i, it := range nb.Items {
		if it.ProductID <= 0 {
			return fmt.Errorf("%w: item %d has no product id", ErrInvalidBill, i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidBill, i)
		}
	}
	return nil
}

func billNumber(now time.Time) string {
	return fmt.Sprintf("BILL-%d-%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreateBill persists the bill, then decrements stock for every item and runs
// forced reorder checks. Failures after the bill is saved are logged and do
// not fail the call.
func (s *Service) CreateBill(ctx context.Context, userID int, nb NewBill) (models.Bill, error) {
	if err := validate(nb); err != nil {
		return models.Bill{}, err
	}

	now := s.clock.Now()
	bill := models.Bill{
		UserID:       userID,
		CustomerName: strings.TrimSpace(nb.CustomerName),
		BillNumber:   billNumber(now),
		Date:         now,
		Items:        nb.Items,
	}
	for _, it := range nb.Items {
		bill.GrandTotal += it.Total
		bill.NetQuantity += it.Quantity
	}

	bill, err := s.bills.Create(ctx, bill)
	if err != nil {
		return models.Bill{}, fmt.Errorf("failed to save bill: %w", err)
	}
	slog.Info("bill created", "bill_number", bill.BillNumber, "user_id", userID, "items", len(bill.Items))

	if err := s.activity.Set(ctx, lastBillKey, now); err != nil {
		slog.Warn("failed to record bill activity", "error", err)
	}

	for _, it := range bill.Items {
		s.applyItem(ctx, userID, bill.BillNumber, it)
	}
	s.reorderSafetyNet(ctx)

	return bill, nil
}

func (s *Service) applyItem(ctx context.Context, userID int, number string, it models.BillItem) {
	if _, err := s.products.GetForUser(ctx, userID, it.ProductID); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			slog.Warn("bill item references unknown product", "product_id", it.ProductID, "bill_number", number)
		} else {
			slog.Error("failed to load bill item product", "product_id", it.ProductID, "error", err)
		}
		return
	}

	p, err := s.products.AdjustQuantity(ctx, it.ProductID, -it.Quantity)
	if err != nil {
		slog.Error("failed to decrement stock", "product_id", it.ProductID, "bill_number", number, "error", err)
		return
	}
	if s.movements != nil {
		if err := s.movements.Log(ctx, p.ID, -it.Quantity, "bill:"+number); err != nil {
			slog.Warn("failed to log stock movement", "product_id", p.ID, "error", err)
		}
	}
	slog.Debug("stock decremented", "product_id", p.ID, "quantity", p.Quantity, "reorder_level", p.ReorderLevel)

	if p.BelowReorderLevel() {
		s.forcedCheck(ctx, p)
	}
}

// reorderSafetyNet re-checks every product at or below its reorder level,
// across all users, so nothing a bill touched indirectly is missed.
func (s *Service) reorderSafetyNet(ctx context.Context) {
	products, err := s.products.ListWithReorderLevel(ctx)
	if err != nil {
		slog.Error("failed to list products for reorder check", "error", err)
		return
	}
	for _, p := range products {
		if p.BelowReorderLevel() {
			s.forcedCheck(ctx, p)
		}
	}
}

func (s *Service) forcedCheck(ctx context.Context, p models.Product) {
	if s.reorder == nil {
		return
	}
	outcome, err := s.reorder.CheckReorderForProduct(ctx, notify.ReorderCheck{
		ProductID:    p.ID,
		Quantity:     p.Quantity,
		ReorderLevel: p.ReorderLevel,
		ForceCheck:   true,
	})
	if err != nil {
		slog.Error("reorder check failed", "product_id", p.ID, "error", err)
		return
	}
	slog.Debug("reorder check", "product_id", p.ID, "status", outcome.Status)
}

// ReorderSweepSuppressed reports whether a bill was created within the last
// hour. Store errors are treated as no recent bill.
func (s *Service) ReorderSweepSuppressed(ctx context.Context) bool {
	last, ok, err := s.activity.Get(ctx, lastBillKey)
	if err != nil {
		slog.Warn("failed to read bill activity", "error", err)
		return false
	}
	return ok && s.clock.Now().Sub(last) < SweepSuppression
}

// ListBills returns the user's bills, newest first. filter is one of today,
// week, month, year; empty or "all" returns everything.
func (s *Service) ListBills(ctx context.Context, userID int, filter string) ([]models.Bill, error) {
	bf, err := s.billFilter(filter)
	if err != nil {
		return nil, err
	}
	bills, err := s.bills.ListByUser(ctx, userID, bf)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

func (s *Service) billFilter(filter string) (repo.BillFilter, error) {
	now := s.clock.Now()
	var since, until time.Time
	switch filter {
	case "", "all":
		return repo.BillFilter{}, nil
	case "today":
		y, m, d := now.Date()
		since = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		until = since.Add(24*time.Hour - time.Nanosecond)
		return repo.BillFilter{Since: &since, Until: &until}, nil
	case "week":
		since = now.AddDate(0, 0, -7)
	case "month":
		since = now.AddDate(0, -1, 0)
	case "year":
		since = now.AddDate(-1, 0, 0)
	default:
		return repo.BillFilter{}, fmt.Errorf("%w: %q", ErrUnknownFilter, filter)
	}
	return repo.BillFilter{Since: &since}, nil
}
