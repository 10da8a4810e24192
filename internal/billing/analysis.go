package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
	"github.com/rogerio-castellano/stock-notifier/internal/repo"
)

// ErrUnknownRange is returned by Analysis for a range it does not recognise.
var ErrUnknownRange = errors.New("unknown analysis range")

// DefaultAnalysisRange applies when neither a range nor explicit dates are given.
const DefaultAnalysisRange = "1m"

// AnalysisFilter selects the bills that feed a profit analysis. From and To,
// when both set, take precedence over Range.
type AnalysisFilter struct {
	Range    string
	From     *time.Time
	To       *time.Time
	Category string
}

type ProductProfit struct {
	DisplayName  string  `json:"display_name"`
	Category     string  `json:"category"`
	ProductCount int     `json:"product_count"`
	Revenue      float64 `json:"revenue"`
	TotalProfit  float64 `json:"total_profit"`
}

type Analysis struct {
	TotalProfit float64         `json:"total_profit"`
	TopProducts []ProductProfit `json:"top_products"`
}

// Analysis sums the profit of every billed item in the window, grouped by the
// product's display name (case and surrounding spaces ignored) and sorted by
// profit, highest first. Items whose product no longer exists are skipped.
func (s *Service) Analysis(ctx context.Context, userID int, af AnalysisFilter) (Analysis, error) {
	bf, err := s.analysisWindow(af)
	if err != nil {
		return Analysis{}, err
	}
	bills, err := s.bills.ListByUser(ctx, userID, bf)
	if err != nil {
		return Analysis{}, fmt.Errorf("failed to list bills: %w", err)
	}

	category := strings.TrimSpace(af.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}

	products := map[int]*models.Product{}
	lookup := func(id int) (*models.Product, error) {
		if p, ok := products[id]; ok {
			return p, nil
		}
		p, err := s.products.GetForUser(ctx, userID, id)
		if errors.Is(err, repo.ErrProductNotFound) {
			products[id] = nil
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product %d: %w", id, err)
		}
		products[id] = &p
		return &p, nil
	}

	out := Analysis{TopProducts: []ProductProfit{}}
	groups := map[string]int{}
	for _, b := range bills {
		for _, it := range b.Items {
			p, err := lookup(it.ProductID)
			if err != nil {
				return Analysis{}, err
			}
			if p == nil || (category != "" && p.Category != category) {
				continue
			}

			actual := it.ActualPrice
			if actual == 0 {
				actual = p.ActualPrice
			}
			selling := it.SellingPrice
			if selling == 0 {
				selling = it.Price
			}
			profit := (selling - actual) * float64(it.Quantity)
			out.TotalProfit += profit

			name := p.DisplayName
			if strings.TrimSpace(name) == "" {
				name = p.Name
			}
			key := strings.ToLower(strings.TrimSpace(name))
			idx, ok := groups[key]
			if !ok {
				idx = len(out.TopProducts)
				groups[key] = idx
				out.TopProducts = append(out.TopProducts, ProductProfit{DisplayName: name, Category: p.Category})
			}
			g := &out.TopProducts[idx]
			g.ProductCount += it.Quantity
			g.Revenue += selling * float64(it.Quantity)
			g.TotalProfit += profit
		}
	}

	sort.SliceStable(out.TopProducts, func(i, j int) bool {
		return out.TopProducts[i].TotalProfit > out.TopProducts[j].TotalProfit
	})
	return out, nil
}

func (s *Service) analysisWindow(af AnalysisFilter) (repo.BillFilter, error) {
	if af.From != nil && af.To != nil {
		if af.To.Before(*af.From) {
			return repo.BillFilter{}, fmt.Errorf("%w: toDate is before fromDate", ErrUnknownRange)
		}
		return repo.BillFilter{Since: af.From, Until: af.To}, nil
	}

	now := s.clock.Now()
	var since time.Time
	switch af.Range {
	case "", DefaultAnalysisRange:
		since = now.AddDate(0, -1, 0)
	case "3m":
		since = now.AddDate(0, -3, 0)
	case "6m":
		since = now.AddDate(0, -6, 0)
	case "1y":
		since = now.AddDate(-1, 0, 0)
	case "3y":
		since = now.AddDate(-3, 0, 0)
	case "4y":
		since = now.AddDate(-4, 0, 0)
	case "5y":
		since = now.AddDate(-5, 0, 0)
	case "all":
		return repo.BillFilter{}, nil
	default:
		return repo.BillFilter{}, fmt.Errorf("%w: %q", ErrUnknownRange, af.Range)
	}
	return repo.BillFilter{Since: &since}, nil
}
