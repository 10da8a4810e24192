package repo

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of ProductRepository.
type InMemoryProductRepository struct {
	mu       sync.Mutex
	products []models.Product
	nextID   int
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: []models.Product{},
		nextID:   1,
	}
}

func matchesFilter(p models.Product, pf ProductFilter) bool {
	if pf.Category != "" && !strings.EqualFold(p.Category, pf.Category) {
		return false
	}
	if pf.Search == "" {
		return true
	}
	needle := strings.ToLower(pf.Search)
	for _, field := range []string{p.Name, p.DisplayName, p.SKU, p.Category, p.Supplier} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Create adds a new product to the repository.
func (r *InMemoryProductRepository) Create(_ context.Context, product models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.UserID == product.UserID && p.SKU == product.SKU {
			return models.Product{}, ErrDuplicatedValueUnique
		}
	}

	product.ID = r.nextID
	r.nextID++
	r.products = append(r.products, product)
	return product, nil
}

// GetByID retrieves a product by its ID regardless of owner.
func (r *InMemoryProductRepository) GetByID(_ context.Context, id int) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		return r.products[i], nil
	}
	return models.Product{}, ErrProductNotFound
}

func (r *InMemoryProductRepository) GetForUser(_ context.Context, userID, id int) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 && r.products[i].UserID == userID {
		return r.products[i], nil
	}
	return models.Product{}, ErrProductNotFound
}

func (r *InMemoryProductRepository) ListByUser(_ context.Context, userID int, pf ProductFilter) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Product
	for _, p := range r.products {
		if p.UserID == userID && matchesFilter(p, pf) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Update modifies an existing product owned by product.UserID.
func (r *InMemoryProductRepository) Update(_ context.Context, product models.Product) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(product.ID)
	if i < 0 || r.products[i].UserID != product.UserID {
		return models.Product{}, ErrProductNotFound
	}
	for _, p := range r.products {
		if p.ID != product.ID && p.UserID == product.UserID && p.SKU == product.SKU {
			return models.Product{}, ErrDuplicatedValueUnique
		}
	}
	product.CreatedAt = r.products[i].CreatedAt
	r.products[i] = product
	return product, nil
}

// Delete removes a product from the repository by its ID.
func (r *InMemoryProductRepository) Delete(_ context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 || r.products[i].UserID != userID {
		return ErrProductNotFound
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

func (r *InMemoryProductRepository) ListExpiring(_ context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Product
	for _, p := range r.products {
		if p.ExpirationDate != nil && p.Notify != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryProductRepository) ListWithReorderLevel(_ context.Context) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.products), nil
}

func (r *InMemoryProductRepository) IDsByUser(_ context.Context, userID int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int
	for _, p := range r.products {
		if p.UserID == userID {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (r *InMemoryProductRepository) Categories(_ context.Context, userID int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	var out []string
	for _, p := range r.products {
		if p.UserID == userID && p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// AdjustQuantity implements ProductRepository.
func (r *InMemoryProductRepository) AdjustQuantity(_ context.Context, id int, delta int) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Product{}, ErrProductNotFound
	}
	r.products[i].Quantity += delta
	r.products[i].UpdatedAt = time.Now().UTC()
	return r.products[i], nil
}

func (r *InMemoryProductRepository) SetLastNotificationSent(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}
	r.products[i].LastNotificationSent = &at
	return nil
}

func (r *InMemoryProductRepository) Clear() {
	r.mu.Lock()
	r.products = []models.Product{}
	r.mu.Unlock()
}

func (r *InMemoryProductRepository) indexOf(id int) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
