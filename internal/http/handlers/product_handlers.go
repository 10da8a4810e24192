package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rogerio-castellano/stock-notifier/internal/auth"
	models "github.com/rogerio-castellano/stock-notifier/internal/models"
	repo "github.com/rogerio-castellano/stock-notifier/internal/repo"
)

func productFromRequest(req ProductRequest) models.Product {
	return models.Product{
		SKU:            strings.TrimSpace(req.SKU),
		Name:           strings.TrimSpace(req.Name),
		DisplayName:    strings.TrimSpace(req.DisplayName),
		Category:       req.Category,
		Supplier:       req.Supplier,
		ActualPrice:    req.ActualPrice,
		SellingPrice:   req.SellingPrice,
		Quantity:       req.Quantity,
		ReorderLevel:   req.ReorderLevel,
		ExpirationDate: req.ExpirationDate,
		Notify:         req.Notify,
	}
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the caller's inventory. DisplayName defaults to Name.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 409 {string} string "SKU already exists"
// @Router /products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if validationErrors := validateProduct(&req); len(validationErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, validationErrors)
		return
	}

	now := time.Now().UTC()
	product := productFromRequest(req)
	product.UserID = auth.UserID(r.Context())
	product.CreatedAt = now
	product.UpdatedAt = now

	created, err := productRepo.Create(r.Context(), product)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicatedValueUnique) {
			http.Error(w, "could not create product: sku duplicated", http.StatusConflict)
			return
		}
		slog.Error("failed to create product", "error", err)
		http.Error(w, "could not create product", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(created))
}

// GetProductsHandler godoc
// @Summary List the caller's products
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive match on name, display name, sku, category or supplier"
// @Param category query string false "Exact category"
// @Success 200 {object} ProductsSearchResult
// @Failure 500 {string} string "Internal error"
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := productRepo.ListByUser(r.Context(), auth.UserID(r.Context()), repo.ProductFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
	})
	if err != nil {
		slog.Error("failed to list products", "error", err)
		http.Error(w, "could not fetch products", http.StatusInternalServerError)
		return
	}

	resp := ProductsSearchResult{
		Data: make([]ProductResponse, len(products)),
		Meta: Meta{TotalCount: len(products)},
	}
	for i, p := range products {
		resp.Data[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := productRepo.GetForUser(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not fetch product", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

// UpdateProductHandler godoc
// @Summary Update a product
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [put]
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if validationErrors := validateProduct(&req); len(validationErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, validationErrors)
		return
	}

	userID := auth.UserID(r.Context())
	existing, err := productRepo.GetForUser(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not update product", http.StatusInternalServerError)
		return
	}

	product := productFromRequest(req)
	product.ID = id
	product.UserID = userID
	product.LastNotificationSent = existing.LastNotificationSent
	product.UpdatedAt = time.Now().UTC()

	updated, err := productRepo.Update(r.Context(), product)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrProductNotFound):
			http.Error(w, "product not found", http.StatusNotFound)
		case errors.Is(err, repo.ErrDuplicatedValueUnique):
			http.Error(w, "could not update product: sku duplicated", http.StatusConflict)
		default:
			slog.Error("failed to update product", "product_id", id, "error", err)
			http.Error(w, "could not update product", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(updated))
}

// DeleteProductHandler godoc
// @Summary Delete a product and its notifications
// @Tags products
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Failure 500 {string} string "Internal error"
// @Router /products/{id} [delete]
func DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	userID := auth.UserID(r.Context())
	if err := productRepo.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, repo.ErrProductNotFound) {
			http.Error(w, "product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "could not delete product", http.StatusInternalServerError)
		return
	}

	deleted, err := dispatcher.DeleteNotificationsForProduct(r.Context(), userID, id)
	if err != nil {
		// Leftovers are removed by the next notification listing.
		slog.Warn("failed to delete product notifications", "product_id", id, "error", err)
	} else {
		slog.Info("product deleted", "product_id", id, "user_id", userID, "notifications_deleted", deleted)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCategoriesHandler godoc
// @Summary Distinct product categories of the caller
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Failure 500 {string} string "Internal error"
// @Router /products/categories [get]
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := productRepo.Categories(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		http.Error(w, "could not fetch categories", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}
