package handlers

import (
	"strings"
)

type ProductValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

// validateProduct checks the request and fills DisplayName from Name when it is blank.
func validateProduct(p *ProductRequest) []ProductValidationError {
	errs := []ProductValidationError{}
	if strings.TrimSpace(p.DisplayName) == "" {
		p.DisplayName = strings.TrimSpace(p.Name)
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ProductValidationError{Field: "Name", Description: "Name is required"})
	}
	if strings.TrimSpace(p.SKU) == "" {
		errs = append(errs, ProductValidationError{Field: "SKU", Description: "SKU is required"})
	}
	if p.ActualPrice < 0 {
		errs = append(errs, ProductValidationError{Field: "ActualPrice", Description: "Actual price cannot be negative"})
	}
	if p.SellingPrice < 0 {
		errs = append(errs, ProductValidationError{Field: "SellingPrice", Description: "Selling price cannot be negative"})
	}
	if p.ReorderLevel < 0 {
		errs = append(errs, ProductValidationError{Field: "ReorderLevel", Description: "Reorder level cannot be negative"})
	}
	if p.Notify != nil && *p.Notify < 0 {
		errs = append(errs, ProductValidationError{Field: "Notify", Description: "Notify days cannot be negative"})
	}
	return errs
}
