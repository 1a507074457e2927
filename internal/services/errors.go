package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errors shared across the order, invoice and material services.
var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("operation not permitted for this role")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrMaterialNotFound  = errors.New("material not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports a blocked completion with the shortage detail.
type InsufficientStockError struct {
	MaterialID   int64           `json:"materialId"`
	MaterialName string          `json:"materialName"`
	Required     decimal.Decimal `json:"required"`
	Available    decimal.Decimal `json:"available"`
	Shortage     decimal.Decimal `json:"shortage"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for material %q: required %s, available %s, shortage %s",
		e.MaterialName, e.Required, e.Available, e.Shortage)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func validationErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
