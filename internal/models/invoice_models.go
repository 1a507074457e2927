package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice groups orders of one client and carries derived totals.
// Subtotal, Total and TotalRemaining are always recomputed from the child orders.
type Invoice struct {
	ID             int64           `json:"id" db:"id"`
	ClientID       int64           `json:"client" db:"client_id"`
	ClientSnapshot ClientSnapshot  `json:"clientSnapshot"`
	Tax            decimal.Decimal `json:"tax" db:"tax"`
	Shipping       decimal.Decimal `json:"shipping" db:"shipping"`
	Discount       decimal.Decimal `json:"discount" db:"discount"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	Total          decimal.Decimal `json:"total" db:"total"`
	TotalRemaining decimal.Decimal `json:"totalRemaining" db:"total_remaining"`
	Notes          *string         `json:"notes,omitempty" db:"notes"`
	CreatedBy      *int64          `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`

	Orders []Order `json:"orders,omitempty"`
}

// InvoiceFilters narrows invoice listings.
type InvoiceFilters struct {
	ClientID *int64
	Page     int
	PageSize int
}
