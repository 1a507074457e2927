package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderState is the production state of an order.
type OrderState string

const (
	OrderStatePending   OrderState = "pending"
	OrderStateActive    OrderState = "active"
	OrderStateDone      OrderState = "done"
	OrderStateDelivered OrderState = "delivered"
)

// Valid reports whether s is one of the four known states.
// Transition order is not enforced.
func (s OrderState) Valid() bool {
	switch s {
	case OrderStatePending, OrderStateActive, OrderStateDone, OrderStateDelivered:
		return true
	}
	return false
}

// Order is a production job for a client, optionally grouped under an invoice.
type Order struct {
	ID              int64           `json:"id" db:"id"`
	ClientID        *int64          `json:"client,omitempty" db:"client_id"`
	ClientSnapshot  ClientSnapshot  `json:"clientSnapshot"`
	InvoiceID       *int64          `json:"invoice,omitempty" db:"invoice_id"`
	MaterialID      *int64          `json:"material,omitempty" db:"material_id"`
	ProductID       *int64          `json:"product,omitempty" db:"product_id"`
	Type            string          `json:"type" db:"type"`
	Repeats         int             `json:"repeats" db:"repeats"`
	SheetWidth      decimal.Decimal `json:"sheetWidth" db:"sheet_width"`
	SheetHeight     decimal.Decimal `json:"sheetHeight" db:"sheet_height"`
	OrderSize       decimal.Decimal `json:"orderSize" db:"order_size"`
	TotalPrice      decimal.Decimal `json:"totalPrice" db:"total_price"`
	Deposit         decimal.Decimal `json:"deposit" db:"deposit"`
	RemainingAmount decimal.Decimal `json:"remainingAmount" db:"remaining_amount"`
	OrderState      OrderState      `json:"orderState" db:"order_state"`
	DesignLink      *string         `json:"designLink,omitempty" db:"design_link"`
	Notes           *string         `json:"notes,omitempty" db:"notes"`
	StockDeducted   bool            `json:"stockDeducted" db:"stock_deducted"`
	CreatedBy       *int64          `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`

	// Populated on reads.
	MaterialRef *MaterialRef `json:"materialDetails,omitempty"`
	ProductRef  *ProductRef  `json:"productDetails,omitempty"`
}

// MaterialRef is the subset of a material returned with an order.
type MaterialRef struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Unit         string              `json:"unit"`
	SellingPrice decimal.NullDecimal `json:"sellingPrice"`
}

// ProductRef is the subset of a product returned with an order.
type ProductRef struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
}

// SyncRemaining keeps remainingAmount equal to totalPrice - deposit.
func (o *Order) SyncRemaining() {
	o.RemainingAmount = o.TotalPrice.Sub(o.Deposit)
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	State      *string `form:"state"`
	ClientID   *int64  `form:"client_id"`
	InvoiceID  *int64  `form:"invoice_id"`
	MaterialID *int64  `form:"material_id"`
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
