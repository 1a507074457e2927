package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecordType classifies a ledger entry.
type InventoryRecordType string

const (
	InventoryDailyCount InventoryRecordType = "daily_count"
	InventoryAdjustment InventoryRecordType = "adjustment"
	InventoryWastage    InventoryRecordType = "wastage"
	InventoryUsage      InventoryRecordType = "usage"
	InventoryPurchase   InventoryRecordType = "purchase"
)

// Valid reports whether t is a known record type.
func (t InventoryRecordType) Valid() bool {
	switch t {
	case InventoryDailyCount, InventoryAdjustment, InventoryWastage, InventoryUsage, InventoryPurchase:
		return true
	}
	return false
}

// InventoryRecord is an append-only stock ledger entry. Never updated after insert.
type InventoryRecord struct {
	ID            int64               `json:"id" db:"id"`
	MaterialID    int64               `json:"material" db:"material_id"`
	Type          InventoryRecordType `json:"type" db:"type"`
	PreviousStock decimal.Decimal     `json:"previousStock" db:"previous_stock"`
	SystemStock   decimal.Decimal     `json:"systemStock" db:"system_stock"`
	ActualStock   decimal.Decimal     `json:"actualStock" db:"actual_stock"`
	Difference    decimal.Decimal     `json:"difference" db:"difference"`
	Reason        *string             `json:"reason,omitempty" db:"reason"`
	Notes         *string             `json:"notes,omitempty" db:"notes"`
	OrderID       *int64              `json:"order,omitempty" db:"order_id"`
	Reference     *string             `json:"reference,omitempty" db:"reference"`
	CreatedBy     *int64              `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt     time.Time           `json:"createdAt" db:"created_at"`

	MaterialName string `json:"materialName,omitempty"`
}

// InventoryRecordFilters narrows ledger listings.
type InventoryRecordFilters struct {
	MaterialID *int64
	OrderID    *int64
	Type       *string
	Page       int
	PageSize   int
}
