package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Material is a raw material tracked in stock and optionally sold per unit of order size.
type Material struct {
	ID            int64               `json:"id" db:"id"`
	Name          string              `json:"name" db:"name"`
	Unit          string              `json:"unit" db:"unit"`
	CurrentStock  decimal.Decimal     `json:"currentStock" db:"current_stock"`
	MinStockLevel decimal.Decimal     `json:"minStockLevel" db:"min_stock_level"`
	SellingPrice  decimal.NullDecimal `json:"sellingPrice" db:"selling_price"`
	IsOrderType   bool                `json:"isOrderType" db:"is_order_type"`
	IsActive      bool                `json:"isActive" db:"is_active"`
	CreatedAt     time.Time           `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time           `json:"updatedAt" db:"updated_at"`
}

// HasSellingPrice reports whether a per-unit selling price is configured.
func (m *Material) HasSellingPrice() bool {
	return m.SellingPrice.Valid
}

// IsLowStock reports whether stock sits at or below a positive minimum level.
func (m *Material) IsLowStock() bool {
	return m.MinStockLevel.IsPositive() && m.CurrentStock.LessThanOrEqual(m.MinStockLevel)
}

// Product is a fixed-price composite item.
type Product struct {
	ID           int64             `json:"id" db:"id"`
	Name         string            `json:"name" db:"name"`
	Description  *string           `json:"description,omitempty" db:"description"`
	SellingPrice decimal.Decimal   `json:"sellingPrice" db:"selling_price"`
	Components   ProductComponents `json:"components" db:"components"`
	IsActive     bool              `json:"isActive" db:"is_active"`
	CreatedAt    time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time         `json:"updatedAt" db:"updated_at"`
}

// ProductComponent is one (material, quantity) composition pair. Informational only.
type ProductComponent struct {
	MaterialID int64           `json:"material"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ProductComponents is stored as a JSONB column.
type ProductComponents []ProductComponent

// Value implements driver.Valuer.
func (pc ProductComponents) Value() (driver.Value, error) {
	if pc == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(pc)
}

// Scan implements sql.Scanner.
func (pc *ProductComponents) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*pc = ProductComponents{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("product components: unsupported source type")
	}
	return json.Unmarshal(data, pc)
}
