package services

import (
	"factory_crm_backend/internal/models"

	"github.com/shopspring/decimal"
)

// PricingInput is the selection an order is priced from.
// At most one of Product and Material is consulted, product first.
type PricingInput struct {
	Product    *models.Product
	Material   *models.Material
	OrderSize  decimal.Decimal
	ManualType *string
	// ManualPrice is the caller-supplied totalPrice, used when no catalogue price applies.
	ManualPrice *decimal.Decimal
}

// PricingResult is the resolved (type, totalPrice) pair.
type PricingResult struct {
	Type       string
	TotalPrice decimal.Decimal
}

// ResolvePrice derives the order type and total price.
//
// A product is charged its flat selling price. A material with a selling price
// is charged per unit of order size, or flat when the size is zero. Otherwise
// a non-negative manual price is required.
func ResolvePrice(in PricingInput) (PricingResult, error) {
	switch {
	case in.Product != nil:
		return PricingResult{Type: in.Product.Name, TotalPrice: in.Product.SellingPrice}, nil

	case in.Material != nil:
		res := PricingResult{Type: in.Material.Name}
		if in.Material.HasSellingPrice() {
			price := in.Material.SellingPrice.Decimal
			if in.OrderSize.IsPositive() {
				price = price.Mul(in.OrderSize).Round(moneyPlaces)
			}
			res.TotalPrice = price
			return res, nil
		}
		p, err := manualPrice(in.ManualPrice)
		if err != nil {
			return PricingResult{}, validationErr("material %q has no selling price; totalPrice is required", in.Material.Name)
		}
		res.TotalPrice = p
		return res, nil
	}

	p, err := manualPrice(in.ManualPrice)
	if err != nil {
		return PricingResult{}, err
	}
	res := PricingResult{TotalPrice: p}
	if in.ManualType != nil {
		res.Type = *in.ManualType
	}
	return res, nil
}

func manualPrice(p *decimal.Decimal) (decimal.Decimal, error) {
	if p == nil {
		return decimal.Zero, validationErr("totalPrice is required when no material or product is selected")
	}
	if p.IsNegative() {
		return decimal.Zero, validationErr("totalPrice must not be negative")
	}
	return *p, nil
}
