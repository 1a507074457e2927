package services

import (
	"factory_crm_backend/internal/models"

	"github.com/shopspring/decimal"
)

// InvoiceTotals holds the derived invoice amounts.
type InvoiceTotals struct {
	Subtotal       decimal.Decimal
	Total          decimal.Decimal
	TotalRemaining decimal.Decimal
}

// RecomputeInvoiceTotals computes totals from scratch from the current child orders:
// subtotal = Σ totalPrice, total = subtotal + tax + shipping − discount,
// totalRemaining = total − Σ deposit.
func RecomputeInvoiceTotals(orders []models.Order, tax, shipping, discount decimal.Decimal) InvoiceTotals {
	subtotal, deposits := decimal.Zero, decimal.Zero
	for _, o := range orders {
		subtotal = subtotal.Add(o.TotalPrice)
		deposits = deposits.Add(o.Deposit)
	}
	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	return InvoiceTotals{
		Subtotal:       subtotal,
		Total:          total,
		TotalRemaining: total.Sub(deposits),
	}
}

// Apply copies the totals onto inv.
func (t InvoiceTotals) Apply(inv *models.Invoice) {
	inv.Subtotal = t.Subtotal
	inv.Total = t.Total
	inv.TotalRemaining = t.TotalRemaining
}
