package services

import (
	"testing"

	"factory_crm_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRecomputeInvoiceTotals(t *testing.T) {
	orders := []models.Order{
		{TotalPrice: dec("100"), Deposit: dec("50")},
		{TotalPrice: dec("200"), Deposit: dec("50")},
	}
	got := RecomputeInvoiceTotals(orders, dec("10"), dec("5"), dec("15"))
	require.True(t, got.Subtotal.Equal(dec("300")))
	require.True(t, got.Total.Equal(dec("300")))
	require.True(t, got.TotalRemaining.Equal(dec("200")))

	again := RecomputeInvoiceTotals(orders, dec("10"), dec("5"), dec("15"))
	require.True(t, again.Subtotal.Equal(got.Subtotal))
	require.True(t, again.Total.Equal(got.Total))
	require.True(t, again.TotalRemaining.Equal(got.TotalRemaining))
}

func TestRecomputeInvoiceTotalsWithoutOrders(t *testing.T) {
	got := RecomputeInvoiceTotals(nil, dec("7"), decimal.Zero, dec("2"))
	require.True(t, got.Subtotal.IsZero())
	require.True(t, got.Total.Equal(dec("5")))
	require.True(t, got.TotalRemaining.Equal(dec("5")))

	inv := &models.Invoice{}
	got.Apply(inv)
	require.True(t, inv.Total.Equal(dec("5")))
}
