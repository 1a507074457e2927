package services

import (
	"testing"

	"factory_crm_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestResolvePrice(t *testing.T) {
	priced := &models.Material{Name: "Vinyl", SellingPrice: decimal.NewNullDecimal(dec("10"))}
	unpriced := &models.Material{Name: "Canvas"}
	product := &models.Product{Name: "Banner kit", SellingPrice: dec("250")}

	tests := []struct {
		name      string
		in        PricingInput
		wantType  string
		wantPrice string
		wantErr   bool
	}{
		{"material priced per order size", PricingInput{Material: priced, OrderSize: dec("10")}, "Vinyl", "100", false},
		{"material flat when size is zero", PricingInput{Material: priced}, "Vinyl", "10", false},
		{"material price beats manual price", PricingInput{Material: priced, OrderSize: dec("2"), ManualPrice: decPtr("999")}, "Vinyl", "20", false},
		{"product is flat", PricingInput{Product: product, OrderSize: dec("40")}, "Banner kit", "250", false},
		{"product wins over material", PricingInput{Product: product, Material: priced, OrderSize: dec("10")}, "Banner kit", "250", false},
		{"unpriced material uses manual price", PricingInput{Material: unpriced, OrderSize: dec("3"), ManualPrice: decPtr("75")}, "Canvas", "75", false},
		{"material price rounds to cents", PricingInput{Material: &models.Material{Name: "Foil", SellingPrice: decimal.NewNullDecimal(dec("10.5"))}, OrderSize: dec("0.333")}, "Foil", "3.50", false},
		{"unpriced material without manual price", PricingInput{Material: unpriced, OrderSize: dec("3")}, "", "", true},
		{"manual", PricingInput{ManualType: strPtr("Custom"), ManualPrice: decPtr("40")}, "Custom", "40", false},
		{"manual price missing", PricingInput{ManualType: strPtr("Custom")}, "", "", true},
		{"manual price negative", PricingInput{ManualPrice: decPtr("-1")}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePrice(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantType, got.Type)
			require.True(t, got.TotalPrice.Equal(dec(tt.wantPrice)), "got %s", got.TotalPrice)
		})
	}
}
