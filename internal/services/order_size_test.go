package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOrderSize(t *testing.T) {
	tests := []struct {
		name    string
		repeats *int
		height  *decimal.Decimal
		want    string
	}{
		{"product of repeats and height", intPtr(5), decPtr("2"), "10"},
		{"fractional height", intPtr(3), decPtr("1.25"), "3.75"},
		{"missing repeats", nil, decPtr("2"), "0"},
		{"missing height", intPtr(4), nil, "0"},
		{"zero repeats", intPtr(0), decPtr("2"), "0"},
		{"negative height", intPtr(2), decPtr("-1"), "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderSize(tt.repeats, tt.height)
			require.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}
