package services

import "github.com/shopspring/decimal"

// OrderSize returns repeats × sheetHeight. Missing or negative inputs count as zero;
// sheet width never takes part.
func OrderSize(repeats *int, sheetHeight *decimal.Decimal) decimal.Decimal {
	if repeats == nil || sheetHeight == nil || *repeats <= 0 || !sheetHeight.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(*repeats)).Mul(*sheetHeight)
}
