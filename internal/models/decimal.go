package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts and quantities travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
