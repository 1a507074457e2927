package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialStats aggregates order money across all orders.
type FinancialStats struct {
	OrderCount     int64            `json:"orderCount"`
	TotalRevenue   decimal.Decimal  `json:"totalRevenue"`
	TotalDeposits  decimal.Decimal  `json:"totalDeposits"`
	TotalRemaining decimal.Decimal  `json:"totalRemaining"`
	ByState        map[string]int64 `json:"byState"`
	GeneratedAt    time.Time        `json:"generatedAt"`
}

// TimeseriesPoint is one bucket of the order timeseries.
type TimeseriesPoint struct {
	BucketStart time.Time       `json:"bucketStart"`
	OrderCount  int64           `json:"orderCount"`
	Revenue     decimal.Decimal `json:"revenue"`
	Deposits    decimal.Decimal `json:"deposits"`
}

// Timeseries is the response of the timeseries stats endpoint.
type Timeseries struct {
	PeriodDays int               `json:"periodDays"`
	Interval   string            `json:"interval"`
	Points     []TimeseriesPoint `json:"points"`
}
