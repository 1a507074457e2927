package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"factory_crm_backend/internal/models"
)

// StatsRepository runs the read-only aggregate queries behind the dashboard.
type StatsRepository interface {
	Financial() (*models.FinancialStats, error)
	Timeseries(since time.Time, interval string) ([]models.TimeseriesPoint, error)
}

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Financial() (*models.FinancialStats, error) {
	stats := &models.FinancialStats{ByState: map[string]int64{}}
	query := `SELECT COUNT(*), COALESCE(SUM(total_price), 0), COALESCE(SUM(deposit), 0), COALESCE(SUM(remaining_amount), 0)
	          FROM orders`
	err := r.db.QueryRow(query).Scan(&stats.OrderCount, &stats.TotalRevenue, &stats.TotalDeposits, &stats.TotalRemaining)
	if err != nil {
		return nil, wrapDBError("aggregating order totals", err)
	}

	rows, err := r.db.Query(`SELECT order_state, COUNT(*) FROM orders GROUP BY order_state`)
	if err != nil {
		return nil, wrapDBError("counting orders by state", err)
	}
	defer rows.Close()
	for rows.Next() {
		var state string
		var count int64
		if err := rows.Scan(&state, &count); err != nil {
			return nil, wrapDBError("scanning state count", err)
		}
		stats.ByState[state] = count
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating state counts", err)
	}
	stats.GeneratedAt = time.Now().UTC()
	return stats, nil
}

// Timeseries buckets orders created since the given instant. interval must be
// one of day, week or month; it is validated by the caller and interpolated
// as a date_trunc field.
func (r *statsRepository) Timeseries(since time.Time, interval string) ([]models.TimeseriesPoint, error) {
	switch interval {
	case "day", "week", "month":
	default:
		return nil, fmt.Errorf("%w: unsupported interval %q", ErrDatabaseError, interval)
	}
	query := `SELECT date_trunc('` + interval + `', created_at) AS bucket,
	                 COUNT(*), COALESCE(SUM(total_price), 0), COALESCE(SUM(deposit), 0)
	          FROM orders
	          WHERE created_at >= $1
	          GROUP BY bucket
	          ORDER BY bucket`
	rows, err := r.db.Query(query, since)
	if err != nil {
		return nil, wrapDBError("querying order timeseries", err)
	}
	defer rows.Close()

	points := []models.TimeseriesPoint{}
	for rows.Next() {
		var p models.TimeseriesPoint
		if err := rows.Scan(&p.BucketStart, &p.OrderCount, &p.Revenue, &p.Deposits); err != nil {
			return nil, wrapDBError("scanning timeseries bucket", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError("iterating timeseries", err)
	}
	return points, nil
}
