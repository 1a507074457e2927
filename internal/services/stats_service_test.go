package services

import (
	"testing"
	"time"

	"factory_crm_backend/internal/cache"
	"factory_crm_backend/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeStatsRepo struct {
	financialCalls  int
	timeseriesCalls int
	lastSince       time.Time
	lastInterval    string
}

func (r *fakeStatsRepo) Financial() (*models.FinancialStats, error) {
	r.financialCalls++
	return &models.FinancialStats{OrderCount: int64(r.financialCalls), TotalRevenue: dec("100"), ByState: map[string]int64{"pending": 1}}, nil
}

func (r *fakeStatsRepo) Timeseries(since time.Time, interval string) ([]models.TimeseriesPoint, error) {
	r.timeseriesCalls++
	r.lastSince, r.lastInterval = since, interval
	return []models.TimeseriesPoint{{BucketStart: since, OrderCount: 2, Revenue: dec("40")}}, nil
}

func TestStatsFinancialIsCachedUntilInvalidated(t *testing.T) {
	repo := &fakeStatsRepo{}
	svc := NewStatsService(repo, cache.NewTTLCache(time.Minute))

	first, err := svc.Financial()
	require.NoError(t, err)
	second, err := svc.Financial()
	require.NoError(t, err)
	require.Equal(t, 1, repo.financialCalls)
	require.Same(t, first, second)

	svc.InvalidateStats()
	third, err := svc.Financial()
	require.NoError(t, err)
	require.Equal(t, 2, repo.financialCalls)
	require.Equal(t, int64(2), third.OrderCount)
}

func TestStatsWithoutCacheComputesDirectly(t *testing.T) {
	repo := &fakeStatsRepo{}
	svc := NewStatsService(repo, nil)
	_, err := svc.Financial()
	require.NoError(t, err)
	_, err = svc.Financial()
	require.NoError(t, err)
	require.Equal(t, 2, repo.financialCalls)
	svc.InvalidateStats()
}

func TestStatsTimeseriesValidation(t *testing.T) {
	svc := NewStatsService(&fakeStatsRepo{}, nil)

	for _, interval := range []string{"", "hour", "year", "DAY"} {
		_, err := svc.Timeseries(30, interval)
		require.ErrorIs(t, err, ErrValidation, interval)
	}
	for _, period := range []int{0, -1, MaxStatsDays + 1} {
		_, err := svc.Timeseries(period, "day")
		require.ErrorIs(t, err, ErrValidation)
	}
}

func TestStatsTimeseries(t *testing.T) {
	repo := &fakeStatsRepo{}
	s := NewStatsService(repo, cache.NewTTLCache(time.Minute)).(*statsService)
	now := time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ts, err := s.Timeseries(7, "week")
	require.NoError(t, err)
	require.Equal(t, 7, ts.PeriodDays)
	require.Equal(t, "week", ts.Interval)
	require.Len(t, ts.Points, 1)
	require.Equal(t, now.AddDate(0, 0, -7), repo.lastSince)

	_, err = s.Timeseries(7, "week")
	require.NoError(t, err)
	_, err = s.Timeseries(7, "month")
	require.NoError(t, err)
	require.Equal(t, 2, repo.timeseriesCalls)
}
