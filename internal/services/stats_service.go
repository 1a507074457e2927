package services

import (
	"fmt"
	"time"

	"factory_crm_backend/internal/cache"
	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"

	"github.com/rs/zerolog/log"
)

const (
	statsKeyPrefix   = "stats:"
	DefaultStatsDays = 30
	MaxStatsDays     = 730
)

// StatsService serves the dashboard aggregates through a short-lived cache.
type StatsService interface {
	StatsInvalidator
	Financial() (*models.FinancialStats, error)
	Timeseries(periodDays int, interval string) (*models.Timeseries, error)
}

type statsService struct {
	repo  repositories.StatsRepository
	cache *cache.TTLCache
	now   func() time.Time
}

// NewStatsService creates a new instance of StatsService. c may be nil.
func NewStatsService(repo repositories.StatsRepository, c *cache.TTLCache) StatsService {
	return &statsService{repo: repo, cache: c, now: time.Now}
}

// ValidInterval reports whether interval is a supported timeseries bucket.
func ValidInterval(interval string) bool {
	switch interval {
	case "day", "week", "month":
		return true
	}
	return false
}

func (s *statsService) Financial() (*models.FinancialStats, error) {
	key := statsKeyPrefix + "financial"
	if v, ok := s.cached(key); ok {
		if stats, ok := v.(*models.FinancialStats); ok {
			return stats, nil
		}
	}
	stats, err := s.repo.Financial()
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = s.now().UTC()
	s.store(key, stats)
	return stats, nil
}

func (s *statsService) Timeseries(periodDays int, interval string) (*models.Timeseries, error) {
	if !ValidInterval(interval) {
		return nil, validationErr("interval must be one of day, week, month")
	}
	if periodDays < 1 || periodDays > MaxStatsDays {
		return nil, validationErr("period must be between 1 and %d days", MaxStatsDays)
	}

	key := fmt.Sprintf("%stimeseries:%d:%s", statsKeyPrefix, periodDays, interval)
	if v, ok := s.cached(key); ok {
		if ts, ok := v.(*models.Timeseries); ok {
			return ts, nil
		}
	}
	since := s.now().UTC().AddDate(0, 0, -periodDays)
	points, err := s.repo.Timeseries(since, interval)
	if err != nil {
		return nil, err
	}
	ts := &models.Timeseries{PeriodDays: periodDays, Interval: interval, Points: points}
	s.store(key, ts)
	return ts, nil
}

// InvalidateStats drops every cached dashboard entry.
func (s *statsService) InvalidateStats() {
	if s.cache == nil {
		return
	}
	if n := s.cache.InvalidatePrefix(statsKeyPrefix); n > 0 {
		log.Debug().Int("entries", n).Msg("Stats cache invalidated")
	}
}

func (s *statsService) cached(key string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *statsService) store(key string, v interface{}) {
	if s.cache != nil {
		s.cache.Set(key, v)
	}
}
