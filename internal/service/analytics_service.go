package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
)

const (
	analyticsCacheKey = "vaxtrack:analytics:summary"
	// upcomingWindowDays bounds how far ahead the dashboard looks for drives.
	upcomingWindowDays = 30
)

// CoverageStore provides the aggregate counts behind the dashboard.
type CoverageStore interface {
	CoverageCounts(ctx context.Context) (total, vaccinated int, err error)
}

// UpcomingDriveStore lists drives within a date window.
type UpcomingDriveStore interface {
	UpcomingBetween(ctx context.Context, from, to time.Time) ([]model.Drive, error)
}

// AnalyticsService builds the dashboard summary, cached in Redis with a
// short TTL so the landing page does not hammer the store.
type AnalyticsService struct {
	coverage CoverageStore
	drives   UpcomingDriveStore
	rdb      *redis.Client
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(coverage CoverageStore, drives UpcomingDriveStore, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		coverage: coverage,
		drives:   drives,
		rdb:      rdb,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Summary returns the dashboard snapshot, serving the cached copy when fresh.
func (s *AnalyticsService) Summary(ctx context.Context) (*model.AnalyticsSummary, error) {
	if data, err := s.rdb.Get(ctx, analyticsCacheKey).Bytes(); err == nil {
		var cached model.AnalyticsSummary
		if json.Unmarshal(data, &cached) == nil {
			return &cached, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Analytics cache read failed")
	}

	total, vaccinated, err := s.coverage.CoverageCounts(ctx)
	if err != nil {
		return nil, err
	}

	var percent float64
	if total > 0 {
		percent = math.Round(float64(vaccinated)/float64(total)*10000) / 100
	}

	now := s.now()
	upcoming, err := s.drives.UpcomingBetween(ctx, now, now.AddDate(0, 0, upcomingWindowDays))
	if err != nil {
		return nil, err
	}

	summary := &model.AnalyticsSummary{
		TotalStudents:      total,
		VaccinatedStudents: vaccinated,
		VaccinatedPercent:  percent,
		UpcomingDrives:     upcoming,
	}

	if data, err := json.Marshal(summary); err == nil {
		if err := s.rdb.Set(ctx, analyticsCacheKey, data, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Analytics cache write failed")
		}
	}
	return summary, nil
}
