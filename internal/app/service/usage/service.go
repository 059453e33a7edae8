package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/ronsystem/fcpdigital-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger

	now func() time.Time
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, now: time.Now}
}

// Stats summarizes today's and the current month's usage for a client.
type Stats struct {
	TodayCalls       int64 `json:"today_calls"`
	TodayMinutes     int64 `json:"today_minutes"`
	ThisMonthCalls   int64 `json:"this_month_calls"`
	ThisMonthMinutes int64 `json:"this_month_minutes"`
	// PercentageUsed is the month's minutes against the plan allowance,
	// rounded to the nearest whole percent. It can exceed 100.
	PercentageUsed int64 `json:"percentage_used"`
}

// GetStats reads the current month's usage_tracking rows and folds them into
// a Stats for the dashboard.
func (s *Service) GetStats(ctx context.Context, clientID string, minutesLimit int64) (*Stats, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	rows, err := s.Range(ctx, clientID, monthStart, now)
	if err != nil {
		return nil, err
	}
	return computeStats(rows, now.Format(time.DateOnly), minutesLimit), nil
}

// Range returns usage rows for a client between from and to inclusive,
// oldest first.
func (s *Service) Range(ctx context.Context, clientID string, from, to time.Time) ([]*models.UsageTracking, error) {
	var rows []*models.UsageTracking
	err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Where("date BETWEEN ? AND ?", from.Format(time.DateOnly), to.Format(time.DateOnly)).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read usage range: %w", err)
	}
	return rows, nil
}

func computeStats(rows []*models.UsageTracking, today string, minutesLimit int64) *Stats {
	stats := &Stats{}
	for _, row := range rows {
		stats.ThisMonthCalls += row.CallsCount
		stats.ThisMonthMinutes += row.CallMinutes
		if row.Date == today {
			stats.TodayCalls = row.CallsCount
			stats.TodayMinutes = row.CallMinutes
		}
	}
	if minutesLimit > 0 {
		stats.PercentageUsed = (stats.ThisMonthMinutes*100 + minutesLimit/2) / minutesLimit
	}
	return stats
}
