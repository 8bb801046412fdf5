package statistics

import (
	"context"
	"errors"
)

var ErrInvalidPeriod = errors.New("month must be between 1 and 12")

// Store is the read surface the service needs
type Store interface {
	PeriodStats(ctx context.Context, userID int64, year, month int) (*PeriodStats, error)
	MonthlyStats(ctx context.Context, userID int64, year int) ([]*MonthlyStat, error)
	AvailableYears(ctx context.Context, userID int64) ([]int, error)
}

// Service assembles the statistics report
type Service struct {
	store Store
}

// NewService creates a new statistics service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Period builds the full report for a year, optionally narrowed to a month
// (month = 0 means the whole year).
func (s *Service) Period(ctx context.Context, userID int64, year, month int) (*Report, error) {
	if month < 0 || month > 12 {
		return nil, ErrInvalidPeriod
	}

	stats, err := s.store.PeriodStats(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	monthly, err := s.store.MonthlyStats(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	years, err := s.store.AvailableYears(ctx, userID)
	if err != nil {
		return nil, err
	}

	if monthly == nil {
		monthly = []*MonthlyStat{}
	}
	if years == nil {
		years = []int{}
	}

	return &Report{
		Stats:          stats,
		MonthlyStats:   monthly,
		AvailableYears: years,
		Year:           year,
		Month:          month,
	}, nil
}
