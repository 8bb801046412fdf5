package statistics

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository computes aggregates over settlement items. Sums use the base
// amount, matching what the statistics page has always shown.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new statistics repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PeriodStats aggregates a participant's items within a year, optionally
// narrowed to a month (month = 0 means the whole year).
func (r *Repository) PeriodStats(ctx context.Context, userID int64, year, month int) (*PeriodStats, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'unpaid'), 0),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status = 'unpaid')
		FROM settlement_items
		WHERE user_id = $1
		  AND deleted_at IS NULL
		  AND EXTRACT(YEAR FROM created_at) = $2
		  AND ($3 = 0 OR EXTRACT(MONTH FROM created_at) = $3)
	`

	stats := &PeriodStats{}
	err := r.db.QueryRowContext(ctx, query, userID, year, month).Scan(
		&stats.PaidAmount,
		&stats.UnpaidAmount,
		&stats.PaidCount,
		&stats.UnpaidCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute period stats: %w", err)
	}

	return stats, nil
}

// MonthlyStats returns the month-by-month paid/unpaid totals of a year
func (r *Repository) MonthlyStats(ctx context.Context, userID int64, year int) ([]*MonthlyStat, error) {
	query := `
		SELECT
			EXTRACT(MONTH FROM created_at)::int,
			COALESCE(SUM(amount) FILTER (WHERE status = 'paid'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status = 'unpaid'), 0)
		FROM settlement_items
		WHERE user_id = $1
		  AND deleted_at IS NULL
		  AND EXTRACT(YEAR FROM created_at) = $2
		GROUP BY 1
		ORDER BY 1
	`

	rows, err := r.db.QueryContext(ctx, query, userID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly stats: %w", err)
	}
	defer rows.Close()

	var stats []*MonthlyStat
	for rows.Next() {
		stat := &MonthlyStat{}
		if err := rows.Scan(&stat.Month, &stat.PaidAmount, &stat.UnpaidAmount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly stat: %w", err)
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// AvailableYears returns the years the participant has any items in,
// newest first
func (r *Repository) AvailableYears(ctx context.Context, userID int64) ([]int, error) {
	query := `
		SELECT DISTINCT EXTRACT(YEAR FROM created_at)::int AS year
		FROM settlement_items
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY year DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, year)
	}

	return years, rows.Err()
}
