package debt

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/splitter-app/splitter/internal/settlement"
)

// Repository reads settlement items for the aggregated debt views. It never
// writes; every view is recomputed from the ledger on demand.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new debt repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const itemColumns = `
	i.id, i.settlement_id, i.user_id, i.amount, i.discounted_amount, i.final_amount,
	i.status, i.paid_at, i.created_by, i.created_at, p.name, c.name, s.restaurant_name
`

func (r *Repository) queryItems(ctx context.Context, query string, args ...interface{}) ([]*settlement.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement items: %w", err)
	}
	defer rows.Close()

	var items []*settlement.Item
	for rows.Next() {
		item := &settlement.Item{}
		if err := rows.Scan(
			&item.ID,
			&item.SettlementID,
			&item.UserID,
			&item.Amount,
			&item.DiscountedAmount,
			&item.FinalAmount,
			&item.Status,
			&item.PaidAt,
			&item.CreatedBy,
			&item.CreatedAt,
			&item.ParticipantName,
			&item.CreatedByName,
			&item.RestaurantName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// UnpaidByCreator returns all unpaid undeleted items created by the given
// user, ordered so grouping by participant is stable.
func (r *Repository) UnpaidByCreator(ctx context.Context, creatorID int64) ([]*settlement.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM settlement_items i
		JOIN users p ON i.user_id = p.id
		JOIN users c ON i.created_by = c.id
		JOIN settlements s ON i.settlement_id = s.id
		WHERE i.created_by = $1 AND i.status = 'unpaid' AND i.deleted_at IS NULL
		ORDER BY i.user_id, i.created_at DESC
	`
	return r.queryItems(ctx, query, creatorID)
}

// UnpaidByParticipant returns all unpaid undeleted items owed by the given
// user, ordered so grouping by creator is stable.
func (r *Repository) UnpaidByParticipant(ctx context.Context, participantID int64) ([]*settlement.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM settlement_items i
		JOIN users p ON i.user_id = p.id
		JOIN users c ON i.created_by = c.id
		JOIN settlements s ON i.settlement_id = s.id
		WHERE i.user_id = $1 AND i.status = 'unpaid' AND i.deleted_at IS NULL
		ORDER BY i.created_by, i.created_at DESC
	`
	return r.queryItems(ctx, query, participantID)
}

// HistoryByParticipant returns the participant's items, paid and unpaid,
// capped per creditor: within each creator the rows are ranked by status
// descending then creation time descending, and rows past the limit are cut.
func (r *Repository) HistoryByParticipant(ctx context.Context, participantID int64, perGroupLimit int) ([]*settlement.Item, error) {
	query := `
		SELECT id, settlement_id, user_id, amount, discounted_amount, final_amount,
		       status, paid_at, created_by, created_at, participant_name, created_by_name, restaurant_name
		FROM (
			SELECT i.id, i.settlement_id, i.user_id, i.amount, i.discounted_amount, i.final_amount,
			       i.status, i.paid_at, i.created_by, i.created_at,
			       p.name AS participant_name, c.name AS created_by_name, s.restaurant_name,
			       ROW_NUMBER() OVER (
			           PARTITION BY i.created_by
			           ORDER BY i.status DESC, i.created_at DESC
			       ) AS rn
			FROM settlement_items i
			JOIN users p ON i.user_id = p.id
			JOIN users c ON i.created_by = c.id
			JOIN settlements s ON i.settlement_id = s.id
			WHERE i.user_id = $1 AND i.deleted_at IS NULL
		) ranked
		WHERE rn <= $2
		ORDER BY created_by, rn
	`
	return r.queryItems(ctx, query, participantID, perGroupLimit)
}

// OutstandingByDebtor aggregates every user's unpaid total across all
// creditors. Feeds the weekly digest.
func (r *Repository) OutstandingByDebtor(ctx context.Context) ([]*DebtorSummary, error) {
	query := `
		SELECT i.user_id, u.name, u.email, SUM(i.final_amount), COUNT(*)
		FROM settlement_items i
		JOIN users u ON i.user_id = u.id
		WHERE i.status = 'unpaid' AND i.deleted_at IS NULL
		GROUP BY i.user_id, u.name, u.email
		ORDER BY SUM(i.final_amount) DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate outstanding debts: %w", err)
	}
	defer rows.Close()

	var summaries []*DebtorSummary
	for rows.Next() {
		s := &DebtorSummary{}
		if err := rows.Scan(&s.UserID, &s.Name, &s.Email, &s.TotalAmount, &s.ItemCount); err != nil {
			return nil, fmt.Errorf("failed to scan debtor summary: %w", err)
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
