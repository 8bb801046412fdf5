package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles settlement and item data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWithItems inserts a settlement and all its items in one transaction.
// The IDs and timestamps of the passed structs are filled in on success.
func (r *Repository) CreateWithItems(ctx context.Context, s *Settlement, items []*Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	settlementQuery := `
		INSERT INTO settlements (code, restaurant_name, user_id, date, discount, voucher, delivery, transaction)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, settlementQuery,
		s.Code,
		s.RestaurantName,
		s.UserID,
		s.Date,
		s.Discount,
		s.Voucher,
		s.Delivery,
		s.Transaction,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	itemQuery := `
		INSERT INTO settlement_items (settlement_id, user_id, amount, discounted_amount, final_amount, status, paid_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	for _, item := range items {
		item.SettlementID = s.ID
		err = tx.QueryRowContext(ctx, itemQuery,
			s.ID,
			item.UserID,
			item.Amount,
			item.DiscountedAmount,
			item.FinalAmount,
			item.Status,
			item.PaidAt,
			item.CreatedBy,
		).Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create settlement item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}

	return nil
}

// GetByID retrieves an undeleted settlement by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	query := `
		SELECT s.id, s.code, s.restaurant_name, s.user_id, s.date, s.discount, s.voucher, s.delivery, s.transaction, s.created_at, u.name
		FROM settlements s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1 AND s.deleted_at IS NULL
	`
	return r.scanSettlement(r.db.QueryRowContext(ctx, query, id))
}

// GetByCode retrieves an undeleted settlement by its public code
func (r *Repository) GetByCode(ctx context.Context, code string) (*Settlement, error) {
	query := `
		SELECT s.id, s.code, s.restaurant_name, s.user_id, s.date, s.discount, s.voucher, s.delivery, s.transaction, s.created_at, u.name
		FROM settlements s
		JOIN users u ON s.user_id = u.id
		WHERE s.code = $1 AND s.deleted_at IS NULL
	`
	return r.scanSettlement(r.db.QueryRowContext(ctx, query, code))
}

func (r *Repository) scanSettlement(row *sql.Row) (*Settlement, error) {
	s := &Settlement{}
	err := row.Scan(
		&s.ID,
		&s.Code,
		&s.RestaurantName,
		&s.UserID,
		&s.Date,
		&s.Discount,
		&s.Voucher,
		&s.Delivery,
		&s.Transaction,
		&s.CreatedAt,
		&s.OwnerName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

// ListAll retrieves all undeleted settlements, newest first
func (r *Repository) ListAll(ctx context.Context) ([]*Settlement, error) {
	query := `
		SELECT s.id, s.code, s.restaurant_name, s.user_id, s.date, s.discount, s.voucher, s.delivery, s.transaction, s.created_at, u.name
		FROM settlements s
		JOIN users u ON s.user_id = u.id
		WHERE s.deleted_at IS NULL
		ORDER BY s.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(
			&s.ID,
			&s.Code,
			&s.RestaurantName,
			&s.UserID,
			&s.Date,
			&s.Discount,
			&s.Voucher,
			&s.Delivery,
			&s.Transaction,
			&s.CreatedAt,
			&s.OwnerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}

	return settlements, rows.Err()
}

const itemColumns = `
	i.id, i.settlement_id, i.user_id, i.amount, i.discounted_amount, i.final_amount,
	i.status, i.paid_at, i.created_by, i.created_at, p.name, c.name
`

func scanItem(rows *sql.Rows) (*Item, error) {
	item := &Item{}
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
	); err != nil {
		return nil, fmt.Errorf("failed to scan settlement item: %w", err)
	}
	return item, nil
}

// ItemsBySettlement retrieves all undeleted items of a settlement
func (r *Repository) ItemsBySettlement(ctx context.Context, settlementID int64) ([]*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM settlement_items i
		JOIN users p ON i.user_id = p.id
		JOIN users c ON i.created_by = c.id
		WHERE i.settlement_id = $1 AND i.deleted_at IS NULL
		ORDER BY i.id
	`

	rows, err := r.db.QueryContext(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// GetItemByID retrieves an undeleted item by its ID
func (r *Repository) GetItemByID(ctx context.Context, id int64) (*Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM settlement_items i
		JOIN users p ON i.user_id = p.id
		JOIN users c ON i.created_by = c.id
		WHERE i.id = $1 AND i.deleted_at IS NULL
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement item: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanItem(rows)
}

// MarkItemPaid transitions a single item from unpaid to paid atomically.
// The WHERE status='unpaid' guard makes a concurrent double-pay a no-op for
// the loser, so only one notification fires per transition. Returns false
// when the item was not in the unpaid state.
func (r *Repository) MarkItemPaid(ctx context.Context, id int64) (*Item, bool, error) {
	query := `
		UPDATE settlement_items
		SET status = 'paid', paid_at = NOW()
		WHERE id = $1 AND status = 'unpaid' AND deleted_at IS NULL
		RETURNING id, settlement_id, user_id, amount, discounted_amount, final_amount, status, paid_at, created_by, created_at
	`

	item := &Item{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
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
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to mark item paid: %w", err)
	}

	return item, true, nil
}

// CountItemsNotOwned returns how many of the given undeleted items do NOT
// belong to the given participant. Used to reject bulk payments that touch
// somebody else's debt.
func (r *Repository) CountItemsNotOwned(ctx context.Context, ids []int64, userID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM settlement_items
		WHERE id = ANY($1) AND user_id <> $2 AND deleted_at IS NULL
	`
	if err := r.db.QueryRowContext(ctx, query, pq.Array(ids), userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count foreign items: %w", err)
	}
	return count, nil
}

// BulkMarkPaid transitions every still-unpaid item of the batch that belongs
// to the participant, in one statement, and returns the transitioned items.
func (r *Repository) BulkMarkPaid(ctx context.Context, ids []int64, userID int64) ([]*Item, error) {
	query := `
		UPDATE settlement_items
		SET status = 'paid', paid_at = NOW()
		WHERE id = ANY($1) AND user_id = $2 AND status = 'unpaid' AND deleted_at IS NULL
		RETURNING id, settlement_id, user_id, amount, discounted_amount, final_amount, status, paid_at, created_by, created_at
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk mark paid: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item := &Item{}
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
		); err != nil {
			return nil, fmt.Errorf("failed to scan paid item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// SoftDeleteItem marks an item as deleted
func (r *Repository) SoftDeleteItem(ctx context.Context, id int64) error {
	query := `UPDATE settlement_items SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete settlement item: %w", err)
	}
	return nil
}
