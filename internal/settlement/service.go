package settlement

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splitter-app/splitter/internal/allocation"
	"github.com/splitter-app/splitter/internal/dispatch"
	"github.com/splitter-app/splitter/internal/user"
)

// Common errors
var (
	ErrSettlementNotFound   = errors.New("settlement not found")
	ErrItemNotFound         = errors.New("settlement item not found")
	ErrNotParticipant       = errors.New("only the item's participant can pay it")
	ErrNotItemCreator       = errors.New("only the item's creator can delete it")
	ErrMissingVendor        = errors.New("restaurant name is required")
	ErrDuplicateParticipant = errors.New("each participant may appear only once")
	ErrUnknownParticipant   = errors.New("participant does not exist")
	ErrEmptyBatch           = errors.New("no item ids given")
	ErrInvalidDate          = errors.New("date must be YYYY-MM-DD")
)

// Store is the persistence surface the service needs. *Repository satisfies
// it; tests provide an in-memory fake.
type Store interface {
	CreateWithItems(ctx context.Context, s *Settlement, items []*Item) error
	GetByID(ctx context.Context, id int64) (*Settlement, error)
	GetByCode(ctx context.Context, code string) (*Settlement, error)
	ListAll(ctx context.Context) ([]*Settlement, error)
	ItemsBySettlement(ctx context.Context, settlementID int64) ([]*Item, error)
	GetItemByID(ctx context.Context, id int64) (*Item, error)
	MarkItemPaid(ctx context.Context, id int64) (*Item, bool, error)
	CountItemsNotOwned(ctx context.Context, ids []int64, userID int64) (int, error)
	BulkMarkPaid(ctx context.Context, ids []int64, userID int64) ([]*Item, error)
	SoftDeleteItem(ctx context.Context, id int64) error
}

// UserStore resolves participant identities
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Service owns the settlement ledger: creation and the one-way payment
// lifecycle of its items. Side effects go through the dispatcher after the
// ledger write commits and are best-effort.
type Service struct {
	store      Store
	users      UserStore
	dispatcher *dispatch.Dispatcher
	rounding   allocation.RoundingMode
}

// NewService creates a new settlement service
func NewService(store Store, users UserStore, dispatcher *dispatch.Dispatcher) *Service {
	return &Service{
		store:      store,
		users:      users,
		dispatcher: dispatcher,
		rounding:   allocation.RoundFloor,
	}
}

// Create validates the request, computes every participant's share, persists
// the settlement with its items in one transaction and then emits a
// SettlementCreated event per non-creator participant.
//
// The creator's own item is born paid; everything else is born unpaid.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateSettlementRequest) (*SettlementWithItems, error) {
	if strings.TrimSpace(req.RestaurantName) == "" {
		return nil, ErrMissingVendor
	}

	var date *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		date = &parsed
	}

	participants := make([]allocation.Participant, len(req.Items))
	seen := make(map[int64]struct{}, len(req.Items))
	for i, input := range req.Items {
		if _, dup := seen[input.UserID]; dup {
			return nil, ErrDuplicateParticipant
		}
		seen[input.UserID] = struct{}{}
		participants[i] = allocation.Participant{UserID: input.UserID, Amount: input.Amount}
	}

	shares, err := allocation.Calculate(participants, allocation.Adjustments{
		DiscountPercent: req.Discount,
		Voucher:         req.Voucher,
		Delivery:        req.Delivery,
		Transaction:     req.Transaction,
	}, s.rounding)
	if err != nil {
		return nil, err
	}

	// Resolve everyone before writing anything, so a bad participant id
	// rejects the whole batch.
	resolved := make(map[int64]*user.User, len(shares))
	for _, share := range shares {
		u, err := s.users.GetByID(ctx, share.UserID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, ErrUnknownParticipant
		}
		resolved[share.UserID] = u
	}

	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrUnknownParticipant
	}

	stl := &Settlement{
		Code:           uuid.NewString()[:8],
		RestaurantName: req.RestaurantName,
		UserID:         creatorID,
		Date:           date,
		Discount:       req.Discount,
		Voucher:        req.Voucher,
		Delivery:       req.Delivery,
		Transaction:    req.Transaction,
		OwnerName:      creator.Name,
	}

	now := time.Now()
	items := make([]*Item, len(shares))
	for i, share := range shares {
		item := &Item{
			UserID:           share.UserID,
			Amount:           share.Amount,
			DiscountedAmount: share.DiscountedAmount,
			FinalAmount:      share.FinalAmount,
			Status:           ItemStatusUnpaid,
			CreatedBy:        creatorID,
			ParticipantName:  resolved[share.UserID].Name,
			CreatedByName:    creator.Name,
		}
		if share.UserID == creatorID {
			// Self-owed debt is trivially settled.
			item.Status = ItemStatusPaid
			item.PaidAt = &now
		}
		items[i] = item
	}

	if err := s.store.CreateWithItems(ctx, stl, items); err != nil {
		return nil, err
	}

	var total float64
	for _, item := range items {
		total += item.FinalAmount
		if item.UserID == creatorID {
			continue
		}
		s.dispatcher.Dispatch(ctx, dispatch.SettlementCreated{
			SettlementID:     stl.ID,
			Code:             stl.Code,
			RestaurantName:   stl.RestaurantName,
			CreatorName:      creator.Name,
			ParticipantID:    item.UserID,
			ParticipantEmail: resolved[item.UserID].Email,
			DiscountPercent:  stl.Discount,
			Voucher:          stl.Voucher,
			Delivery:         stl.Delivery,
			Transaction:      stl.Transaction,
			FinalAmount:      item.FinalAmount,
		})
	}

	s.dispatcher.Dispatch(ctx, dispatch.SettlementAnnounced{
		SettlementID:   stl.ID,
		Code:           stl.Code,
		RestaurantName: stl.RestaurantName,
		CreatorName:    creator.Name,
		TotalAmount:    total,
		Participants:   len(items),
	})

	return &SettlementWithItems{Settlement: stl, Items: items}, nil
}

// GetByID retrieves a settlement with its items
func (s *Service) GetByID(ctx context.Context, id int64) (*SettlementWithItems, error) {
	stl, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stl == nil {
		return nil, ErrSettlementNotFound
	}

	items, err := s.store.ItemsBySettlement(ctx, id)
	if err != nil {
		return nil, err
	}

	return &SettlementWithItems{Settlement: stl, Items: items}, nil
}

// GetByCode retrieves a settlement with its items by its public code
func (s *Service) GetByCode(ctx context.Context, code string) (*SettlementWithItems, error) {
	stl, err := s.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if stl == nil {
		return nil, ErrSettlementNotFound
	}

	items, err := s.store.ItemsBySettlement(ctx, stl.ID)
	if err != nil {
		return nil, err
	}

	return &SettlementWithItems{Settlement: stl, Items: items}, nil
}

// List returns all settlements, newest first
func (s *Service) List(ctx context.Context) ([]*Settlement, error) {
	return s.store.ListAll(ctx)
}

// MarkItemPaid transitions one item to paid. Only the item's participant may
// pay it. Paying an already-paid item is an idempotent no-op: no error, no
// event, and paid_at keeps the timestamp of the first transition.
func (s *Service) MarkItemPaid(ctx context.Context, itemID, actorID int64) (*Item, error) {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}

	if item.UserID != actorID {
		return nil, ErrNotParticipant
	}

	if item.Status == ItemStatusPaid {
		return item, nil
	}

	paid, updated, err := s.store.MarkItemPaid(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !updated {
		// Lost a race with another transition; the terminal state is the
		// same either way.
		return s.store.GetItemByID(ctx, itemID)
	}

	// The payment is committed; from here on failures only cost the
	// notification, never the result.
	stl, err := s.store.GetByID(ctx, paid.SettlementID)
	if err != nil || stl == nil {
		if err != nil {
			slog.Error("item paid but settlement lookup failed, skipping event",
				"item_id", itemID, "error", err)
		}
		return paid, nil
	}

	payer, err := s.users.GetByID(ctx, actorID)
	if err != nil || payer == nil {
		if err != nil {
			slog.Error("item paid but payer lookup failed, skipping event",
				"item_id", itemID, "error", err)
		}
		return paid, nil
	}

	s.dispatcher.Dispatch(ctx, dispatch.ItemPaid{
		SettlementID:   stl.ID,
		RestaurantName: stl.RestaurantName,
		OwnerID:        stl.UserID,
		PayerName:      payer.Name,
		Amount:         paid.FinalAmount,
	})

	return paid, nil
}

// BulkMarkPaid pays every item of the batch in one pass. The whole batch is
// rejected unless every item belongs to the actor. Items already paid are
// skipped; the summary and the single aggregate event cover only the items
// that actually transitioned.
func (s *Service) BulkMarkPaid(ctx context.Context, itemIDs []int64, actorID int64) (*BulkPayResult, error) {
	if len(itemIDs) == 0 {
		return nil, ErrEmptyBatch
	}

	foreign, err := s.store.CountItemsNotOwned(ctx, itemIDs, actorID)
	if err != nil {
		return nil, err
	}
	if foreign > 0 {
		return nil, ErrNotParticipant
	}

	paid, err := s.store.BulkMarkPaid(ctx, itemIDs, actorID)
	if err != nil {
		return nil, err
	}
	if len(paid) == 0 {
		return &BulkPayResult{}, nil
	}

	var total float64
	for _, item := range paid {
		total += item.FinalAmount
	}

	// Same as single pay: the batch is committed, a failed payer lookup
	// only skips the event.
	payer, err := s.users.GetByID(ctx, actorID)
	if err != nil || payer == nil {
		if err != nil {
			slog.Error("items bulk paid but payer lookup failed, skipping event",
				"actor_id", actorID, "error", err)
		}
		return &BulkPayResult{PaidCount: len(paid), TotalAmount: total}, nil
	}

	s.dispatcher.Dispatch(ctx, dispatch.ItemsBulkPaid{
		CreatedBy:   paid[0].CreatedBy,
		PayerName:   payer.Name,
		TotalAmount: total,
		Count:       len(paid),
	})

	return &BulkPayResult{PaidCount: len(paid), TotalAmount: total}, nil
}

// DeleteItem soft-deletes an item. Only the item's creator-of-record may do
// so.
func (s *Service) DeleteItem(ctx context.Context, itemID, actorID int64) error {
	item, err := s.store.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrItemNotFound
	}

	if item.CreatedBy != actorID {
		return ErrNotItemCreator
	}

	return s.store.SoftDeleteItem(ctx, itemID)
}
