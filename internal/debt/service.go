package debt

import (
	"context"

	"github.com/splitter-app/splitter/internal/settlement"
)

// Store is the read surface the aggregator needs. *Repository satisfies it;
// tests provide an in-memory fake.
type Store interface {
	UnpaidByCreator(ctx context.Context, creatorID int64) ([]*settlement.Item, error)
	UnpaidByParticipant(ctx context.Context, participantID int64) ([]*settlement.Item, error)
	HistoryByParticipant(ctx context.Context, participantID int64, perGroupLimit int) ([]*settlement.Item, error)
	OutstandingByDebtor(ctx context.Context) ([]*DebtorSummary, error)
}

// Service groups ledger items into the creditor and debtor summary views.
// All views are pure projections recomputed on every read.
type Service struct {
	store           Store
	historyPageSize int
}

// NewService creates a new debt service. historyPageSize caps how many items
// the history view keeps per creditor.
func NewService(store Store, historyPageSize int) *Service {
	if historyPageSize < 1 {
		historyPageSize = 10
	}
	return &Service{store: store, historyPageSize: historyPageSize}
}

// DebtorsOwedTo returns the creditor's perspective: every participant with
// at least one unpaid item created by creatorID, one group per participant.
func (s *Service) DebtorsOwedTo(ctx context.Context, creatorID int64) ([]*Group, error) {
	items, err := s.store.UnpaidByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	return groupItems(items, func(item *settlement.Item) Person {
		return Person{ID: item.UserID, Name: item.ParticipantName}
	}), nil
}

// MyDebts returns the debtor's perspective: every creditor the participant
// still owes, one group per creator-of-record.
func (s *Service) MyDebts(ctx context.Context, participantID int64) ([]*Group, error) {
	items, err := s.store.UnpaidByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}

	return groupItems(items, func(item *settlement.Item) Person {
		return Person{ID: item.CreatedBy, Name: item.CreatedByName}
	}), nil
}

// History returns the participant's paid and unpaid items grouped by
// creditor, each group capped at the configured page size (overridable per
// call; limit <= 0 falls back to the default).
func (s *Service) History(ctx context.Context, participantID int64, limit int) ([]*Group, error) {
	if limit <= 0 {
		limit = s.historyPageSize
	}

	items, err := s.store.HistoryByParticipant(ctx, participantID, limit)
	if err != nil {
		return nil, err
	}

	return groupItems(items, func(item *settlement.Item) Person {
		return Person{ID: item.CreatedBy, Name: item.CreatedByName}
	}), nil
}

// OutstandingByDebtor returns every user's total unpaid debt, for the weekly
// digest.
func (s *Service) OutstandingByDebtor(ctx context.Context) ([]*DebtorSummary, error) {
	return s.store.OutstandingByDebtor(ctx)
}

// groupItems buckets items by counterparty, preserving first-seen group
// order and the item order within each group. Totals count unpaid items
// only, so a group's total is the amount actually outstanding.
func groupItems(items []*settlement.Item, keyFn func(*settlement.Item) Person) []*Group {
	var groups []*Group
	index := make(map[int64]*Group)

	for _, item := range items {
		key := keyFn(item)
		group, ok := index[key.ID]
		if !ok {
			group = &Group{Counterparty: key}
			index[key.ID] = group
			groups = append(groups, group)
		}
		group.Items = append(group.Items, item)
		if item.Status == settlement.ItemStatusUnpaid {
			group.TotalAmount += item.FinalAmount
			group.UnpaidCount++
		}
	}

	return groups
}
