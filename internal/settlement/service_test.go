package settlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/splitter-app/splitter/internal/dispatch"
	"github.com/splitter-app/splitter/internal/user"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	settlements map[int64]*Settlement
	items       map[int64]*Item
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settlements: make(map[int64]*Settlement),
		items:       make(map[int64]*Item),
		nextID:      1,
	}
}

func (f *fakeStore) CreateWithItems(ctx context.Context, s *Settlement, items []*Item) error {
	s.ID = f.nextID
	f.nextID++
	s.CreatedAt = time.Now()
	f.settlements[s.ID] = s

	for _, item := range items {
		item.ID = f.nextID
		f.nextID++
		item.SettlementID = s.ID
		item.CreatedAt = time.Now()
		f.items[item.ID] = item
	}
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	return f.settlements[id], nil
}

func (f *fakeStore) GetByCode(ctx context.Context, code string) (*Settlement, error) {
	for _, s := range f.settlements {
		if s.Code == code {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListAll(ctx context.Context) ([]*Settlement, error) {
	var out []*Settlement
	for _, s := range f.settlements {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) ItemsBySettlement(ctx context.Context, settlementID int64) ([]*Item, error) {
	var out []*Item
	for _, item := range f.items {
		if item.SettlementID == settlementID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeStore) GetItemByID(ctx context.Context, id int64) (*Item, error) {
	return f.items[id], nil
}

func (f *fakeStore) MarkItemPaid(ctx context.Context, id int64) (*Item, bool, error) {
	item, ok := f.items[id]
	if !ok || item.Status != ItemStatusUnpaid {
		return nil, false, nil
	}
	now := time.Now()
	item.Status = ItemStatusPaid
	item.PaidAt = &now
	return item, true, nil
}

func (f *fakeStore) CountItemsNotOwned(ctx context.Context, ids []int64, userID int64) (int, error) {
	count := 0
	for _, id := range ids {
		if item, ok := f.items[id]; ok && item.UserID != userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) BulkMarkPaid(ctx context.Context, ids []int64, userID int64) ([]*Item, error) {
	var paid []*Item
	for _, id := range ids {
		item, ok := f.items[id]
		if !ok || item.UserID != userID || item.Status != ItemStatusUnpaid {
			continue
		}
		now := time.Now()
		item.Status = ItemStatusPaid
		item.PaidAt = &now
		paid = append(paid, item)
	}
	return paid, nil
}

func (f *fakeStore) SoftDeleteItem(ctx context.Context, id int64) error {
	delete(f.items, id)
	return nil
}

// fakeUsers resolves participants from a fixed map. Setting err makes every
// lookup fail.
type fakeUsers struct {
	users map[int64]*user.User
	err   error
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

// capturingDispatcher records every dispatched event.
func capturingDispatcher() (*dispatch.Dispatcher, *[]dispatch.Event) {
	d := dispatch.New()
	var events []dispatch.Event
	capture := func(ctx context.Context, event dispatch.Event) error {
		events = append(events, event)
		return nil
	}
	d.Register(dispatch.KindSettlementCreated, capture)
	d.Register(dispatch.KindSettlementAnnounced, capture)
	d.Register(dispatch.KindItemPaid, capture)
	d.Register(dispatch.KindItemsBulkPaid, capture)
	return d, &events
}

func newTestServiceWithUsers() (*Service, *fakeStore, *fakeUsers, *[]dispatch.Event) {
	store := newFakeStore()
	users := &fakeUsers{users: map[int64]*user.User{
		1: {ID: 1, Name: "Anna", Email: "anna@example.com"},
		2: {ID: 2, Name: "Bartek", Email: "bartek@example.com"},
		3: {ID: 3, Name: "Celina", Email: "celina@example.com"},
	}}
	dispatcher, events := capturingDispatcher()
	return NewService(store, users, dispatcher), store, users, events
}

func newTestService() (*Service, *fakeStore, *[]dispatch.Event) {
	svc, store, _, events := newTestServiceWithUsers()
	return svc, store, events
}

func TestCreateSplitsSharesAndMarksCreatorPaid(t *testing.T) {
	svc, _, events := newTestService()

	// Two people order for 100 zł total with a 10% discount, a 10 zł
	// voucher, 6 zł delivery and a 2 zł transaction fee.
	result, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		RestaurantName: "Pizza Place",
		Discount:       10,
		Voucher:        10,
		Delivery:       6,
		Transaction:    2,
		Items: []ItemInput{
			{UserID: 1, Amount: 40},
			{UserID: 2, Amount: 60},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.Len(t, result.Settlement.Code, 8)

	byUser := make(map[int64]*Item)
	for _, item := range result.Items {
		byUser[item.UserID] = item
	}

	require.Equal(t, 35.00, byUser[1].FinalAmount)
	require.Equal(t, 53.00, byUser[2].FinalAmount)

	// The creator's own share is born paid; the other participant owes.
	require.Equal(t, ItemStatusPaid, byUser[1].Status)
	require.NotNil(t, byUser[1].PaidAt)
	require.Equal(t, ItemStatusUnpaid, byUser[2].Status)
	require.Nil(t, byUser[2].PaidAt)

	// One per-participant event for Bartek plus one announcement.
	require.Len(t, *events, 2)
	created, ok := (*events)[0].(dispatch.SettlementCreated)
	require.True(t, ok)
	require.Equal(t, int64(2), created.ParticipantID)
	require.Equal(t, "bartek@example.com", created.ParticipantEmail)
	require.Equal(t, 53.00, created.FinalAmount)

	announced, ok := (*events)[1].(dispatch.SettlementAnnounced)
	require.True(t, ok)
	require.Equal(t, 88.00, announced.TotalAmount)
	require.Equal(t, 2, announced.Participants)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *CreateSettlementRequest
		wantErr error
	}{
		{
			name:    "missing restaurant name",
			req:     &CreateSettlementRequest{RestaurantName: "  ", Items: []ItemInput{{UserID: 1, Amount: 10}}},
			wantErr: ErrMissingVendor,
		},
		{
			name: "duplicate participant",
			req: &CreateSettlementRequest{
				RestaurantName: "Pizza Place",
				Items:          []ItemInput{{UserID: 1, Amount: 10}, {UserID: 1, Amount: 20}},
			},
			wantErr: ErrDuplicateParticipant,
		},
		{
			name: "unknown participant",
			req: &CreateSettlementRequest{
				RestaurantName: "Pizza Place",
				Items:          []ItemInput{{UserID: 1, Amount: 10}, {UserID: 99, Amount: 20}},
			},
			wantErr: ErrUnknownParticipant,
		},
		{
			name: "malformed date",
			req: &CreateSettlementRequest{
				RestaurantName: "Pizza Place",
				Date:           strPtr("13/01/2026"),
				Items:          []ItemInput{{UserID: 1, Amount: 10}},
			},
			wantErr: ErrInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, events := newTestService()

			_, err := svc.Create(context.Background(), 1, tt.req)
			require.ErrorIs(t, err, tt.wantErr)

			// A rejected request must leave no trace.
			require.Empty(t, store.settlements)
			require.Empty(t, store.items)
			require.Empty(t, *events)
		})
	}
}

func TestMarkItemPaid(t *testing.T) {
	svc, store, events := newTestService()

	result, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		RestaurantName: "Pizza Place",
		Items: []ItemInput{
			{UserID: 1, Amount: 40},
			{UserID: 2, Amount: 60},
		},
	})
	require.NoError(t, err)
	*events = nil

	var owed *Item
	for _, item := range result.Items {
		if item.UserID == 2 {
			owed = item
		}
	}
	require.NotNil(t, owed)

	// Someone else's item cannot be paid.
	_, err = svc.MarkItemPaid(context.Background(), owed.ID, 3)
	require.ErrorIs(t, err, ErrNotParticipant)
	require.Equal(t, ItemStatusUnpaid, store.items[owed.ID].Status)

	paid, err := svc.MarkItemPaid(context.Background(), owed.ID, 2)
	require.NoError(t, err)
	require.Equal(t, ItemStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// The settlement owner is notified.
	require.Len(t, *events, 1)
	event, ok := (*events)[0].(dispatch.ItemPaid)
	require.True(t, ok)
	require.Equal(t, int64(1), event.OwnerID)
	require.Equal(t, "Bartek", event.PayerName)
	require.Equal(t, 60.00, event.Amount)

	// Paying again is a no-op: same state, same timestamp, no new event.
	firstPaidAt := *paid.PaidAt
	again, err := svc.MarkItemPaid(context.Background(), owed.ID, 2)
	require.NoError(t, err)
	require.Equal(t, ItemStatusPaid, again.Status)
	require.Equal(t, firstPaidAt, *again.PaidAt)
	require.Len(t, *events, 1)
}

func TestMarkItemPaidSurvivesLookupFailure(t *testing.T) {
	svc, store, users, events := newTestServiceWithUsers()

	result, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		RestaurantName: "Pizza Place",
		Items: []ItemInput{
			{UserID: 1, Amount: 40},
			{UserID: 2, Amount: 60},
		},
	})
	require.NoError(t, err)
	*events = nil

	var owed *Item
	for _, item := range result.Items {
		if item.UserID == 2 {
			owed = item
		}
	}
	require.NotNil(t, owed)

	// Once the payment is committed, a failing lookup must not turn a
	// successful request into an error; it only costs the notification.
	users.err = errors.New("users table unavailable")

	paid, err := svc.MarkItemPaid(context.Background(), owed.ID, 2)
	require.NoError(t, err)
	require.Equal(t, ItemStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	require.Equal(t, ItemStatusPaid, store.items[owed.ID].Status)
	require.Empty(t, *events)
}

func TestMarkItemPaidUnknownItem(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.MarkItemPaid(context.Background(), 42, 1)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestBulkMarkPaid(t *testing.T) {
	svc, _, events := newTestService()

	// Two settlements created by different people, both leaving user 3
	// in debt.
	first, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		RestaurantName: "Pizza Place",
		Items:          []ItemInput{{UserID: 1, Amount: 20}, {UserID: 3, Amount: 30}},
	})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), 2, &CreateSettlementRequest{
		RestaurantName: "Sushi Bar",
		Items:          []ItemInput{{UserID: 2, Amount: 25}, {UserID: 3, Amount: 45}},
	})
	require.NoError(t, err)
	*events = nil

	var ids []int64
	for _, item := range append(first.Items, second.Items...) {
		if item.UserID == 3 {
			ids = append(ids, item.ID)
		}
	}
	require.Len(t, ids, 2)

	result, err := svc.BulkMarkPaid(context.Background(), ids, 3)
	require.NoError(t, err)
	require.Equal(t, 2, result.PaidCount)
	require.Equal(t, 75.00, result.TotalAmount)

	require.Len(t, *events, 1)
	event, ok := (*events)[0].(dispatch.ItemsBulkPaid)
	require.True(t, ok)
	require.Equal(t, "Celina", event.PayerName)
	require.Equal(t, 75.00, event.TotalAmount)
	require.Equal(t, 2, event.Count)
}

func TestBulkMarkPaidRejectsForeignItems(t *testing.T) {
	svc, store, events := newTestService()

	result, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		RestaurantName: "Pizza Place",
		Items:          []ItemInput{{UserID: 1, Amount: 20}, {UserID: 2, Amount: 30}},
	})
	require.NoError(t, err)
	*events = nil

	var own, foreign int64
	for _, item := range result.Items {
		if item.UserID == 2 {
			own = item.ID
		} else {
			foreign = item.ID
		}
	}

	// One foreign item poisons the whole batch; nothing transitions.
	_, err = svc.BulkMarkPaid(context.Background(), []int64{own, foreign}, 2)
	require.ErrorIs(t, err, ErrNotParticipant)
	require.Equal(t, ItemStatusUnpaid, store.items[own].Status)
	require.Empty(t, *events)
}

func TestBulkMarkPaidEmptyBatch(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.BulkMarkPaid(context.Background(), nil, 1)
	require.ErrorIs(t, err, ErrEmptyBatch)
}

func TestBulkMarkPaidAlreadyPaidItems(t *testing.T) {
	svc, _, events := newTestService()

	result, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		RestaurantName: "Pizza Place",
		Items:          []ItemInput{{UserID: 1, Amount: 20}, {UserID: 2, Amount: 30}},
	})
	require.NoError(t, err)

	var owed int64
	for _, item := range result.Items {
		if item.UserID == 2 {
			owed = item.ID
		}
	}

	_, err = svc.MarkItemPaid(context.Background(), owed, 2)
	require.NoError(t, err)
	*events = nil

	// Re-paying an already settled batch transitions nothing and stays
	// silent.
	summary, err := svc.BulkMarkPaid(context.Background(), []int64{owed}, 2)
	require.NoError(t, err)
	require.Equal(t, 0, summary.PaidCount)
	require.Equal(t, 0.00, summary.TotalAmount)
	require.Empty(t, *events)
}

func TestBulkMarkPaidSurvivesLookupFailure(t *testing.T) {
	svc, store, users, events := newTestServiceWithUsers()

	result, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		RestaurantName: "Pizza Place",
		Items:          []ItemInput{{UserID: 1, Amount: 20}, {UserID: 2, Amount: 30}},
	})
	require.NoError(t, err)
	*events = nil

	var owed int64
	for _, item := range result.Items {
		if item.UserID == 2 {
			owed = item.ID
		}
	}

	users.err = errors.New("users table unavailable")

	// The batch is committed by the time the payer is resolved, so the
	// caller still gets the summary.
	summary, err := svc.BulkMarkPaid(context.Background(), []int64{owed}, 2)
	require.NoError(t, err)
	require.Equal(t, 1, summary.PaidCount)
	require.Equal(t, 30.00, summary.TotalAmount)
	require.Equal(t, ItemStatusPaid, store.items[owed].Status)
	require.Empty(t, *events)
}

func TestDeleteItem(t *testing.T) {
	svc, store, _ := newTestService()

	result, err := svc.Create(context.Background(), 1, &CreateSettlementRequest{
		RestaurantName: "Pizza Place",
		Items:          []ItemInput{{UserID: 1, Amount: 20}, {UserID: 2, Amount: 30}},
	})
	require.NoError(t, err)

	var owed int64
	for _, item := range result.Items {
		if item.UserID == 2 {
			owed = item.ID
		}
	}

	// The participant is not the creator-of-record.
	err = svc.DeleteItem(context.Background(), owed, 2)
	require.ErrorIs(t, err, ErrNotItemCreator)

	err = svc.DeleteItem(context.Background(), owed, 1)
	require.NoError(t, err)
	require.NotContains(t, store.items, owed)
}

func strPtr(s string) *string { return &s }
