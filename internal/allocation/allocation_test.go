package allocation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name         string
		participants []Participant
		adj          Adjustments
		mode         RoundingMode
		wantErr      error
		validate     func(t *testing.T, shares []Share)
	}{
		{
			name: "restaurant bill with all adjustments",
			participants: []Participant{
				{UserID: 1, Amount: 40},
				{UserID: 2, Amount: 60},
			},
			adj: Adjustments{DiscountPercent: 10, Voucher: 10, Delivery: 6, Transaction: 2},
			validate: func(t *testing.T, shares []Share) {
				// user 1: 40 - 4 - 5 = 31, +3 +1 = 35.00
				require.InDelta(t, 31.0, shares[0].DiscountedAmount, 0.001)
				require.Equal(t, 35.00, shares[0].FinalAmount)
				// user 2: 60 - 6 - 5 = 49, +3 +1 = 53.00
				require.InDelta(t, 49.0, shares[1].DiscountedAmount, 0.001)
				require.Equal(t, 53.00, shares[1].FinalAmount)
			},
		},
		{
			name: "no adjustments preserves base amounts exactly",
			participants: []Participant{
				{UserID: 1, Amount: 12.34},
				{UserID: 2, Amount: 56.78},
				{UserID: 3, Amount: 0.01},
			},
			adj: Adjustments{},
			validate: func(t *testing.T, shares []Share) {
				var sum float64
				for i, s := range shares {
					require.Equal(t, s.Amount, s.FinalAmount, "share %d", i)
					sum += s.FinalAmount
				}
				require.Equal(t, 12.34+56.78+0.01, sum)
			},
		},
		{
			// Amounts whose cent value sits just below an integer in
			// float64 (0.29*100 == 28.999999999999996) must survive
			// the flooring untouched.
			name: "no adjustments preserves awkward float amounts",
			participants: []Participant{
				{UserID: 1, Amount: 0.29},
				{UserID: 2, Amount: 1.15},
				{UserID: 3, Amount: 2.03},
			},
			adj: Adjustments{},
			validate: func(t *testing.T, shares []Share) {
				for i, s := range shares {
					require.Equal(t, s.Amount, s.FinalAmount, "share %d", i)
				}
			},
		},
		{
			name:         "no participants",
			participants: nil,
			adj:          Adjustments{},
			wantErr:      ErrNoParticipants,
		},
		{
			name:         "negative base amount",
			participants: []Participant{{UserID: 1, Amount: -5}},
			adj:          Adjustments{},
			wantErr:      ErrNegativeAmount,
		},
		{
			name:         "negative voucher",
			participants: []Participant{{UserID: 1, Amount: 10}},
			adj:          Adjustments{Voucher: -1},
			wantErr:      ErrNegativeAmount,
		},
		{
			name:         "discount above 100",
			participants: []Participant{{UserID: 1, Amount: 10}},
			adj:          Adjustments{DiscountPercent: 101},
			wantErr:      ErrDiscountOutOfRange,
		},
		{
			name: "floor mode leaves drift unreconciled",
			participants: []Participant{
				{UserID: 1, Amount: 10},
				{UserID: 2, Amount: 10},
				{UserID: 3, Amount: 10},
			},
			adj:  Adjustments{Delivery: 1}, // 0.3333... each
			mode: RoundFloor,
			validate: func(t *testing.T, shares []Share) {
				var sum float64
				for _, s := range shares {
					require.Equal(t, 10.33, s.FinalAmount)
					sum += s.FinalAmount
				}
				// 0.01 short of the theoretical 31.00
				require.InDelta(t, 30.99, sum, 0.0001)
			},
		},
		{
			name: "distribute mode reconciles the remainder",
			participants: []Participant{
				{UserID: 1, Amount: 10},
				{UserID: 2, Amount: 10},
				{UserID: 3, Amount: 10},
			},
			adj:  Adjustments{Delivery: 1},
			mode: RoundDistribute,
			validate: func(t *testing.T, shares []Share) {
				var sum float64
				for _, s := range shares {
					sum += s.FinalAmount
				}
				require.InDelta(t, 31.00, sum, 0.0001)
			},
		},
		{
			name:         "single participant carries everything",
			participants: []Participant{{UserID: 7, Amount: 100}},
			adj:          Adjustments{DiscountPercent: 50, Voucher: 10, Delivery: 5, Transaction: 1},
			validate: func(t *testing.T, shares []Share) {
				// 100 - 50 - 10 = 40, +5 +1 = 46.00
				require.Equal(t, 46.00, shares[0].FinalAmount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Calculate(tt.participants, tt.adj, tt.mode)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, shares, len(tt.participants))
			tt.validate(t, shares)
		})
	}
}

func TestCalculateSumApproximation(t *testing.T) {
	// With adjustments, the floored sum never exceeds the theoretical total
	// and falls at most N cents short of it.
	participants := []Participant{
		{UserID: 1, Amount: 13.37},
		{UserID: 2, Amount: 42.01},
		{UserID: 3, Amount: 7.77},
		{UserID: 4, Amount: 99.99},
	}
	adj := Adjustments{DiscountPercent: 7, Voucher: 5.55, Delivery: 8.20, Transaction: 1.30}

	shares, err := Calculate(participants, adj, RoundFloor)
	require.NoError(t, err)

	var base, flooredSum float64
	for _, p := range participants {
		base += p.Amount
	}
	for _, s := range shares {
		flooredSum += s.FinalAmount
	}

	theoretical := base - base*adj.DiscountPercent/100 - adj.Voucher + adj.Delivery + adj.Transaction
	require.LessOrEqual(t, flooredSum, theoretical+1e-9)
	require.GreaterOrEqual(t, flooredSum, theoretical-float64(len(participants))*0.01-1e-9)
}

func TestFloorToCents(t *testing.T) {
	require.Equal(t, 53.00, floorToCents(53.004))
	require.Equal(t, 10.99, floorToCents(10.999))
	require.Equal(t, 0.0, floorToCents(0.0099))
	require.Equal(t, 35.00, floorToCents(35.0))

	// Values whose float64 cent representation falls a hair short of the
	// integer must not lose a cent.
	require.Equal(t, 0.29, floorToCents(0.29))
	require.Equal(t, 1.15, floorToCents(1.15))
	require.Equal(t, 2.03, floorToCents(2.03))
}
