// Package allocation computes each participant's payable share of a
// settlement from the raw base amounts and the settlement-level adjustments
// (percentage discount, voucher, delivery fee, transaction fee).
package allocation

import (
	"errors"
	"math"
)

// RoundingMode controls how the final amount is rounded to two decimals.
type RoundingMode int

const (
	// RoundFloor floors every final amount independently. The sum of the
	// floored amounts may fall up to N*0.01 below the theoretical total;
	// the drift is not redistributed. This matches the historical behavior
	// and downstream totals depend on it, so it is the default.
	RoundFloor RoundingMode = iota

	// RoundDistribute floors every final amount and adds the leftover
	// remainder to the largest share, so the amounts reconcile with the
	// adjusted total.
	RoundDistribute
)

var (
	ErrNoParticipants     = errors.New("settlement requires at least one participant")
	ErrNegativeAmount     = errors.New("amounts cannot be negative")
	ErrDiscountOutOfRange = errors.New("discount must be between 0 and 100")
)

// Participant is one person's raw base amount within a settlement.
type Participant struct {
	UserID int64
	Amount float64
}

// Adjustments are the settlement-level costs shared by all participants.
// Voucher, delivery and transaction fees are split equally; the discount is
// a percentage applied to each base amount.
type Adjustments struct {
	DiscountPercent float64
	Voucher         float64
	Delivery        float64
	Transaction     float64
}

// Share is the computed obligation of a single participant.
type Share struct {
	UserID           int64
	Amount           float64
	DiscountedAmount float64
	FinalAmount      float64
}

// Validate checks the inputs without computing anything.
func Validate(participants []Participant, adj Adjustments) error {
	if len(participants) == 0 {
		return ErrNoParticipants
	}
	if adj.DiscountPercent < 0 || adj.DiscountPercent > 100 {
		return ErrDiscountOutOfRange
	}
	if adj.Voucher < 0 || adj.Delivery < 0 || adj.Transaction < 0 {
		return ErrNegativeAmount
	}
	for _, p := range participants {
		if p.Amount < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}

// Calculate computes every participant's share. For participant i of N:
//
//	discount_i   = amount_i * discountPercent / 100
//	discounted_i = amount_i - discount_i - voucher/N
//	final_i      = discounted_i + delivery/N + transaction/N
//
// The voucher and both fees are split equally, independent of the base
// amounts. Final amounts are truncated to two decimals according to mode.
func Calculate(participants []Participant, adj Adjustments, mode RoundingMode) ([]Share, error) {
	if err := Validate(participants, adj); err != nil {
		return nil, err
	}

	n := float64(len(participants))
	voucherShare := adj.Voucher / n
	deliveryShare := adj.Delivery / n
	transactionShare := adj.Transaction / n

	shares := make([]Share, len(participants))
	var exactTotal, flooredTotal float64
	largest := 0

	for i, p := range participants {
		discount := p.Amount * adj.DiscountPercent / 100
		discounted := p.Amount - discount - voucherShare
		final := discounted + deliveryShare + transactionShare

		shares[i] = Share{
			UserID:           p.UserID,
			Amount:           p.Amount,
			DiscountedAmount: discounted,
			FinalAmount:      floorToCents(final),
		}

		exactTotal += final
		flooredTotal += shares[i].FinalAmount
		if shares[i].FinalAmount > shares[largest].FinalAmount {
			largest = i
		}
	}

	if mode == RoundDistribute {
		remainder := floorToCents(exactTotal) - flooredTotal
		if remainder > 0 {
			shares[largest].FinalAmount = floorToCents(shares[largest].FinalAmount + remainder)
		}
	}

	return shares, nil
}

// floorToCents truncates a value to two decimal places. The epsilon guards
// against float64 representation error: 0.29*100 evaluates to
// 28.999999999999996, and a bare Floor would drop a full cent.
func floorToCents(value float64) float64 {
	return math.Floor(value*100+1e-9) / 100
}
