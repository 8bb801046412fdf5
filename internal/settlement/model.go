package settlement

import "time"

// ItemStatus represents the payment status of a settlement item
type ItemStatus string

const (
	ItemStatusPaid   ItemStatus = "paid"
	ItemStatusUnpaid ItemStatus = "unpaid"
)

// Settlement represents one group purchase event: the vendor, the creator
// and the shared adjustments applied to every participant's base amount.
// Settlements are immutable after creation.
type Settlement struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"` // short public-facing token
	RestaurantName string     `json:"restaurant_name"`
	UserID         int64      `json:"user_id"`
	Date           *time.Time `json:"date,omitempty"`
	Discount       float64    `json:"discount"` // percent, 0-100
	Voucher        float64    `json:"voucher"`
	Delivery       float64    `json:"delivery"`
	Transaction    float64    `json:"transaction"`
	CreatedAt      time.Time  `json:"created_at"`

	// Populated via JOIN
	OwnerName string `json:"owner_name,omitempty"`
}

// Item is one participant's financial obligation within a settlement.
// The only mutation after creation is the one-way unpaid -> paid transition.
type Item struct {
	ID               int64      `json:"id"`
	SettlementID     int64      `json:"settlement_id"`
	UserID           int64      `json:"user_id"`
	Amount           float64    `json:"amount"`
	DiscountedAmount float64    `json:"discounted_amount"`
	FinalAmount      float64    `json:"final_amount"`
	Status           ItemStatus `json:"status"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedBy        int64      `json:"created_by"`
	CreatedAt        time.Time  `json:"created_at"`

	// Populated via JOIN
	ParticipantName string `json:"participant_name,omitempty"`
	CreatedByName   string `json:"created_by_name,omitempty"`
	RestaurantName  string `json:"restaurant_name,omitempty"`
}

// SettlementWithItems combines a settlement with its ledger items
type SettlementWithItems struct {
	Settlement *Settlement `json:"settlement"`
	Items      []*Item     `json:"items"`
}
