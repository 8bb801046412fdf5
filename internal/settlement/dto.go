package settlement

// ItemInput is one participant's base amount on the settlement form
type ItemInput struct {
	UserID int64   `json:"user_id"`
	Amount float64 `json:"amount"`
}

// CreateSettlementRequest represents the request body for creating a settlement
type CreateSettlementRequest struct {
	RestaurantName string      `json:"restaurant_name"`
	Date           *string     `json:"date,omitempty"` // YYYY-MM-DD
	Discount       float64     `json:"discount"`
	Voucher        float64     `json:"voucher"`
	Delivery       float64     `json:"delivery"`
	Transaction    float64     `json:"transaction"`
	Items          []ItemInput `json:"items"`
}

// BulkPayRequest represents the request body for paying several items at once
type BulkPayRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// BulkPayResult summarizes a bulk payment
type BulkPayResult struct {
	PaidCount   int     `json:"paid_count"`
	TotalAmount float64 `json:"total_amount"`
}
