package debt

import "github.com/splitter-app/splitter/internal/settlement"

// Person is the counterparty identity a group is keyed by
type Person struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Group is one counterparty's slice of the ledger: either everything one
// debtor owes a creditor (debtors view) or everything one creditor is owed
// by a debtor (my-debts view). Items keep their individual status so paid
// and unpaid subtotals can be recomputed.
type Group struct {
	Counterparty Person             `json:"counterparty"`
	Items        []*settlement.Item `json:"items"`
	TotalAmount  float64            `json:"total_amount"`
	UnpaidCount  int                `json:"unpaid_count"`
}

// DebtorSummary is one user's total outstanding debt across all creditors.
// It feeds the weekly digest email.
type DebtorSummary struct {
	UserID      int64   `json:"user_id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
}
