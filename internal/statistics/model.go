package statistics

// MonthlyStat is one month's paid/unpaid totals within a year
type MonthlyStat struct {
	Month        int     `json:"month"`
	PaidAmount   float64 `json:"paid_amount"`
	UnpaidAmount float64 `json:"unpaid_amount"`
}

// PeriodStats are the aggregates for the selected window
type PeriodStats struct {
	PaidAmount   float64 `json:"paid_amount"`
	UnpaidAmount float64 `json:"unpaid_amount"`
	PaidCount    int     `json:"paid_count"`
	UnpaidCount  int     `json:"unpaid_count"`
}

// Report is the full statistics page payload: window aggregates, the
// month-by-month breakdown of the year and the years with any activity.
type Report struct {
	Stats          *PeriodStats   `json:"stats"`
	MonthlyStats   []*MonthlyStat `json:"monthly_stats"`
	AvailableYears []int          `json:"available_years"`
	Year           int            `json:"year"`
	Month          int            `json:"month,omitempty"`
}
