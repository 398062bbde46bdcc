package model

// HistoryEntry is one row of the history table: a generated form or an
// advance summary, identified by group and date. Source tells the two
// listings apart after they are merged in the "all" filter.
type HistoryEntry struct {
	ID        int64  `json:"id"`
	GroupName string `json:"group_name"`
	Date      string `json:"date"`
	Source    string `json:"source,omitempty"`
}

// FormRecord is one archived member row of a generated group form,
// fetched via GET /form_records/{historyId}.
type FormRecord struct {
	MemberDetails   string  `json:"member_details"`
	SavingsSharesBF float64 `json:"savings_shares_bf"`
	LoanBalanceBF   float64 `json:"loan_balance_bf"`
	TotalPaid       float64 `json:"total_paid"`
	Principal       float64 `json:"principal"`
	LoanInterest    float64 `json:"loan_interest"`
	ThisMonthShares float64 `json:"this_month_shares"`
	FineAndCharges  float64 `json:"fine_and_charges"`
	SavingsSharesCF float64 `json:"savings_shares_cf"`
	LoanCF          float64 `json:"loan_cf"`
	Month           string  `json:"month"`
	Year            int     `json:"year"`
}
