package model

// MonthlyPerformance is one row of the dashboard's monthly performance
// table: office-level figures recorded per group per month.
type MonthlyPerformance struct {
	ID             int64   `json:"id"`
	GroupName      string  `json:"group_name"`
	Month          string  `json:"month"`
	Year           int     `json:"year"`
	Banking        float64 `json:"banking"`
	ServiceFee     float64 `json:"service_fee"`
	LoanForm       float64 `json:"loan_form"`
	Passbook       float64 `json:"passbook"`
	OfficeDebtPaid float64 `json:"office_debt_paid"`
	OfficeBanking  float64 `json:"office_banking"`
}

// GroupPerformance is one member row of a group's monthly performance
// form: savings, shares, and loan movement for a single member.
type GroupPerformance struct {
	ID              int64   `json:"id"`
	GroupID         int64   `json:"group_id"`
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
}

// GroupPerformancePage is the envelope returned by
// GET /group_performances?group_id=...: the resolved group name plus rows.
type GroupPerformancePage struct {
	GroupName    string             `json:"group_name"`
	Performances []GroupPerformance `json:"performances"`
}
