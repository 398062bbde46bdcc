package model

// UserInfo is the signed-in account as returned by GET /user_info.
type UserInfo struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// MemberSummary carries the office-wide totals shown in the dashboard
// header, returned by GET /member_names.
type MemberSummary struct {
	TotalMemberDetails   int     `json:"total_member_details"`
	TotalSavingsSharesBF float64 `json:"total_savings_shares_bf"`
	TotalLoanBalanceBF   float64 `json:"total_loan_balance_bf"`
	TotalActiveUsers     int     `json:"total_active_users"`
	CurrentFirstName     string  `json:"current_first_name"`
}
