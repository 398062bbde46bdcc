package model

import "time"

// Advance statuses as reported by the backend.
const (
	AdvanceStatusActive    = "active"
	AdvanceStatusCleared   = "cleared"
	AdvanceStatusDefaulted = "defaulted"
)

// Advance is a single member advance within a group. The backend is
// authoritative for every field; the client never derives amounts locally.
type Advance struct {
	// ID is the backend-assigned identifier.
	ID int64 `json:"id"`

	// GroupID is the owning group.
	GroupID int64 `json:"group_id"`

	// MemberName is the display name of the borrowing member.
	MemberName string `json:"member_name"`

	// InitialAmount is the principal issued to the member.
	InitialAmount float64 `json:"initial_amount"`

	// PaymentAmount is the expected periodic payment.
	PaymentAmount float64 `json:"payment_amount"`

	// InterestRate is a percentage (e.g. 10 means 10%).
	InterestRate float64 `json:"interest_rate"`

	// PaidAmount is the cumulative amount repaid so far.
	PaidAmount float64 `json:"paid_amount"`

	// TotalAmountDue is the outstanding balance including interest.
	TotalAmountDue float64 `json:"total_amount_due"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdvancePage is the envelope returned by GET /advances?group_id=...:
// the resolved group name plus its advances.
type AdvancePage struct {
	GroupName string    `json:"group_name"`
	Advances  []Advance `json:"advances"`
}

// NewAdvance is the payload for creating an advance. The backend fills in
// rates, payment schedule, and status.
type NewAdvance struct {
	GroupID       int64   `json:"group_id"`
	MemberName    string  `json:"member_name"`
	InitialAmount float64 `json:"initial_amount"`
}
