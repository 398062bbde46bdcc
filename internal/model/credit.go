package model

import "time"

// MonthlyAdvanceCredit summarises the advance money issued to a group in
// one month, before individual member advances are drilled into.
type MonthlyAdvanceCredit struct {
	ID                 int64     `json:"id"`
	GroupID            int64     `json:"group_id"`
	GroupName          string    `json:"group_name"`
	Date               time.Time `json:"date"`
	TotalAdvanceAmount float64   `json:"total_advance_amount"`
	Deductions         float64   `json:"deductions"`
}
