package api

import (
	"context"
	"time"

	"github.com/bidii/sacco-admin/internal/model"
)

// NewMonthlyAdvanceCredit is the creation payload for a monthly advance
// credit record.
type NewMonthlyAdvanceCredit struct {
	GroupName          string    `json:"group_name"`
	Date               time.Time `json:"date"`
	TotalAdvanceAmount float64   `json:"total_advance_amount"`
	Deductions         float64   `json:"deductions"`
}

// ListMonthlyAdvanceCredits fetches the monthly advance credit summaries
// across all groups.
func (c *Client) ListMonthlyAdvanceCredits(ctx context.Context) ([]model.MonthlyAdvanceCredit, error) {
	var credits []model.MonthlyAdvanceCredit
	if err := c.Get(ctx, "/monthly_advance_credits", nil, &credits); err != nil {
		return nil, err
	}
	return credits, nil
}

// CreateMonthlyAdvanceCredit adds a credit record and returns the stored row.
func (c *Client) CreateMonthlyAdvanceCredit(ctx context.Context, credit NewMonthlyAdvanceCredit) (model.MonthlyAdvanceCredit, error) {
	var created model.MonthlyAdvanceCredit
	if err := c.Post(ctx, "/monthly_advance_credits", credit, &created); err != nil {
		return model.MonthlyAdvanceCredit{}, err
	}
	return created, nil
}
