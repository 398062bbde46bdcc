package api

import (
	"context"

	"github.com/bidii/sacco-admin/internal/model"
)

// MemberSummary fetches the office-wide totals for the dashboard header.
func (c *Client) MemberSummary(ctx context.Context) (model.MemberSummary, error) {
	var summary model.MemberSummary
	if err := c.Get(ctx, "/member_names", nil, &summary); err != nil {
		return model.MemberSummary{}, err
	}
	return summary, nil
}

// MemberDetails fetches the raw member name list used for form suggestions.
func (c *Client) MemberDetails(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.Get(ctx, "/member_details", nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}
