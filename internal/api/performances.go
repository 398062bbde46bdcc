package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bidii/sacco-admin/internal/model"
)

// ListMonthlyPerformances fetches the office-level monthly performance
// rows shown on the dashboard.
func (c *Client) ListMonthlyPerformances(ctx context.Context) ([]model.MonthlyPerformance, error) {
	var rows []model.MonthlyPerformance
	if err := c.Get(ctx, "/monthly_performances", nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateMonthlyPerformance saves an edited dashboard row and returns the
// record as the backend stored it.
func (c *Client) UpdateMonthlyPerformance(ctx context.Context, row model.MonthlyPerformance) (model.MonthlyPerformance, error) {
	path := fmt.Sprintf("/monthly_performances/%d", row.ID)
	var updated model.MonthlyPerformance
	if err := c.Put(ctx, path, row, &updated); err != nil {
		return model.MonthlyPerformance{}, err
	}
	return updated, nil
}

// CreateMonthlyPerformance posts a new dashboard row and returns the
// record as the backend stored it.
func (c *Client) CreateMonthlyPerformance(ctx context.Context, row model.MonthlyPerformance) (model.MonthlyPerformance, error) {
	var created model.MonthlyPerformance
	if err := c.Post(ctx, "/monthly_performances", row, &created); err != nil {
		return model.MonthlyPerformance{}, err
	}
	return created, nil
}

// ListGroupPerformances fetches one group's member performance rows plus
// the resolved group name.
func (c *Client) ListGroupPerformances(ctx context.Context, groupID int64) (model.GroupPerformancePage, error) {
	q := url.Values{"group_id": {strconv.FormatInt(groupID, 10)}}
	var page model.GroupPerformancePage
	if err := c.Get(ctx, "/group_performances", q, &page); err != nil {
		return model.GroupPerformancePage{}, err
	}
	return page, nil
}

// SaveGroupPerformance posts an edited or new member row. The backend
// upserts by row ID and recomputes carried-forward balances.
func (c *Client) SaveGroupPerformance(ctx context.Context, row model.GroupPerformance) error {
	return c.Post(ctx, "/group_performances", row, nil)
}
