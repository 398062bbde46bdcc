package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/bidii/sacco-admin/internal/model"
)

// ListAdvances fetches the advances for one group together with the
// resolved group name.
func (c *Client) ListAdvances(ctx context.Context, groupID int64) (model.AdvancePage, error) {
	q := url.Values{"group_id": {strconv.FormatInt(groupID, 10)}}
	var page model.AdvancePage
	if err := c.Get(ctx, "/advances", q, &page); err != nil {
		return model.AdvancePage{}, err
	}
	return page, nil
}

// CreateAdvance adds a new advance and returns the record the backend
// created, with rates and schedule filled in.
func (c *Client) CreateAdvance(ctx context.Context, adv model.NewAdvance) (model.Advance, error) {
	var created model.Advance
	if err := c.Post(ctx, "/advances", adv, &created); err != nil {
		return model.Advance{}, err
	}
	return created, nil
}

// UpdatePaidAmount records a repayment against an advance. The backend
// recomputes status and total due; callers refetch rather than trust a
// locally patched record.
func (c *Client) UpdatePaidAmount(ctx context.Context, advanceID int64, paidAmount float64) error {
	path := fmt.Sprintf("/advances/%d", advanceID)
	body := map[string]float64{"paid_amount": paidAmount}
	return c.Patch(ctx, path, body, nil)
}
