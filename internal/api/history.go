package api

import (
	"context"
	"fmt"

	"github.com/bidii/sacco-admin/internal/model"
)

// ListHistories fetches the archive of generated monthly performance forms.
func (c *Client) ListHistories(ctx context.Context) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	if err := c.Get(ctx, "/histories", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAdvanceSummaries fetches the archive of generated advance forms.
func (c *Client) ListAdvanceSummaries(ctx context.Context) ([]model.HistoryEntry, error) {
	var entries []model.HistoryEntry
	if err := c.Get(ctx, "/query_advance_summary", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListAdvanceHistory fetches the archived advance rows for one summary.
func (c *Client) ListAdvanceHistory(ctx context.Context) ([]model.Advance, error) {
	var advances []model.Advance
	if err := c.Get(ctx, "/query_advance_history", nil, &advances); err != nil {
		return nil, err
	}
	return advances, nil
}

// ListFormRecords fetches the archived member rows of one generated form.
func (c *Client) ListFormRecords(ctx context.Context, historyID int64) ([]model.FormRecord, error) {
	var records []model.FormRecord
	if err := c.Get(ctx, fmt.Sprintf("/form_records/%d", historyID), nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}
