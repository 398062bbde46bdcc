package api

import "context"

// GenerateFormResult is the backend's response to either form-generation
// endpoint: a status message, the acting user, and the snapshotted fields.
type GenerateFormResult struct {
	Message string                 `json:"message"`
	UserID  int64                  `json:"user_id"`
	Fields  map[string]interface{} `json:"fields"`
}

type generateFormRequest struct {
	GroupID int64 `json:"group_id"`
}

// GenerateForm snapshots a group's monthly performance form server-side.
func (c *Client) GenerateForm(ctx context.Context, groupID int64) (GenerateFormResult, error) {
	var res GenerateFormResult
	if err := c.Post(ctx, "/generate_form", generateFormRequest{GroupID: groupID}, &res); err != nil {
		return GenerateFormResult{}, err
	}
	return res, nil
}

// GenerateMonthlyForm snapshots a group's monthly advance form server-side.
func (c *Client) GenerateMonthlyForm(ctx context.Context, groupID int64) (GenerateFormResult, error) {
	var res GenerateFormResult
	if err := c.Post(ctx, "/generate_monthly_form", generateFormRequest{GroupID: groupID}, &res); err != nil {
		return GenerateFormResult{}, err
	}
	return res, nil
}
