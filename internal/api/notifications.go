package api

import (
	"context"
	"fmt"

	"github.com/bidii/sacco-admin/internal/model"
)

// ListNotifications fetches every notification for the signed-in user,
// read and unread.
func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	var ns []model.Notification
	if err := c.Get(ctx, "/notifications", nil, &ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// CreateNotification persists a client-synthesized notification.
func (c *Client) CreateNotification(ctx context.Context, n model.NewNotification) (model.Notification, error) {
	var created model.Notification
	if err := c.Post(ctx, "/notifications", n, &created); err != nil {
		return model.Notification{}, err
	}
	return created, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.Put(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}

// MarkAllNotificationsRead marks every unread notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.Put(ctx, "/notifications/read", nil, nil)
}

// DeleteNotification removes a notification permanently.
func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	return c.Delete(ctx, fmt.Sprintf("/notifications/%d", id))
}
