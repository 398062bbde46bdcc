package model

import "time"

// Notification is an alert shown to the user, created server-side or as a
// follow-up write after a form generation.
type Notification struct {
	// ID is the backend-assigned identifier.
	ID int64 `json:"id"`

	// UserID is the account the notification belongs to.
	UserID int64 `json:"user_id"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}

// NewNotification is the creation payload for POST /notifications.
// CreatedAt is set by the client at build time (RFC3339 on the wire).
type NewNotification struct {
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
