package models

import "time"

// Notification is a recorded workflow notification awaiting delivery by a
// sender. The workflow engine only produces the message text; dispatch and
// bookkeeping live outside the core.
type Notification struct {
	ID           int64      `json:"id"`
	ClaimID      int64      `json:"claim_id"`
	RecipientID  int64      `json:"recipient_id"`
	Message      string     `json:"message"`
	Status       string     `json:"status"` // PENDING, SENT, FAILED
	ErrorMessage string     `json:"error_message,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Notification delivery status constants
const (
	NotificationPending = "PENDING"
	NotificationSent    = "SENT"
	NotificationFailed  = "FAILED"
)
