package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// NotificationStore records notifications and their delivery outcome.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errorMsg string) error
}

// UserDirectory resolves notification recipients.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListByRole(ctx context.Context, role string) ([]*models.User, error)
}

// Dispatcher records and delivers the notification strings the workflow
// engine produces. Delivery failures are recorded but never bubble back into
// the workflow outcome: the transition already happened.
type Dispatcher struct {
	store  NotificationStore
	users  UserDirectory
	sender Sender
	logger *zap.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(store NotificationStore, users UserDirectory, sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:  store,
		users:  users,
		sender: sender,
		logger: logger,
	}
}

// NotifyUser records and delivers a message to a single user.
func (d *Dispatcher) NotifyUser(ctx context.Context, claimID, userID int64, message string) error {
	recipient, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if recipient == nil {
		return fmt.Errorf("recipient %d not found", userID)
	}

	return d.deliver(ctx, claimID, recipient, message)
}

// NotifyRole records and delivers a message to every user holding a role.
// Used for stage handoffs, where the next reviewer is a role rather than a
// person.
func (d *Dispatcher) NotifyRole(ctx context.Context, claimID int64, role, message string) error {
	recipients, err := d.users.ListByRole(ctx, role)
	if err != nil {
		return fmt.Errorf("resolve recipients for role %s: %w", role, err)
	}

	for _, recipient := range recipients {
		if err := d.deliver(ctx, claimID, recipient, message); err != nil {
			d.logger.Error("Notification delivery failed",
				zap.Int64("claim_id", claimID),
				zap.Int64("recipient_id", recipient.ID),
				zap.Error(err))
		}
	}

	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, claimID int64, recipient *models.User, message string) error {
	now := time.Now()
	record := &models.Notification{
		ClaimID:     claimID,
		RecipientID: recipient.ID,
		Message:     message,
		Status:      models.NotificationPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := d.store.Create(ctx, record); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	if err := d.sender.Send(ctx, recipient, message); err != nil {
		if markErr := d.store.MarkFailed(ctx, record.ID, err.Error()); markErr != nil {
			d.logger.Error("Failed to mark notification failed",
				zap.Int64("notification_id", record.ID),
				zap.Error(markErr))
		}
		return fmt.Errorf("send notification: %w", err)
	}

	if err := d.store.MarkSent(ctx, record.ID); err != nil {
		d.logger.Error("Failed to mark notification sent",
			zap.Int64("notification_id", record.ID),
			zap.Error(err))
	}

	return nil
}
