package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// NotificationRepository records workflow notifications and their delivery
// outcome. The record is bookkeeping only; the engines make no delivery
// guarantee.
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new notification record in PENDING status
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (claim_id, recipient_id, message, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		n.ClaimID,
		n.RecipientID,
		n.Message,
		n.Status,
		n.CreatedAt,
		n.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.Int64("claim_id", n.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	n.ID = id
	return nil
}

// MarkSent marks a notification as delivered
func (r *NotificationRepository) MarkSent(ctx context.Context, id int64) error {
	query := `UPDATE notifications SET status = ?, sent_at = ?, updated_at = ? WHERE id = ?`

	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query, models.NotificationSent, now, now, id); err != nil {
		r.logger.Error("Failed to mark notification sent", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	return nil
}

// MarkFailed marks a notification as failed with the delivery error
func (r *NotificationRepository) MarkFailed(ctx context.Context, id int64, errorMsg string) error {
	query := `UPDATE notifications SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, models.NotificationFailed, errorMsg, time.Now(), id); err != nil {
		r.logger.Error("Failed to mark notification failed", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}

	return nil
}

// ListByClaim retrieves all notifications recorded for a claim
func (r *NotificationRepository) ListByClaim(ctx context.Context, claimID int64) ([]*models.Notification, error) {
	query := `
		SELECT id, claim_id, recipient_id, message, status, error_message, sent_at, created_at, updated_at
		FROM notifications
		WHERE claim_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		var sentAt sql.NullTime
		var errorMsg sql.NullString
		err := rows.Scan(
			&n.ID,
			&n.ClaimID,
			&n.RecipientID,
			&n.Message,
			&n.Status,
			&errorMsg,
			&sentAt,
			&n.CreatedAt,
			&n.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if sentAt.Valid {
			n.SentAt = &sentAt.Time
		}
		n.ErrorMessage = errorMsg.String
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}
