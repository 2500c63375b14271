package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// Sender delivers a notification message to a recipient. The workflow engine
// only produces message text; delivery lives entirely behind this seam.
type Sender interface {
	Send(ctx context.Context, recipient *models.User, message string) error
}

// LogSender writes notifications to the structured log. It is the default
// sender when no messaging backend is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a new log-backed sender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification
func (s *LogSender) Send(ctx context.Context, recipient *models.User, message string) error {
	s.logger.Info("Notification",
		zap.Int64("recipient_id", recipient.ID),
		zap.String("recipient_email", recipient.Email),
		zap.String("message", message))
	return nil
}
