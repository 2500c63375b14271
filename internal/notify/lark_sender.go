package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/crestfield/lecturer-claims/internal/models"
)

// LarkSender delivers notifications as Lark text messages addressed by the
// recipient's email.
type LarkSender struct {
	client *lark.Client
	logger *zap.Logger
}

// NewLarkSender creates a new Lark-backed sender
func NewLarkSender(appID, appSecret string, logger *zap.Logger) *LarkSender {
	client := lark.NewClient(appID, appSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &LarkSender{
		client: client,
		logger: logger,
	}
}

// Send delivers the message to the recipient's Lark account
func (s *LarkSender) Send(ctx context.Context, recipient *models.User, message string) error {
	content, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("failed to encode message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("email").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(recipient.Email).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := s.client.Im.Message.Create(ctx, req)
	if err != nil {
		s.logger.Error("Failed to send Lark message",
			zap.String("recipient_email", recipient.Email),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		s.logger.Error("Lark API returned failure",
			zap.String("recipient_email", recipient.Email),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	s.logger.Info("Lark message sent",
		zap.String("recipient_email", recipient.Email))

	return nil
}
