package lark

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/qaiserfcc/cloud-pos-api/internal/application/port"
	"github.com/qaiserfcc/cloud-pos-api/internal/domain/entity"
)

// Config holds Lark client configuration
type Config struct {
	AppID     string
	AppSecret string
	ChatID    string // group chat receiving approval notifications
}

// Notifier pushes approval notifications to a Lark group chat. It
// implements port.ApprovalNotifier.
type Notifier struct {
	client *lark.Client
	chatID string
	logger *zap.Logger
}

// NewNotifier creates a new Lark notifier
func NewNotifier(cfg Config, logger *zap.Logger) *Notifier {
	client := lark.NewClient(cfg.AppID, cfg.AppSecret,
		lark.WithLogLevel(larkcore.LogLevelInfo),
		lark.WithEnableTokenCache(true),
	)

	return &Notifier{
		client: client,
		chatID: cfg.ChatID,
		logger: logger,
	}
}

func (n *Notifier) NotifyPending(ctx context.Context, req *entity.ApprovalRequest) error {
	text := fmt.Sprintf("Approval needed: %s %s (level %d/%d, roles: %s)",
		req.ObjectType, req.ObjectID,
		req.CurrentLevel, req.TotalLevels,
		strings.Join(req.CurrentLevelRoles(), ", "))
	return n.sendText(ctx, text)
}

func (n *Notifier) NotifyDecided(ctx context.Context, req *entity.ApprovalRequest) error {
	text := fmt.Sprintf("Approval %s: %s %s (requested by %s)",
		req.Status, req.ObjectType, req.ObjectID, req.RequesterID)
	return n.sendText(ctx, text)
}

func (n *Notifier) sendText(ctx context.Context, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType("chat_id").
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(n.chatID).
			MsgType("text").
			Content(string(content)).
			Build()).
		Build()

	resp, err := n.client.Im.Message.Create(ctx, req)
	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("chat_id", n.chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send notification: %w", err)
	}

	if !resp.Success() {
		n.logger.Error("Lark API returned failure",
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	return nil
}

// Verify interface compliance
var _ port.ApprovalNotifier = (*Notifier)(nil)
