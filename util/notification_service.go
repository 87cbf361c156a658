// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/tokengate/logging"
	"github.com/dev-mohitbeniwal/tokengate/telegram"
)

// Messenger is the chat transport the notification sink delivers through.
// Satisfied by *telegram.Client; stubbed in tests.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID, text string, keyboard [][]telegram.InlineKeyboardButton) error
	CreateChatInviteLink(ctx context.Context, chatID string) (string, error)
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
}

// NotificationService is the single place that knows the delivery policy:
// user messages go to the private chat first and fall back to the group
// when the private send fails (users who never started the bot cannot be
// messaged directly). Delivery failures are logged and never roll back a
// decision already made.
type NotificationService struct {
	messenger    Messenger
	adminChatID  string
	groupChatID  string
	vipChannelID string
}

func NewNotificationService(messenger Messenger, adminChatID, groupChatID, vipChannelID string) *NotificationService {
	return &NotificationService{
		messenger:    messenger,
		adminChatID:  adminChatID,
		groupChatID:  groupChatID,
		vipChannelID: vipChannelID,
	}
}

// NotifyUser sends a private message to the user's own chat.
func (n *NotificationService) NotifyUser(ctx context.Context, userChatID, text string) error {
	if err := n.messenger.SendMessage(ctx, userChatID, text); err != nil {
		logger.Warn("Failed to notify user",
			zap.String("chatID", userChatID), zap.Error(err))
		return err
	}
	return nil
}

// NotifyUserWithFallback tries the private chat first and falls back to
// the shared group on failure, so the user still sees the outcome.
func (n *NotificationService) NotifyUserWithFallback(ctx context.Context, userChatID, text string) error {
	if err := n.messenger.SendMessage(ctx, userChatID, text); err == nil {
		return nil
	}
	if n.groupChatID == "" {
		return fmt.Errorf("private send failed and no group chat configured")
	}
	if err := n.messenger.SendMessage(ctx, n.groupChatID, text); err != nil {
		logger.Error("Failed to notify user via group fallback",
			zap.String("chatID", userChatID), zap.Error(err))
		return err
	}
	logger.Info("Notified user via group fallback", zap.String("chatID", userChatID))
	return nil
}

// PromptUser sends an inline-keyboard prompt privately, falling back to a
// plain group message when the private send fails.
func (n *NotificationService) PromptUser(ctx context.Context, userChatID, text string, keyboard [][]telegram.InlineKeyboardButton) error {
	if err := n.messenger.SendMessageWithKeyboard(ctx, userChatID, text, keyboard); err == nil {
		return nil
	}
	if n.groupChatID == "" {
		return fmt.Errorf("private prompt failed and no group chat configured")
	}
	return n.messenger.SendMessage(ctx, n.groupChatID, text)
}

// NotifyAdmin delivers an administrative alert.
func (n *NotificationService) NotifyAdmin(ctx context.Context, text string) error {
	if n.adminChatID == "" {
		return nil
	}
	if err := n.messenger.SendMessage(ctx, n.adminChatID, text); err != nil {
		logger.Error("Failed to notify admin", zap.Error(err))
		return err
	}
	return nil
}

// NotifyGroup posts to the shared group chat.
func (n *NotificationService) NotifyGroup(ctx context.Context, text string) error {
	if n.groupChatID == "" {
		return nil
	}
	return n.messenger.SendMessage(ctx, n.groupChatID, text)
}

// AckCallback acknowledges an inline keyboard press so the client-side
// spinner clears.
func (n *NotificationService) AckCallback(ctx context.Context, callbackID string) error {
	return n.messenger.AnswerCallbackQuery(ctx, callbackID)
}

// VIPInviteLink mints a fresh invite link for the gated channel.
func (n *NotificationService) VIPInviteLink(ctx context.Context) (string, error) {
	link, err := n.messenger.CreateChatInviteLink(ctx, n.vipChannelID)
	if err != nil {
		logger.Error("Failed to create invite link", zap.Error(err))
		return "", err
	}
	return link, nil
}
