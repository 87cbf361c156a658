// util/notification_service_test.go
package util

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/tokengate/telegram"
)

type fakeMessenger struct {
	failChats map[string]bool
	sent      map[string][]string
	keyboards map[string]int
	acked     []string
	link      string
	linkErr   error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		failChats: make(map[string]bool),
		sent:      make(map[string][]string),
		keyboards: make(map[string]int),
	}
}

func (m *fakeMessenger) SendMessage(ctx context.Context, chatID, text string) error {
	if m.failChats[chatID] {
		return errors.New("chat unreachable")
	}
	m.sent[chatID] = append(m.sent[chatID], text)
	return nil
}

func (m *fakeMessenger) SendMessageWithKeyboard(ctx context.Context, chatID, text string, keyboard [][]telegram.InlineKeyboardButton) error {
	if m.failChats[chatID] {
		return errors.New("chat unreachable")
	}
	m.keyboards[chatID]++
	m.sent[chatID] = append(m.sent[chatID], text)
	return nil
}

func (m *fakeMessenger) CreateChatInviteLink(ctx context.Context, chatID string) (string, error) {
	return m.link, m.linkErr
}

func (m *fakeMessenger) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	m.acked = append(m.acked, callbackID)
	return nil
}

func TestNotifyUserWithFallbackPrefersPrivateChat(t *testing.T) {
	m := newFakeMessenger()
	n := NewNotificationService(m, "admin", "group", "channel")

	require.NoError(t, n.NotifyUserWithFallback(context.Background(), "42", "hello"))
	assert.Equal(t, []string{"hello"}, m.sent["42"])
	assert.Empty(t, m.sent["group"])
}

func TestNotifyUserWithFallbackUsesGroup(t *testing.T) {
	m := newFakeMessenger()
	m.failChats["42"] = true
	n := NewNotificationService(m, "admin", "group", "channel")

	require.NoError(t, n.NotifyUserWithFallback(context.Background(), "42", "hello"))
	assert.Equal(t, []string{"hello"}, m.sent["group"])
}

func TestNotifyUserWithFallbackNoGroupConfigured(t *testing.T) {
	m := newFakeMessenger()
	m.failChats["42"] = true
	n := NewNotificationService(m, "admin", "", "channel")

	assert.Error(t, n.NotifyUserWithFallback(context.Background(), "42", "hello"))
}

func TestPromptUserFallsBackToPlainGroupMessage(t *testing.T) {
	m := newFakeMessenger()
	m.failChats["42"] = true
	n := NewNotificationService(m, "admin", "group", "channel")

	keyboard := [][]telegram.InlineKeyboardButton{{{Text: "Go", CallbackData: "go"}}}
	require.NoError(t, n.PromptUser(context.Background(), "42", "pick one", keyboard))
	assert.Equal(t, []string{"pick one"}, m.sent["group"])
	assert.Zero(t, m.keyboards["group"])
}

func TestNotifyAdminSkipsWhenUnconfigured(t *testing.T) {
	m := newFakeMessenger()
	n := NewNotificationService(m, "", "group", "channel")

	require.NoError(t, n.NotifyAdmin(context.Background(), "alert"))
	assert.Empty(t, m.sent)
}

func TestAckCallbackForwardsID(t *testing.T) {
	m := newFakeMessenger()
	n := NewNotificationService(m, "admin", "group", "channel")

	require.NoError(t, n.AckCallback(context.Background(), "cb42"))
	assert.Equal(t, []string{"cb42"}, m.acked)
}

func TestVIPInviteLinkTargetsChannel(t *testing.T) {
	m := newFakeMessenger()
	m.link = "https://t.me/+abc"
	n := NewNotificationService(m, "admin", "group", "channel")

	link, err := n.VIPInviteLink(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+abc", link)
}
