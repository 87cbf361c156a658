// telegram/client_test.go
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	c := NewClientWithBaseURL("TOKEN", server.URL, time.Second)
	require.NoError(t, c.SendMessage(context.Background(), "42", "hello"))

	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "42", gotPayload["chat_id"])
	assert.Equal(t, "hello", gotPayload["text"])
}

func TestSendMessageAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":false,"description":"chat not found"}`)
	}))
	defer server.Close()

	c := NewClientWithBaseURL("TOKEN", server.URL, time.Second)
	err := c.SendMessage(context.Background(), "42", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestSendMessageWithKeyboard(t *testing.T) {
	var gotPayload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	c := NewClientWithBaseURL("TOKEN", server.URL, time.Second)
	keyboard := [][]InlineKeyboardButton{{{Text: "Connect", CallbackData: "connect_wallet"}}}
	require.NoError(t, c.SendMessageWithKeyboard(context.Background(), "42", "pick", keyboard))

	markup, ok := gotPayload["reply_markup"].(map[string]interface{})
	require.True(t, ok)
	assert.NotNil(t, markup["inline_keyboard"])
}

func TestCreateChatInviteLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/createChatInviteLink", r.URL.Path)
		fmt.Fprint(w, `{"ok":true,"result":{"invite_link":"https://t.me/+abc123"}}`)
	}))
	defer server.Close()

	c := NewClientWithBaseURL("TOKEN", server.URL, time.Second)
	link, err := c.CreateChatInviteLink(context.Background(), "-100123")
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+abc123", link)
}
