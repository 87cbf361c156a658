// telegram/client.go
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client covering the calls the gate
// needs: plain messages, inline keyboards, and invite link creation.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		token:   token,
		baseURL: defaultAPIBase,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewClientWithBaseURL is used in tests to point the client at a local
// server.
func NewClientWithBaseURL(token, baseURL string, timeout time.Duration) *Client {
	c := NewClient(token, timeout)
	c.baseURL = baseURL
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload interface{}, result interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("%s failed: %s", method, parsed.Description)
	}
	if result != nil && parsed.Result != nil {
		if err := json.Unmarshal(parsed.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// SendMessage delivers a plain text message to a chat. chatID may be a
// numeric ID or an @channel username.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	return c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

// SendMessageWithKeyboard delivers a message with an inline keyboard.
func (c *Client) SendMessageWithKeyboard(ctx context.Context, chatID, text string, keyboard [][]InlineKeyboardButton) error {
	return c.call(ctx, "sendMessage", map[string]interface{}{
		"chat_id":      chatID,
		"text":         text,
		"reply_markup": map[string]interface{}{"inline_keyboard": keyboard},
	}, nil)
}

// CreateChatInviteLink mints a fresh invite link for the channel.
func (c *Client) CreateChatInviteLink(ctx context.Context, chatID string) (string, error) {
	var result struct {
		InviteLink string `json:"invite_link"`
	}
	err := c.call(ctx, "createChatInviteLink", map[string]interface{}{
		"chat_id":              chatID,
		"creates_join_request": false,
	}, &result)
	if err != nil {
		return "", err
	}
	return result.InviteLink, nil
}

// AnswerCallbackQuery acknowledges an inline keyboard press.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]interface{}{
		"callback_query_id": callbackID,
	}, nil)
}
