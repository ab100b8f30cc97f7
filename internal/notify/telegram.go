// Package notify delivers out-of-band user notifications.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Sink sends a rendered message. Delivery is best-effort from the auth
// core's perspective; a failed send never rolls back a signup.
type Sink interface {
	Send(ctx context.Context, message string) error
}

// ConfirmCodeMessage renders the registration-code notification.
func ConfirmCodeMessage(email, code string) string {
	return "Thanks for registering!\n\nEmail: " + email + "\nConfirmation code: " + code
}

const telegramAPI = "https://api.telegram.org"

// Telegram posts messages to a chat via the Telegram Bot API.
type Telegram struct {
	token   string
	chatID  string
	baseURL string
	http    *http.Client
}

// NewTelegram constructs a Telegram sink for the given bot token and chat.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		token:   token,
		chatID:  chatID,
		baseURL: telegramAPI,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the message to the configured chat.
func (t *Telegram) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       message,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	url := t.baseURL + "/bot" + t.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var res struct {
		OK          bool   `json:"ok"`
		ErrorCode   int    `json:"error_code"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("telegram: bad response: %w", err)
	}
	if !res.OK {
		return fmt.Errorf("telegram: %d: %s", res.ErrorCode, res.Description)
	}
	return nil
}

// Nop discards messages. Used when no notification channel is configured.
type Nop struct{}

// Send does nothing.
func (Nop) Send(context.Context, string) error { return nil }
