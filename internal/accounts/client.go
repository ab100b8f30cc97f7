// Package accounts is the client port to the account service.
package accounts

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/annboard/auth-service/internal/errs"
	"github.com/annboard/auth-service/internal/model"
)

// Directory is the narrow account-service contract the auth core depends on.
// A fake implementation stands in for the real HTTP client in tests.
type Directory interface {
	// EmailBusy reports whether an account already owns the email.
	EmailBusy(ctx context.Context, email string) (bool, error)
	// ByEmail loads an account; errs.ErrAccountNotFound if absent.
	ByEmail(ctx context.Context, email string) (*model.Account, error)
	// Materialize creates a confirmed account from signup data and returns its ID.
	Materialize(ctx context.Context, email string, pwdHash, salt []byte) (uuid.UUID, error)
}

// Client talks to the account service over internal HTTP with the shared
// response envelope.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient constructs an account-service client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	OK      bool            `json:"ok"`
	Payload json.RawMessage `json:"payload"`
	Err     *struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	} `json:"err"`
}

type accountPayload struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	PwdHash   string     `json:"pwd_hash"`
	Salt      string     `json:"salt"`
	Role      string     `json:"role"`
	IsBanned  bool       `json:"is_banned"`
	BanReason string     `json:"reason_blocked"`
	BanExpiry *time.Time `json:"blocked_to"`
}

// EmailBusy asks the account service whether the email is taken.
func (c *Client) EmailBusy(ctx context.Context, email string) (bool, error) {
	var payload struct {
		IsBusy bool `json:"is_busy"`
	}
	path := "/api/account/" + url.PathEscape(email) + "/is_busy"
	if err := c.call(ctx, http.MethodPost, path, nil, &payload); err != nil {
		return false, err
	}
	return payload.IsBusy, nil
}

// ByEmail loads the account owning the email.
func (c *Client) ByEmail(ctx context.Context, email string) (*model.Account, error) {
	var payload accountPayload
	path := "/api/account/" + url.PathEscape(email)
	if err := c.call(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	pwdHash, err := hex.DecodeString(payload.PwdHash)
	if err != nil {
		return nil, fmt.Errorf("account %s: bad pwd_hash encoding: %w", payload.ID, err)
	}
	salt, err := hex.DecodeString(payload.Salt)
	if err != nil {
		return nil, fmt.Errorf("account %s: bad salt encoding: %w", payload.ID, err)
	}
	return &model.Account{
		ID:        payload.ID,
		Email:     payload.Email,
		PwdHash:   pwdHash,
		Salt:      salt,
		Role:      payload.Role,
		IsBanned:  payload.IsBanned,
		BanReason: payload.BanReason,
		BanExpiry: payload.BanExpiry,
	}, nil
}

// Materialize hands confirmed signup credentials over to the account service.
// Failures propagate verbatim; the caller must not delete the signup first.
func (c *Client) Materialize(ctx context.Context, email string, pwdHash, salt []byte) (uuid.UUID, error) {
	body := map[string]string{
		"email":    email,
		"pwd_hash": hex.EncodeToString(pwdHash),
		"salt":     hex.EncodeToString(salt),
	}
	var payload struct {
		ID uuid.UUID `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/account/copy/signup", body, &payload); err != nil {
		return uuid.Nil, err
	}
	return payload.ID, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("account service %s %s: bad response: %w", method, path, err)
	}
	if !env.OK {
		if env.Err == nil {
			return fmt.Errorf("account service %s %s: status %d", method, path, resp.StatusCode)
		}
		if env.Err.Code == errs.ErrAccountNotFound.Code {
			return errs.ErrAccountNotFound
		}
		return &errs.Error{Code: env.Err.Code, Msg: env.Err.Msg}
	}
	if out != nil {
		if err := json.Unmarshal(env.Payload, out); err != nil {
			return fmt.Errorf("account service %s %s: bad payload: %w", method, path, err)
		}
	}
	return nil
}
