// Package httpapi wraps the auth service with a thin 1:1 HTTP/JSON surface.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/annboard/auth-service/internal/errs"
	"github.com/annboard/auth-service/internal/model"
	"github.com/annboard/auth-service/internal/service"
)

const maxJSONBodyBytes = 1 << 20

// Handler serves the auth endpoints.
type Handler struct {
	svc service.AuthService
	log *zap.Logger
}

// NewHandler constructs the HTTP handler around the auth service.
func NewHandler(svc service.AuthService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmRequest struct {
	SignupID uuid.UUID `json:"signup_id"`
	Code     string    `json:"code"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type revokeRequest struct {
	AccountID uuid.UUID `json:"account_id"`
}

type signupResponse struct {
	ID          uuid.UUID  `json:"id"`
	Attempts    int        `json:"attempts"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	BlockedTill *time.Time `json:"blocked_till,omitempty"`
}

type accountIDResponse struct {
	ID uuid.UUID `json:"id"`
}

type tokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type revokeResponse struct {
	Revoked int64 `json:"revoked"`
}

// SignupEmail handles POST /api/auth/signup/email.
func (h *Handler) SignupEmail(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.svc.SignupEmail(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSuccess(w, signupResponse{
		ID:          view.ID,
		Attempts:    view.Attempts,
		CreatedAt:   view.CreatedAt,
		UpdatedAt:   view.UpdatedAt,
		BlockedTill: view.BlockedTill,
	})
}

// ConfirmEmail handles POST /api/auth/confirm/email.
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !h.decode(w, r, &req) {
		return
	}
	accID, err := h.svc.ConfirmEmail(r.Context(), req.SignupID, req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSuccess(w, accountIDResponse{ID: accID})
}

// SigninEmail handles POST /api/auth/signin/email.
func (h *Handler) SigninEmail(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !h.decode(w, r, &req) {
		return
	}
	tokens, err := h.svc.SigninEmail(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSuccess(w, toTokensResponse(tokens))
}

// RefreshToken handles POST /api/auth/refresh/token.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !h.decode(w, r, &req) {
		return
	}
	tokens, err := h.svc.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSuccess(w, toTokensResponse(tokens))
}

// RevokeToken handles POST /api/auth/revoke/token.
func (h *Handler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var req revokeRequest
	if !h.decode(w, r, &req) {
		return
	}
	count, err := h.svc.RevokeTokens(r.Context(), req.AccountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSuccess(w, revokeResponse{Revoked: count})
}

func toTokensResponse(t model.Tokens) tokensResponse {
	return tokensResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errEnvelope("BAD_REQUEST", "invalid json body"))
		return false
	}
	return true
}

func (h *Handler) writeSuccess(w http.ResponseWriter, payload any) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "payload": payload})
}

// writeError maps domain errors to HTTP statuses; anything unexpected is a
// 500 captured by sentry without leaking details to the caller.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var domain *errs.Error
	if !errors.As(err, &domain) {
		h.log.Error("internal error", zap.Error(err))
		sentry.CaptureException(err)
		writeJSON(w, http.StatusInternalServerError, errEnvelope("INTERNAL", "internal error"))
		return
	}
	writeJSON(w, statusFor(domain), errEnvelope(domain.Code, domain.Msg))
}

func statusFor(e *errs.Error) int {
	switch e {
	case errs.ErrSignupNotFound, errs.ErrAccountNotFound,
		errs.ErrRefreshTokenNotFound, errs.ErrRevokeTokenNotFound:
		return http.StatusNotFound
	case errs.ErrTokenExpired, errs.ErrTokenInvalid:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

func errEnvelope(code, msg string) map[string]any {
	return map[string]any{"ok": false, "err": map[string]string{"code": code, "msg": msg}}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
