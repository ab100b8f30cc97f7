// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Store-level sentinels. Repositories translate backend errors into these;
// the service layer turns them into domain errors below.
var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrTooManyAttempts indicates an atomic attempt increment hit the cap.
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Error is a domain failure with a stable wire code and a human message.
// Comparisons go through errors.Is against the sentinel values below.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Code + ": " + e.Msg }

// Domain errors surfaced verbatim to callers. The transport layer maps
// codes to HTTP statuses; nothing here is retried automatically.
var (
	ErrEmailAlreadyRegistered = &Error{Code: "ACC_EMAIL_IS_BUSY", Msg: "email is already registered"}
	ErrTooManyRegistrations   = &Error{Code: "AUTH_MANY_REGISTRATION_ATTEMPTS", Msg: "too many registration attempts"}
	ErrSignupNotFound         = &Error{Code: "AUTH_SIGNUP_NOT_FOUND", Msg: "signup not found"}
	ErrEmailBlocked           = &Error{Code: "AUTH_EMAIL_BLOCKED", Msg: "email is blocked after too many registration/confirmation attempts"}
	ErrWrongCode              = &Error{Code: "AUTH_WRONG_CODE", Msg: "wrong confirmation code"}
	ErrTooManyConfirmations   = &Error{Code: "AUTH_MANY_CONFIRMATION_ATTEMPTS", Msg: "too many confirmation attempts"}
	ErrAccountNotFound        = &Error{Code: "ACC_ACCOUNT_NOT_FOUND", Msg: "account not found"}
	ErrWrongPassword          = &Error{Code: "AUTH_WRONG_PASSWORD", Msg: "wrong password"}
	ErrInvalidTokenType       = &Error{Code: "AUTH_INVALID_TOKEN_TYPE", Msg: "invalid token type"}
	ErrRefreshTokenNotFound   = &Error{Code: "AUTH_REFRESH_TOKEN_NOT_FOUND", Msg: "refresh token not found"}
	ErrRevokeTokenNotFound    = &Error{Code: "AUTH_REVOKE_TOKEN_NOT_FOUND", Msg: "no active tokens to revoke"}
	ErrTokenExpired           = &Error{Code: "AUTH_TOKEN_EXPIRED", Msg: "token has expired"}
	ErrTokenInvalid           = &Error{Code: "AUTH_TOKEN_INVALID", Msg: "token is malformed or has a bad signature"}
)
