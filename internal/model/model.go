// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// EmailSignup is a pending email registration awaiting code confirmation.
// One row per email; resubmission updates the row in place.
type EmailSignup struct {
	ID          uuid.UUID  // stable across resubmissions
	Email       string     // unique key
	PwdHash     []byte     // Argon2id(password, Salt)
	Salt        []byte     // per-signup salt
	Code        string     // current confirmation code (digits)
	Attempts    int        // wrong-code tries so far, capped by the ledger
	CreatedAt   time.Time  // set once at first insertion
	UpdatedAt   time.Time  // refreshed on resubmission and failed attempts
	BlockedTill *time.Time // non-nil and future means the email is locked out
}

// View returns the public projection of a signup. The confirmation code and
// credential material never leave the service.
func (s *EmailSignup) View() *SignupView {
	return &SignupView{
		ID:          s.ID,
		Attempts:    s.Attempts,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		BlockedTill: s.BlockedTill,
	}
}

// SignupView is what callers of SignupEmail get back.
type SignupView struct {
	ID          uuid.UUID
	Attempts    int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	BlockedTill *time.Time
}

// RefreshToken is a persisted refresh-token row. Once revoked it stays revoked.
type RefreshToken struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Token     string
	IsRevoked bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Account is the account-service projection the auth core needs for signin.
type Account struct {
	ID        uuid.UUID
	Email     string
	PwdHash   []byte
	Salt      []byte
	Role      string
	IsBanned  bool
	BanReason string
	BanExpiry *time.Time
}

// Tokens collects an issued access/refresh pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string // always "bearer"
}
