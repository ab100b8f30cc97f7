// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/annboard/auth-service/internal/model"
)

// SignupLedger stores in-flight email signups with attempt counting and
// time-based lockout. All mutations are atomic on the backing store; the
// attempt cap is enforced inside the statement, never read-modify-write.
type SignupLedger interface {
	// UpsertSignup inserts a signup for email, or if one exists replaces its
	// code and credentials, increments attempts and refreshes updated_at.
	// Returns errs.ErrTooManyAttempts when the cap is already reached or the
	// email is currently blocked.
	UpsertSignup(ctx context.Context, email string, pwdHash, salt []byte, code string) (*model.EmailSignup, error)
	// GetSignup loads a signup by ID; errs.ErrNotFound if absent.
	GetSignup(ctx context.Context, id uuid.UUID) (*model.EmailSignup, error)
	// DeleteSignup removes a signup after successful confirmation. Idempotent.
	DeleteSignup(ctx context.Context, id uuid.UUID) error
	// RecordWrongCodeAttempt increments attempts; errs.ErrTooManyAttempts when
	// the increment would exceed the cap, errs.ErrNotFound if absent.
	RecordWrongCodeAttempt(ctx context.Context, id uuid.UUID) (*model.EmailSignup, error)
	// BlockEmail sets blocked_till for the email's signup and returns it.
	BlockEmail(ctx context.Context, email string) (*model.EmailSignup, error)
}
