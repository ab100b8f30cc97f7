package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/annboard/auth-service/internal/errs"
	"github.com/annboard/auth-service/internal/model"
)

// SignupRepo implements repository.SignupLedger using PostgreSQL.
type SignupRepo struct {
	db          *DB
	maxAttempts int
	blockFor    time.Duration
}

// NewSignupRepo constructs a signup ledger with the wrong-code attempt cap
// and the lockout duration applied by BlockEmail.
func NewSignupRepo(db *DB, maxAttempts int, blockFor time.Duration) *SignupRepo {
	return &SignupRepo{db: db, maxAttempts: maxAttempts, blockFor: blockFor}
}

const signupColumns = `id, email, pwd_hash, salt, code, attempts, created_at, updated_at, blocked_till`

// UpsertSignup inserts a new signup row or bumps the existing one for the
// email. The attempt cap and the lockout window are enforced inside the
// statement so that concurrent resubmissions cannot race past the cap.
func (r *SignupRepo) UpsertSignup(ctx context.Context, email string, pwdHash, salt []byte, code string) (*model.EmailSignup, error) {
	const q = `
INSERT INTO email_signups (id, email, pwd_hash, salt, code)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (email) DO UPDATE
SET code = EXCLUDED.code,
    pwd_hash = EXCLUDED.pwd_hash,
    salt = EXCLUDED.salt,
    attempts = email_signups.attempts + 1,
    updated_at = now()
WHERE email_signups.attempts < $6
  AND (email_signups.blocked_till IS NULL OR email_signups.blocked_till <= now())
RETURNING ` + signupColumns

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	row := r.db.Pool.QueryRow(ctx, q, id, email, pwdHash, salt, code, r.maxAttempts)
	s, err := scanSignup(row)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err):
		// The DO UPDATE WHERE clause filtered the row out: cap reached or
		// the email is currently blocked.
		return nil, errs.ErrTooManyAttempts
	default:
		return nil, err
	}
}

// GetSignup selects a signup by ID.
func (r *SignupRepo) GetSignup(ctx context.Context, id uuid.UUID) (*model.EmailSignup, error) {
	const q = `
SELECT ` + signupColumns + `
FROM email_signups WHERE id=$1`
	s, err := scanSignup(r.db.Pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return s, nil
}

// DeleteSignup removes a signup row. Deleting an absent row is not an error.
func (r *SignupRepo) DeleteSignup(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM email_signups WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}

// RecordWrongCodeAttempt atomically increments the attempt counter while it
// is below the cap. Zero rows updated means either the cap was reached or the
// row is gone; a follow-up existence check tells the two apart.
func (r *SignupRepo) RecordWrongCodeAttempt(ctx context.Context, id uuid.UUID) (*model.EmailSignup, error) {
	const q = `
UPDATE email_signups
SET attempts = attempts + 1, updated_at = now()
WHERE id=$1 AND attempts < $2
RETURNING ` + signupColumns

	s, err := scanSignup(r.db.Pool.QueryRow(ctx, q, id, r.maxAttempts))
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, pgx.ErrNoRows) || isCheckViolation(err):
		const exists = `SELECT EXISTS (SELECT 1 FROM email_signups WHERE id=$1)`
		var found bool
		if serr := r.db.Pool.QueryRow(ctx, exists, id).Scan(&found); serr != nil {
			return nil, serr
		}
		if found {
			return nil, errs.ErrTooManyAttempts
		}
		return nil, errs.ErrNotFound
	default:
		return nil, err
	}
}

// BlockEmail sets blocked_till on the email's signup row.
func (r *SignupRepo) BlockEmail(ctx context.Context, email string) (*model.EmailSignup, error) {
	const q = `
UPDATE email_signups
SET blocked_till = now() + $2::interval, updated_at = now()
WHERE email=$1
RETURNING ` + signupColumns

	s, err := scanSignup(r.db.Pool.QueryRow(ctx, q, email, r.blockFor))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return s, nil
}

func scanSignup(row pgx.Row) (*model.EmailSignup, error) {
	var s model.EmailSignup
	err := row.Scan(&s.ID, &s.Email, &s.PwdHash, &s.Salt, &s.Code, &s.Attempts, &s.CreatedAt, &s.UpdatedAt, &s.BlockedTill)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
