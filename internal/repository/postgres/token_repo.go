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

// TokenRepo implements repository.RefreshTokenStore using PostgreSQL.
type TokenRepo struct {
	db  *DB
	ttl time.Duration
}

// NewTokenRepo constructs a refresh-token store with the given token lifetime.
func NewTokenRepo(db *DB, ttl time.Duration) *TokenRepo {
	return &TokenRepo{db: db, ttl: ttl}
}

const tokenColumns = `id, account_id, token, is_revoked, created_at, expires_at`

// Save inserts a refresh token expiring ttl from now.
func (r *TokenRepo) Save(ctx context.Context, accountID uuid.UUID, token string) (*model.RefreshToken, error) {
	const q = `
INSERT INTO refresh_tokens (id, account_id, token, expires_at)
VALUES ($1, $2, $3, now() + $4::interval)
RETURNING ` + tokenColumns

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return scanToken(r.db.Pool.QueryRow(ctx, q, id, accountID, token, r.ttl))
}

// FindValid selects the token row only while it is unrevoked and unexpired.
// Revoked, expired and absent all collapse into errs.ErrNotFound.
func (r *TokenRepo) FindValid(ctx context.Context, accountID uuid.UUID, token string) (*model.RefreshToken, error) {
	const q = `
SELECT ` + tokenColumns + `
FROM refresh_tokens
WHERE account_id=$1 AND token=$2 AND NOT is_revoked AND expires_at > now()`

	t, err := scanToken(r.db.Pool.QueryRow(ctx, q, accountID, token))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.ErrNotFound
	}
	return t, nil
}

// SweepExpired deletes rows past their expiry.
func (r *TokenRepo) SweepExpired(ctx context.Context) error {
	const q = `DELETE FROM refresh_tokens WHERE expires_at < now()`
	_, err := r.db.Pool.Exec(ctx, q)
	return err
}

// RevokeAll flips every unrevoked token of the account and reports the count.
// Revocation is one-way; revoked rows are never matched again.
func (r *TokenRepo) RevokeAll(ctx context.Context, accountID uuid.UUID) (int64, error) {
	const q = `UPDATE refresh_tokens SET is_revoked = TRUE WHERE account_id=$1 AND NOT is_revoked`
	tag, err := r.db.Pool.Exec(ctx, q, accountID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanToken(row pgx.Row) (*model.RefreshToken, error) {
	var t model.RefreshToken
	err := row.Scan(&t.ID, &t.AccountID, &t.Token, &t.IsRevoked, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
