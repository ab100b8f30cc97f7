package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/annboard/auth-service/internal/model"
)

// RefreshTokenStore persists issued refresh tokens.
type RefreshTokenStore interface {
	// Save inserts a token for the account with the store's configured TTL.
	Save(ctx context.Context, accountID uuid.UUID, token string) (*model.RefreshToken, error)
	// FindValid returns the row only if it is unrevoked and unexpired;
	// errs.ErrNotFound otherwise. Expired, revoked and absent are deliberately
	// indistinguishable to the caller.
	FindValid(ctx context.Context, accountID uuid.UUID, token string) (*model.RefreshToken, error)
	// SweepExpired deletes rows past their expiry. Idempotent.
	SweepExpired(ctx context.Context) error
	// RevokeAll flips all unrevoked rows of the account to revoked and
	// reports how many were affected.
	RevokeAll(ctx context.Context, accountID uuid.UUID) (int64, error)
}
