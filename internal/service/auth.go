// Package service contains the authentication and session-lifecycle core.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/annboard/auth-service/internal/accounts"
	pkgcrypto "github.com/annboard/auth-service/internal/crypto"
	"github.com/annboard/auth-service/internal/errs"
	"github.com/annboard/auth-service/internal/model"
	"github.com/annboard/auth-service/internal/notify"
	"github.com/annboard/auth-service/internal/repository"
	"github.com/annboard/auth-service/internal/token"
)

// AuthService defines the signup/confirm/signin/refresh/revoke protocol.
type AuthService interface {
	// SignupEmail starts an email registration and sends a confirmation code.
	SignupEmail(ctx context.Context, email, password string) (*model.SignupView, error)
	// ConfirmEmail checks the submitted code and materializes the account.
	ConfirmEmail(ctx context.Context, signupID uuid.UUID, code string) (uuid.UUID, error)
	// SigninEmail authenticates and issues an access/refresh token pair.
	SigninEmail(ctx context.Context, email, password string) (model.Tokens, error)
	// RefreshToken mints a new access token for a valid refresh token.
	// The refresh token itself is returned unchanged, never rotated.
	RefreshToken(ctx context.Context, refreshToken string) (model.Tokens, error)
	// RevokeTokens invalidates every active refresh token of the account.
	RevokeTokens(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// Options carries the tunable policy knobs of the auth core.
type Options struct {
	AccessTTL  time.Duration // access token lifetime, default 1h
	RefreshTTL time.Duration // refresh token lifetime, default 7d
	CodeLength int           // confirmation code digits, default 5
}

func (o *Options) fill() {
	if o.AccessTTL == 0 {
		o.AccessTTL = time.Hour
	}
	if o.RefreshTTL == 0 {
		o.RefreshTTL = 7 * 24 * time.Hour
	}
	if o.CodeLength == 0 {
		o.CodeLength = 5
	}
}

type AuthServiceImpl struct {
	signups  repository.SignupLedger
	tokens   repository.RefreshTokenStore
	codec    *token.Codec
	dir      accounts.Directory
	notifier notify.Sink
	log      *zap.Logger
	opts     Options
}

// NewAuthService constructs the auth core with its collaborators.
func NewAuthService(
	signups repository.SignupLedger,
	tokens repository.RefreshTokenStore,
	codec *token.Codec,
	dir accounts.Directory,
	notifier notify.Sink,
	log *zap.Logger,
	opts Options,
) *AuthServiceImpl {
	opts.fill()
	return &AuthServiceImpl{
		signups:  signups,
		tokens:   tokens,
		codec:    codec,
		dir:      dir,
		notifier: notifier,
		log:      log,
		opts:     opts,
	}
}

// SignupEmail registers a pending signup for the email and notifies the user
// with a confirmation code. Resubmission before confirmation updates the
// existing record; once the ledger reports the attempt cap, the email is
// locked out and the whole operation fails.
func (s *AuthServiceImpl) SignupEmail(ctx context.Context, email, password string) (*model.SignupView, error) {
	busy, err := s.dir.EmailBusy(ctx, email)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, errs.ErrEmailAlreadyRegistered
	}

	code, err := pkgcrypto.ConfirmCode(s.opts.CodeLength)
	if err != nil {
		return nil, err
	}
	hash, salt, err := pkgcrypto.HashPassword([]byte(password), nil)
	if err != nil {
		return nil, err
	}

	rec, err := s.signups.UpsertSignup(ctx, email, hash, salt, code)
	if err != nil {
		if errors.Is(err, errs.ErrTooManyAttempts) {
			if _, berr := s.signups.BlockEmail(ctx, email); berr != nil {
				s.log.Warn("block email after signup cap", zap.Error(berr))
			}
			return nil, errs.ErrTooManyRegistrations
		}
		return nil, err
	}

	// Best-effort: a lost notification does not void the signup.
	if err := s.notifier.Send(ctx, notify.ConfirmCodeMessage(email, code)); err != nil {
		s.log.Warn("send confirmation code", zap.Error(err))
	}

	return rec.View(), nil
}

// ConfirmEmail validates the code against the signup record. A wrong code
// bumps the attempt counter; hitting the cap locks the email for the
// configured duration. On a match the account service materializes the
// account, and only then is the signup record consumed.
func (s *AuthServiceImpl) ConfirmEmail(ctx context.Context, signupID uuid.UUID, code string) (uuid.UUID, error) {
	rec, err := s.signups.GetSignup(ctx, signupID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return uuid.Nil, errs.ErrSignupNotFound
		}
		return uuid.Nil, err
	}

	if rec.BlockedTill != nil && rec.BlockedTill.After(time.Now()) {
		return uuid.Nil, errs.ErrEmailBlocked
	}

	if code != rec.Code {
		if _, err := s.signups.RecordWrongCodeAttempt(ctx, rec.ID); err != nil {
			if errors.Is(err, errs.ErrTooManyAttempts) {
				if _, berr := s.signups.BlockEmail(ctx, rec.Email); berr != nil {
					s.log.Warn("block email after confirmation cap", zap.Error(berr))
				}
				return uuid.Nil, errs.ErrTooManyConfirmations
			}
			return uuid.Nil, err
		}
		return uuid.Nil, errs.ErrWrongCode
	}

	// Account creation is authoritative; its failure propagates verbatim
	// and leaves the signup record in place for a retry.
	accID, err := s.dir.Materialize(ctx, rec.Email, rec.PwdHash, rec.Salt)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.signups.DeleteSignup(ctx, rec.ID); err != nil {
		return uuid.Nil, err
	}
	return accID, nil
}

// SigninEmail verifies the password against the account's stored credentials
// and issues a token pair, persisting the refresh token.
func (s *AuthServiceImpl) SigninEmail(ctx context.Context, email, password string) (model.Tokens, error) {
	acc, err := s.dir.ByEmail(ctx, email)
	if err != nil {
		return model.Tokens{}, err
	}

	if !pkgcrypto.VerifyPassword([]byte(password), acc.Salt, acc.PwdHash) {
		return model.Tokens{}, errs.ErrWrongPassword
	}

	claims := sessionClaims(acc)
	claims.TokenType = token.TypeAccess
	access, err := s.codec.Encode(claims, s.opts.AccessTTL)
	if err != nil {
		return model.Tokens{}, err
	}

	claims.TokenType = token.TypeRefresh
	refresh, err := s.codec.Encode(claims, s.opts.RefreshTTL)
	if err != nil {
		return model.Tokens{}, err
	}

	if _, err := s.tokens.Save(ctx, acc.ID, refresh); err != nil {
		return model.Tokens{}, err
	}

	return model.Tokens{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// RefreshToken verifies the refresh token and issues a fresh access token.
// The incoming refresh token is returned as-is.
func (s *AuthServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (model.Tokens, error) {
	// Opportunistic maintenance; correctness never depends on it.
	if err := s.tokens.SweepExpired(ctx); err != nil {
		s.log.Warn("sweep expired refresh tokens", zap.Error(err))
	}

	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return model.Tokens{}, err
	}
	if claims.TokenType != token.TypeRefresh {
		return model.Tokens{}, errs.ErrInvalidTokenType
	}

	accID, err := uuid.FromString(claims.AccountID)
	if err != nil {
		return model.Tokens{}, errs.ErrTokenInvalid
	}

	if _, err := s.tokens.FindValid(ctx, accID, refreshToken); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Tokens{}, errs.ErrRefreshTokenNotFound
		}
		return model.Tokens{}, err
	}

	next := *claims
	next.TokenType = token.TypeAccess
	access, err := s.codec.Encode(next, s.opts.AccessTTL)
	if err != nil {
		return model.Tokens{}, err
	}

	return model.Tokens{AccessToken: access, RefreshToken: refreshToken, TokenType: "bearer"}, nil
}

// RevokeTokens invalidates all active refresh tokens of the account.
func (s *AuthServiceImpl) RevokeTokens(ctx context.Context, accountID uuid.UUID) (int64, error) {
	count, err := s.tokens.RevokeAll(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, errs.ErrRevokeTokenNotFound
	}
	return count, nil
}

func sessionClaims(acc *model.Account) token.SessionClaims {
	c := token.SessionClaims{
		AccountID: acc.ID.String(),
		Role:      acc.Role,
		IsBanned:  acc.IsBanned,
		BanReason: acc.BanReason,
	}
	if acc.BanExpiry != nil {
		c.BanExpiry = jwt.NewNumericDate(*acc.BanExpiry)
	}
	return c
}
