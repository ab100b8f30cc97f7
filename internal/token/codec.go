// Package token signs and verifies session JWTs with an RSA key pair.
package token

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/annboard/auth-service/internal/errs"
)

// Token type discriminators carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// DefaultTTL is used when Encode is called with a zero ttl.
const DefaultTTL = 24 * time.Hour

// SessionClaims is the payload embedded in both access and refresh tokens.
type SessionClaims struct {
	AccountID string           `json:"acc_id"`
	Role      string           `json:"role"`
	IsBanned  bool             `json:"is_banned"`
	BanReason string           `json:"ban_reason,omitempty"`
	BanExpiry *jwt.NumericDate `json:"ban_expiry,omitempty"`
	TokenType string           `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs with the private key and verifies with the public key, so
// verify-only deployments can run without signing material.
type Codec struct {
	priv   *rsa.PrivateKey
	pub    *rsa.PublicKey
	issuer string
}

// New constructs a codec from parsed RSA keys.
func New(priv *rsa.PrivateKey, pub *rsa.PublicKey, issuer string) *Codec {
	return &Codec{priv: priv, pub: pub, issuer: issuer}
}

// NewFromPEM constructs a codec from PEM-encoded RSA keys.
func NewFromPEM(privPEM, pubPEM []byte, issuer string) (*Codec, error) {
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, err
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, err
	}
	return &Codec{priv: priv, pub: pub, issuer: issuer}, nil
}

// Encode signs claims with RS256, stamping iat, exp (now+ttl) and iss.
// A zero ttl falls back to DefaultTTL; negative ttls are allowed and produce
// an already-expired token.
func (c *Codec) Encode(claims SessionClaims, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.Issuer = c.issuer
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.priv)
}

// Decode verifies signature and expiry and returns the claims.
// Expired tokens fail with errs.ErrTokenExpired; anything else malformed or
// signed with the wrong key or method fails with errs.ErrTokenInvalid.
func (c *Codec) Decode(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errs.ErrTokenInvalid
		}
		return c.pub, nil
	}, jwt.WithIssuer(c.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.ErrTokenExpired
		}
		return nil, errs.ErrTokenInvalid
	}
	return claims, nil
}
