// Package auth provides the authenticated identity the rest of the system
// scopes records by: signed bearer tokens for the HTTP API and an
// in-process session holder with change notifications.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"carteira/internal/core"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSecret     = errors.New("token secret is empty")
)

const defaultTTL = 24 * time.Hour

// User is the authenticated identity.
type User struct {
	ID        core.OwnerID `json:"id"`
	Email     string       `json:"email,omitempty"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens whose subject is the owner.
type TokenIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(secret, issuer string) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// Issue signs a token for owner valid for ttl (24h when ttl <= 0).
func (t *TokenIssuer) Issue(owner core.OwnerID, email string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(string(owner)) == "" {
		return "", fmt.Errorf("issue token: %w", ErrInvalidToken)
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	now := t.now()
	c := &claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(owner),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm, issuer and expiry. Every failure
// wraps ErrInvalidToken.
func (t *TokenIssuer) Parse(token string) (User, error) {
	if strings.TrimSpace(token) == "" {
		return User{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, opts...)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || strings.TrimSpace(c.Subject) == "" {
		return User{}, ErrInvalidToken
	}
	return User{ID: core.OwnerID(c.Subject), Email: c.Email, ExpiresAt: c.ExpiresAt.Time}, nil
}
