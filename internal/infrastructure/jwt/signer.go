// Package jwtinfra signs and parses the HS256 tokens handed to clients.
package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/id"
	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the JWT payload fields. Scope is space-delimited.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// KeySource yields the HMAC key. *secret.Provider satisfies it.
type KeySource interface {
	Secret() ([]byte, error)
}

// Signer signs and verifies HS256 JWTs for a single issuer.
type Signer struct {
	keys   KeySource
	issuer string
	now    func() time.Time
}

// Option customises a Signer.
type Option func(*Signer)

// WithClock overrides the time used for iat, exp and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

func NewSigner(keys KeySource, issuer string, opts ...Option) *Signer {
	s := &Signer{keys: keys, issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign issues a token for subject carrying scopes, valid for ttl from now.
// Every token gets a fresh jti, so two tokens minted in the same second differ.
func (s *Signer) Sign(subject string, scopes []string, ttl time.Duration) (string, error) {
	key, err := s.keys.Secret()
	if err != nil {
		return "", err
	}
	now := s.now()
	claims := Claims{
		Scope: domain.JoinScopes(scopes),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.New(),
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm, issuer, iat and exp, and returns the claims.
// Every rejection wraps domain.ErrInvalidToken; scope is not checked here.
func (s *Signer) Parse(tokenStr string) (*domain.TokenClaims, error) {
	key, err := s.keys.Secret()
	if err != nil {
		return nil, err
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, jwt.ErrTokenInvalidClaims)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, errors.New("missing subject"))
	}
	return &domain.TokenClaims{
		ID:        claims.ID,
		Issuer:    claims.Issuer,
		Subject:   claims.Subject,
		Scope:     domain.SplitScopes(claims.Scope),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
