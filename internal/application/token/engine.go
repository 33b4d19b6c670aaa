// Package token mints and verifies the access/refresh pair handed out after a
// successful code exchange.
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/domain"
)

// Signer produces and checks signed tokens. *jwtinfra.Signer satisfies it.
type Signer interface {
	Sign(subject string, scopes []string, ttl time.Duration) (string, error)
	// Parse rejects bad signatures, foreign issuers and expired tokens with
	// an error wrapping domain.ErrInvalidToken.
	Parse(token string) (*domain.TokenClaims, error)
}

// UserChecker answers whether a token subject still exists.
type UserChecker interface {
	ExistsByID(ctx context.Context, userID string) (bool, error)
}

type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Engine struct {
	signer Signer
	users  UserChecker
	cfg    Config
}

func NewEngine(signer Signer, users UserChecker, cfg Config) *Engine {
	return &Engine{signer: signer, users: users, cfg: cfg}
}

// MintPair issues a profile-scoped access token and a refresh token for userID.
// Callers must have established userID through a verified code or refresh token.
func (e *Engine) MintPair(_ context.Context, userID string) (*domain.TokenPair, error) {
	access, err := e.signer.Sign(userID, []string{domain.ScopeProfile}, e.cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("mint access token: %w", err)
	}
	refresh, err := e.signer.Sign(userID, []string{domain.ScopeRefreshToken}, e.cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// not revoked and stays usable until its own expiry.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := e.signer.Parse(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.HasScope(domain.ScopeRefreshToken) {
		return nil, fmt.Errorf("refresh with scope %q: %w", domain.JoinScopes(claims.Scope), domain.ErrInvalidScope)
	}
	ok, err := e.users.ExistsByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", claims.Subject, domain.ErrUnknownUser)
	}
	return e.MintPair(ctx, claims.Subject)
}

// Verify checks signature, issuer and expiry without looking at scope.
func (e *Engine) Verify(_ context.Context, token string) (*domain.TokenClaims, error) {
	return e.signer.Parse(token)
}

// VerifyAccess is Verify plus a profile scope check, so a refresh token
// cannot be used as a bearer credential.
func (e *Engine) VerifyAccess(ctx context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := e.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if !claims.HasScope(domain.ScopeProfile) {
		return nil, fmt.Errorf("access with scope %q: %w", domain.JoinScopes(claims.Scope), domain.ErrInvalidScope)
	}
	return claims, nil
}
