package domain

import (
	"slices"
	"strings"
	"time"
)

// Token scopes. An access token carries ScopeProfile, a refresh token ScopeRefreshToken.
const (
	ScopeProfile      = "profile"
	ScopeRefreshToken = "refresh_token"
)

// TokenPair is what a successful code exchange or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenClaims is the decoded payload of a signed token.
type TokenClaims struct {
	ID        string
	Issuer    string
	Subject   string
	Scope     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// HasScope reports whether scope is one of the space-delimited scopes in the token.
func (c *TokenClaims) HasScope(scope string) bool {
	return slices.Contains(c.Scope, scope)
}

// JoinScopes renders scopes in the space-delimited form stored in the scope claim.
func JoinScopes(scopes []string) string { return strings.Join(scopes, " ") }

// SplitScopes parses a space-delimited scope claim.
func SplitScopes(s string) []string { return strings.Fields(s) }
