package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-otp-auth/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRequireScope_NoClaimsInContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	RequireScope(domain.ScopeProfile)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRequireScope_RefreshTokenRefused(t *testing.T) {
	claims := &domain.TokenClaims{Subject: "u1", Scope: []string{domain.ScopeRefreshToken}}
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(WithClaims(context.Background(), claims))
	rr := httptest.NewRecorder()
	RequireScope(domain.ScopeProfile)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRequireScope_Allowed(t *testing.T) {
	claims := &domain.TokenClaims{Subject: "u1", Scope: []string{domain.ScopeProfile}}
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(WithClaims(context.Background(), claims))
	rr := httptest.NewRecorder()
	RequireScope(domain.ScopeProfile)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
