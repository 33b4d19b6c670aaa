package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/transport/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserSvc struct{ mock.Mock }

func (m *mockUserSvc) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func meRequest(subject string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	if subject == "" {
		return req
	}
	claims := &domain.TokenClaims{Subject: subject, Scope: []string{domain.ScopeProfile}}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func TestMe_ReturnsProfile(t *testing.T) {
	svc := new(mockUserSvc)
	svc.On("Get", mock.Anything, "user-1").Return(&domain.User{UserID: "user-1", Email: "a@x.com", Active: true}, nil)

	rr := httptest.NewRecorder()
	NewUserHandler(svc).Me(rr, meRequest("user-1"))
	require.Equal(t, http.StatusOK, rr.Code)

	var got domain.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestMe_NotFound(t *testing.T) {
	svc := new(mockUserSvc)
	svc.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	rr := httptest.NewRecorder()
	NewUserHandler(svc).Me(rr, meRequest("gone"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMe_NoClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	NewUserHandler(new(mockUserSvc)).Me(rr, meRequest(""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
