package token_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-otp-auth/internal/application/token"
	"github.com/go-otp-auth/internal/domain"
	jwtinfra "github.com/go-otp-auth/internal/infrastructure/jwt"
	"github.com/go-otp-auth/internal/pkg/secret"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) ExistsByID(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

var cfg = token.Config{AccessTTL: 15 * time.Minute, RefreshTTL: 7 * 24 * time.Hour}

type harness struct {
	engine *token.Engine
	signer *jwtinfra.Signer
	users  *mockUsers
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{users: new(mockUsers), now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	keys := secret.NewStaticProvider([]byte("0123456789abcdef0123456789abcdef"))
	h.signer = jwtinfra.NewSigner(keys, "otp-auth", jwtinfra.WithClock(func() time.Time { return h.now }))
	h.engine = token.NewEngine(h.signer, h.users, cfg)
	return h
}

func TestMintPair_Scopes(t *testing.T) {
	h := newHarness(t)
	pair, err := h.engine.MintPair(context.Background(), "user-1")
	require.NoError(t, err)

	access, err := h.signer.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.ScopeProfile}, access.Scope)
	assert.Equal(t, "user-1", access.Subject)
	assert.Equal(t, cfg.AccessTTL, access.ExpiresAt.Sub(access.IssuedAt))

	refresh, err := h.signer.Parse(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.ScopeRefreshToken}, refresh.Scope)
	assert.Equal(t, cfg.RefreshTTL, refresh.ExpiresAt.Sub(refresh.IssuedAt))
}

func TestRefresh_IssuesNewPair(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.users.On("ExistsByID", mock.Anything, "user-1").Return(true, nil)

	pair, err := h.engine.MintPair(ctx, "user-1")
	require.NoError(t, err)

	next, err := h.engine.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, next.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	c, err := h.engine.VerifyAccess(ctx, next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Subject)
}

func TestRefresh_OldRefreshTokenStillWorks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.users.On("ExistsByID", mock.Anything, "user-1").Return(true, nil)

	pair, err := h.engine.MintPair(ctx, "user-1")
	require.NoError(t, err)
	_, err = h.engine.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = h.engine.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pair, err := h.engine.MintPair(ctx, "user-1")
	require.NoError(t, err)

	_, err = h.engine.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidScope)
	h.users.AssertNotCalled(t, "ExistsByID", mock.Anything, mock.Anything)
}

func TestRefresh_UnknownUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.users.On("ExistsByID", mock.Anything, "user-1").Return(false, nil)
	pair, err := h.engine.MintPair(ctx, "user-1")
	require.NoError(t, err)

	_, err = h.engine.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestRefresh_DirectoryError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.users.On("ExistsByID", mock.Anything, "user-1").Return(false, errors.New("unavailable"))
	pair, err := h.engine.MintPair(ctx, "user-1")
	require.NoError(t, err)

	_, err = h.engine.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnknownUser)
}

func TestRefresh_Expired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pair, err := h.engine.MintPair(ctx, "user-1")
	require.NoError(t, err)

	h.now = h.now.Add(cfg.RefreshTTL + time.Second)
	_, err = h.engine.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefresh_Garbage(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyAccess_RejectsRefreshToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	pair, err := h.engine.MintPair(ctx, "user-1")
	require.NoError(t, err)

	_, err = h.engine.VerifyAccess(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidScope)

	c, err := h.engine.Verify(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, c.HasScope(domain.ScopeRefreshToken))
}

func TestVerifyAccess_AccessExpiresBeforeRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.users.On("ExistsByID", mock.Anything, "user-1").Return(true, nil)
	pair, err := h.engine.MintPair(ctx, "user-1")
	require.NoError(t, err)

	h.now = h.now.Add(cfg.AccessTTL + time.Second)
	_, err = h.engine.VerifyAccess(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = h.engine.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}
