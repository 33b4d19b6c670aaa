package jwtinfra

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/secret"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testKey = []byte("0123456789abcdef0123456789abcdef")
	t0      = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newSigner(issuer string, now *time.Time) *Signer {
	return NewSigner(secret.NewStaticProvider(testKey), issuer, WithClock(func() time.Time { return *now }))
}

func TestSignParse_RoundTrip(t *testing.T) {
	now := t0
	s := newSigner("otp-auth", &now)

	tok, err := s.Sign("user-1", []string{domain.ScopeProfile}, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(tok, "."))

	c, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Subject)
	assert.Equal(t, "otp-auth", c.Issuer)
	assert.Equal(t, []string{"profile"}, c.Scope)
	assert.True(t, c.IssuedAt.Equal(t0))
	assert.True(t, c.ExpiresAt.Equal(t0.Add(15*time.Minute)))
	assert.NotEmpty(t, c.ID)
}

func TestSign_SameSecondTokensDiffer(t *testing.T) {
	now := t0
	s := newSigner("otp-auth", &now)

	a, err := s.Sign("user-1", []string{domain.ScopeProfile}, time.Minute)
	require.NoError(t, err)
	b, err := s.Sign("user-1", []string{domain.ScopeProfile}, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParse_Expired(t *testing.T) {
	now := t0
	s := newSigner("otp-auth", &now)
	tok, err := s.Sign("user-1", []string{domain.ScopeProfile}, time.Minute)
	require.NoError(t, err)

	now = t0.Add(2 * time.Minute)
	_, err = s.Parse(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParse_WrongIssuer(t *testing.T) {
	now := t0
	tok, err := newSigner("someone-else", &now).Sign("user-1", nil, time.Minute)
	require.NoError(t, err)

	_, err = newSigner("otp-auth", &now).Parse(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParse_WrongKey(t *testing.T) {
	now := t0
	tok, err := newSigner("otp-auth", &now).Sign("user-1", nil, time.Minute)
	require.NoError(t, err)

	other := NewSigner(secret.NewStaticProvider([]byte("another-key-another-key-another!!")), "otp-auth",
		WithClock(func() time.Time { return now }))
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParse_TamperedPayload(t *testing.T) {
	now := t0
	s := newSigner("otp-auth", &now)
	tok, err := s.Sign("user-1", []string{domain.ScopeProfile}, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"iss":"otp-auth","sub":"admin","scope":"profile"}`))
	_, err = s.Parse(strings.Join(parts, "."))
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	now := t0
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "otp-auth",
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testKey)
	require.NoError(t, err)

	_, err = newSigner("otp-auth", &now).Parse(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newSigner("otp-auth", &now).Parse(none)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	now := t0
	for _, in := range []string{"", "abc", "a.b.c"} {
		_, err := newSigner("otp-auth", &now).Parse(in)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, in)
	}
}

type brokenKeys struct{}

func (brokenKeys) Secret() ([]byte, error) {
	return nil, errors.Join(errors.New("entropy exhausted"), domain.ErrSecretUnavailable)
}

func TestSign_SecretUnavailable(t *testing.T) {
	s := NewSigner(brokenKeys{}, "otp-auth")
	_, err := s.Sign("user-1", nil, time.Minute)
	assert.ErrorIs(t, err, domain.ErrSecretUnavailable)

	_, err = s.Parse("a.b.c")
	assert.ErrorIs(t, err, domain.ErrSecretUnavailable)
}
