// Package auth composes code verification and token issuance into the
// request-code, exchange-code and refresh use cases.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/logger"
	"go.uber.org/zap"
)

type Service interface {
	// RequestVerification issues a code and hands it to the notifier.
	// issued is false while the previous code is inside its resend window.
	RequestVerification(ctx context.Context, email string) (code string, issued bool, err error)
	// ExchangeCode consumes a valid code and returns a token pair for the
	// user owning email, creating that user on first login.
	ExchangeCode(ctx context.Context, email, code string) (*domain.TokenPair, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

type codeEngine interface {
	CreateCode(ctx context.Context, email string) (string, bool, error)
	ValidateCode(ctx context.Context, email, code string) (bool, error)
	Expiration() time.Duration
}

type tokenEngine interface {
	MintPair(ctx context.Context, userID string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

type userDirectory interface {
	UpsertByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Notifier delivers a code out of band. Delivery failures never fail the request.
type Notifier interface {
	SendVerificationCode(ctx context.Context, email, code string, expiresIn time.Duration) error
}

// Recorder receives flow outcomes for metrics.
type Recorder interface {
	CodeIssued()
	CodeThrottled()
	CodeValidated(ok bool)
	TokensIssued(kind string)
	RefreshResult(result string)
}

type noopRecorder struct{}

func (noopRecorder) CodeIssued()          {}
func (noopRecorder) CodeThrottled()       {}
func (noopRecorder) CodeValidated(bool)   {}
func (noopRecorder) TokensIssued(string)  {}
func (noopRecorder) RefreshResult(string) {}

type service struct {
	codes    codeEngine
	tokens   tokenEngine
	users    userDirectory
	notifier Notifier
	metrics  Recorder
	log      *zap.Logger
}

type ServiceDeps struct {
	Codes    codeEngine
	Tokens   tokenEngine
	Users    userDirectory
	Notifier Notifier
	// Metrics is optional.
	Metrics Recorder
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		codes:    deps.Codes,
		tokens:   deps.Tokens,
		users:    deps.Users,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		log:      logger.Named("auth"),
	}
	if s.metrics == nil {
		s.metrics = noopRecorder{}
	}
	return s
}

func (s *service) RequestVerification(ctx context.Context, email string) (string, bool, error) {
	code, issued, err := s.codes.CreateCode(ctx, email)
	if err != nil {
		return "", false, err
	}
	if !issued {
		s.metrics.CodeThrottled()
		s.log.Debug("verification code throttled", zap.String("email", email))
		return "", false, nil
	}
	s.metrics.CodeIssued()

	if s.notifier != nil {
		if err := s.notifier.SendVerificationCode(ctx, email, code, s.codes.Expiration()); err != nil {
			s.log.Error("failed to deliver verification code", zap.String("email", email), zap.Error(err))
		}
	}
	return code, true, nil
}

func (s *service) ExchangeCode(ctx context.Context, email, code string) (*domain.TokenPair, error) {
	ok, err := s.codes.ValidateCode(ctx, email, code)
	if err != nil {
		return nil, err
	}
	s.metrics.CodeValidated(ok)
	if !ok {
		return nil, fmt.Errorf("exchange for %s: %w", email, domain.ErrInvalidCode)
	}

	u, err := s.users.UpsertByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	pair, err := s.tokens.MintPair(ctx, u.UserID)
	if err != nil {
		return nil, err
	}
	s.metrics.TokensIssued("exchange")
	s.log.Info("user logged in", zap.String("user_id", u.UserID))
	return pair, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	pair, err := s.tokens.Refresh(ctx, refreshToken)
	s.metrics.RefreshResult(refreshResult(err))
	if err != nil {
		return nil, err
	}
	s.metrics.TokensIssued("refresh")
	return pair, nil
}

func refreshResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrInvalidScope):
		return "invalid_scope"
	case errors.Is(err, domain.ErrUnknownUser):
		return "unknown_user"
	default:
		return "error"
	}
}
