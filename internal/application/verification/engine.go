// Package verification issues and consumes one-time email verification codes.
//
// Each email has at most one pending code. A new code can be requested only
// after the resend window has passed; the store expires entries on its own
// after the configured TTL regardless of the resend window.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/logger"
	"go.uber.org/zap"
)

// CodeStore is a TTL key-value store holding one VerificationEntry per email.
// Get must never return an entry past its TTL and reports a missing key with
// an error wrapping domain.ErrNotFound.
type CodeStore interface {
	Put(ctx context.Context, key string, entry domain.VerificationEntry, ttl time.Duration) error
	Get(ctx context.Context, key string) (*domain.VerificationEntry, error)
	Delete(ctx context.Context, key string) error
	// CompareAndDelete removes the entry for key only if its code equals code,
	// as one atomic step. It reports whether the entry was removed; a missing
	// key is (false, nil).
	CompareAndDelete(ctx context.Context, key, code string) (bool, error)
}

// Config tunes code issuance.
type Config struct {
	CodeLength      int
	Expiration      time.Duration
	ResendThreshold time.Duration
}

// Engine issues and validates codes.
type Engine struct {
	store   CodeStore
	cfg     Config
	now     func() time.Time
	entropy io.Reader
	log     *zap.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithEntropy overrides the randomness used for code digits.
func WithEntropy(r io.Reader) Option {
	return func(e *Engine) { e.entropy = r }
}

func NewEngine(store CodeStore, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		cfg:     cfg,
		now:     time.Now,
		entropy: rand.Reader,
		log:     logger.Named("verification"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateCode issues a fresh code for email. It returns issued=false, and no
// error, while a previous code is still inside the resend window.
// The caller delivers the code; the engine never does.
func (e *Engine) CreateCode(ctx context.Context, email string) (code string, issued bool, err error) {
	now := e.now()

	existing, err := e.store.Get(ctx, email)
	switch {
	case err == nil:
		if now.Before(existing.CreatedAt.Add(e.cfg.ResendThreshold)) {
			return "", false, nil
		}
		if err := e.store.Delete(ctx, email); err != nil {
			e.log.Warn("failed to delete stale verification code", zap.String("email", email), zap.Error(err))
		}
	case errors.Is(err, domain.ErrNotFound):
	default:
		return "", false, fmt.Errorf("load verification code: %w", err)
	}

	code, err = e.generate()
	if err != nil {
		return "", false, err
	}
	entry := domain.VerificationEntry{Code: code, CreatedAt: now}
	if err := e.store.Put(ctx, email, entry, e.cfg.Expiration); err != nil {
		return "", false, fmt.Errorf("save verification code: %w", err)
	}
	return code, true, nil
}

// ValidateCode consumes the pending code for email if it matches. A mismatch
// leaves the entry in place so the user can retry until it expires.
func (e *Engine) ValidateCode(ctx context.Context, email, code string) (bool, error) {
	if code == "" {
		return false, nil
	}
	ok, err := e.store.CompareAndDelete(ctx, email, code)
	if err != nil {
		return false, fmt.Errorf("consume verification code: %w", err)
	}
	return ok, nil
}

// Expiration is the lifetime of an issued code.
func (e *Engine) Expiration() time.Duration { return e.cfg.Expiration }

// CodeLength is the number of digits in an issued code.
func (e *Engine) CodeLength() int { return e.cfg.CodeLength }

func (e *Engine) generate() (string, error) {
	var b strings.Builder
	b.Grow(e.cfg.CodeLength)
	ten := big.NewInt(10)
	for i := 0; i < e.cfg.CodeLength; i++ {
		n, err := rand.Int(e.entropy, ten)
		if err != nil {
			return "", fmt.Errorf("generate verification code: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// ValidCodeFormat reports whether code has exactly length ASCII digits.
// The HTTP boundary calls it before a submitted code reaches the engine.
func ValidCodeFormat(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
