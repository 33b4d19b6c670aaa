// Package user serves the profile of an authenticated caller.
package user

import (
	"context"
	"fmt"

	"github.com/go-otp-auth/internal/domain"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type userStore interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

// Get returns the user behind a token subject. Deactivated users are
// reported as not found.
func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, fmt.Errorf("user %s inactive: %w", userID, domain.ErrNotFound)
	}
	return u, nil
}
