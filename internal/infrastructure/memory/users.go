package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/pkg/id"
)

// UserRepo is an in-process user directory for local development and tests.
type UserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
	now     func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
		now:     time.Now,
	}
}

// UpsertByEmail creates the user on first sight and touches LastLogin afterwards.
func (r *UserRepo) UpsertByEmail(_ context.Context, email string) (*domain.User, error) {
	now := r.now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		u = &domain.User{UserID: id.New(), Email: email, Active: true, CreatedAt: now}
		r.byEmail[email] = u
		r.byID[u.UserID] = u
	}
	u.LastLogin = now
	cp := *u
	return &cp, nil
}

// ExistsByID reports whether userID belongs to an active user.
func (r *UserRepo) ExistsByID(_ context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[userID]
	return ok && u.Active, nil
}

func (r *UserRepo) GetByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

// Delete removes a user. Tokens already issued to it stop refreshing.
func (r *UserRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[userID]; ok {
		delete(r.byEmail, u.Email)
		delete(r.byID, userID)
	}
	return nil
}
