package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-otp-auth/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// CodeStore keeps verification entries in process memory.
// Suitable for a single instance or for tests; entries do not survive a restart.
type CodeStore struct {
	// mu serialises writers so CompareAndDelete cannot interleave with Put.
	mu sync.Mutex
	c  *gocache.Cache
}

// NewCodeStore returns an empty store that sweeps expired entries every cleanupInterval.
func NewCodeStore(cleanupInterval time.Duration) *CodeStore {
	return &CodeStore{c: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (s *CodeStore) Put(_ context.Context, key string, entry domain.VerificationEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("put %q: ttl must be positive", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Set(key, entry, ttl)
	return nil
}

// Get returns the live entry for key. go-cache checks the expiry on every read,
// so an entry past its TTL is reported missing even before the sweeper runs.
func (s *CodeStore) Get(_ context.Context, key string) (*domain.VerificationEntry, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, fmt.Errorf("verification code for %q: %w", key, domain.ErrNotFound)
	}
	entry := v.(domain.VerificationEntry)
	return &entry, nil
}

func (s *CodeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Delete(key)
	return nil
}

func (s *CodeStore) CompareAndDelete(_ context.Context, key, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.c.Get(key)
	if !ok {
		return false, nil
	}
	if v.(domain.VerificationEntry).Code != code {
		return false, nil
	}
	s.c.Delete(key)
	return true, nil
}
