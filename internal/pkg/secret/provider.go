// Package secret owns the HMAC signing key used for access and refresh tokens.
//
// The key is generated lazily on first use and then held in memory for the
// lifetime of the Provider. It is never persisted or rotated, so every token
// issued by a process becomes unverifiable once that process exits.
package secret

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/go-otp-auth/internal/domain"
)

// KeySize is the HMAC-SHA256 key length in bytes.
const KeySize = 32

// Provider hands out a single signing key. Safe for concurrent use.
type Provider struct {
	entropy io.Reader

	once sync.Once
	key  []byte
	err  error
}

// NewProvider returns a Provider that draws its key from crypto/rand.
func NewProvider() *Provider {
	return &Provider{entropy: rand.Reader}
}

// NewProviderFrom returns a Provider that draws its key from r.
func NewProviderFrom(r io.Reader) *Provider {
	return &Provider{entropy: r}
}

// NewStaticProvider returns a Provider that always yields key.
func NewStaticProvider(key []byte) *Provider {
	p := &Provider{key: append([]byte(nil), key...)}
	p.once.Do(func() {})
	return p
}

// Secret returns the signing key, generating it on the first call.
// A generation failure is sticky: every later call reports the same error.
func (p *Provider) Secret() ([]byte, error) {
	p.once.Do(func() {
		key := make([]byte, KeySize)
		if _, err := io.ReadFull(p.entropy, key); err != nil {
			p.err = fmt.Errorf("generate signing key: %v: %w", err, domain.ErrSecretUnavailable)
			return
		}
		p.key = key
	})
	if p.err != nil {
		return nil, p.err
	}
	return p.key, nil
}
