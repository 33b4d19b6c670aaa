package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Hash fields of a verification entry.
const (
	fieldCode      = "code"
	fieldCreatedAt = "created_at"
)

// consumeLua deletes KEYS[1] only when its code field equals ARGV[1].
// Returns 1 when the entry was consumed, 0 otherwise.
var consumeLua = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'code')
if not stored then
  return 0
end
if stored ~= ARGV[1] then
  return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

// CodeStore keeps one hash per email under "<prefix>:<email>", expired by Redis itself.
type CodeStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewCodeStore(rdb redis.UniversalClient, prefix string) *CodeStore {
	if prefix == "" {
		prefix = "verification"
	}
	return &CodeStore{redis: rdb, prefix: prefix}
}

func (s *CodeStore) key(email string) string { return s.prefix + ":" + email }

// Put replaces any existing entry; the old fields never survive next to the new ones.
func (s *CodeStore) Put(ctx context.Context, email string, entry domain.VerificationEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("put %q: ttl must be positive", email)
	}
	k := s.key(email)
	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, k)
	pipe.HSet(ctx, k,
		fieldCode, entry.Code,
		fieldCreatedAt, strconv.FormatInt(entry.CreatedAt.UnixMilli(), 10),
	)
	pipe.PExpire(ctx, k, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis put %s: %w", k, err)
	}
	return nil
}

func (s *CodeStore) Get(ctx context.Context, email string) (*domain.VerificationEntry, error) {
	k := s.key(email)
	vals, err := s.redis.HGetAll(ctx, k).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", k, err)
	}
	code, ok := vals[fieldCode]
	if !ok {
		return nil, fmt.Errorf("verification code for %q: %w", email, domain.ErrNotFound)
	}
	ms, err := strconv.ParseInt(vals[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis get %s: bad created_at: %w", k, err)
	}
	return &domain.VerificationEntry{Code: code, CreatedAt: time.UnixMilli(ms).UTC()}, nil
}

func (s *CodeStore) Delete(ctx context.Context, email string) error {
	if err := s.redis.Del(ctx, s.key(email)).Err(); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

func (s *CodeStore) CompareAndDelete(ctx context.Context, email, code string) (bool, error) {
	n, err := consumeLua.Run(ctx, s.redis, []string{s.key(email)}, code).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis consume: %w", err)
	}
	return n == 1, nil
}
