package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	codeKeyPrefix    = "pwreset:"
)

// RedisSessionStore keeps the live-session register in Redis. A token is
// only honoured while its jti is present here, which is what makes logout
// and expiry effective server-side.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a session store with the given lifetime.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

// Put registers a session id for a faculty member.
func (s *RedisSessionStore) Put(ctx context.Context, jti string, facultyID int) error {
	return s.client.Set(ctx, sessionKeyPrefix+jti, strconv.Itoa(facultyID), s.ttl).Err()
}

// Alive reports whether the session id is still registered.
func (s *RedisSessionStore) Alive(ctx context.Context, jti string) (bool, error) {
	_, err := s.client.Get(ctx, sessionKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a session id; used by logout.
func (s *RedisSessionStore) Delete(ctx context.Context, jti string) error {
	return s.client.Del(ctx, sessionKeyPrefix+jti).Err()
}

// RedisCodeStore keeps password-reset codes with their validity window
// enforced by key TTL.
type RedisCodeStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCodeStore creates a code store; codes expire after ttl.
func NewRedisCodeStore(client *redis.Client, ttl time.Duration) *RedisCodeStore {
	return &RedisCodeStore{client: client, ttl: ttl}
}

// Put stores the reset code for an email, replacing any previous one.
func (s *RedisCodeStore) Put(ctx context.Context, email, code string) error {
	return s.client.Set(ctx, codeKeyPrefix+email, code, s.ttl).Err()
}

// Get returns the live code for an email, or ErrCodeInvalid when none is
// stored (never issued, already used, or expired).
func (s *RedisCodeStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, codeKeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeInvalid
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// Delete discards the code after a successful reset.
func (s *RedisCodeStore) Delete(ctx context.Context, email string) error {
	return s.client.Del(ctx, codeKeyPrefix+email).Err()
}
