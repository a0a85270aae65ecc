package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no record exists for a binding hash.
var ErrNotFound = errors.New("session record not found")

// ErrRedisUnavailable is an exported constant or variable used by the authentication engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store is a Redis-backed session-record store. Records are keyed by
// (cookie name, binding hash) and expire with the configured session
// timeout.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) key(cookieName, hash string) string {
	return s.prefix + ":" + cookieName + ":" + hash
}

// Create persists a new record under its binding hash. Any existing record
// with the same binding is replaced, which upholds the single-binding
// invariant; stale records from other bindings disappear when their TTL
// runs out.
//
//	Performance: 1 Redis SET.
func (s *Store) Create(ctx context.Context, rec *Record, timeout time.Duration) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(rec.CookieName, rec.Hash), data, timeout).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Lookup retrieves the record stored under (cookieName, hash). Returns
// [ErrNotFound] when no record exists.
//
//	Performance: 1 Redis GET.
func (s *Store) Lookup(ctx context.Context, cookieName, hash string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.key(cookieName, hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return Decode(data)
}

// Touch bumps the record's activity timestamp and renews its expiry.
func (s *Store) Touch(ctx context.Context, rec *Record, now time.Time, timeout time.Duration) error {
	rec.LastActivity = now.Unix()

	data, err := Encode(rec)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(rec.CookieName, rec.Hash), data, timeout).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Delete removes the record stored under (cookieName, hash). Deleting an
// absent record is not an error.
func (s *Store) Delete(ctx context.Context, cookieName, hash string) error {
	if err := s.redis.Del(ctx, s.key(cookieName, hash)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
