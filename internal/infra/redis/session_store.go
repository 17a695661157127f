package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore is the Redis implementation of app.SessionStore. Each record
// is a plain string key written with SET ... PX so Redis drops it on expiry.
// Keys are independent: there is no MULTI/WATCH around read-modify-write
// sequences.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore prefixes every key with prefix, which lets several
// deployments share one database.
func NewSessionStore(client *redis.Client, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set writes value; a non-positive ttl stores the key without expiry.
func (s *SessionStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.key(key), value, ttl).Err()
}

func (s *SessionStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return s.client.Del(ctx, s.key(key)).Err()
	}
	return s.client.PExpire(ctx, s.key(key), ttl).Err()
}

func (s *SessionStore) key(key string) string {
	return s.prefix + key
}
