// Package cache holds redis-backed stores for session state and QR login
// codes. Redis TTLs do the expiry housekeeping the memory stores handle
// manually.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kaju0475/samduk/internal/domain"
)

// Connect parses a redis URL and validates the connection.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

const (
	sessionKeyPrefix = "auth:session:"
	qrKeyPrefix      = "auth:qr:"
)

// sessionRecord is the JSON value stored under auth:session:<id>.
type sessionRecord struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked"`
}

func encodeSession(session domain.Session) ([]byte, error) {
	return json.Marshal(sessionRecord{
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		Revoked:   session.Revoked,
	})
}

func decodeSession(id string, raw []byte) (domain.Session, error) {
	var rec sessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return domain.Session{
		ID:        id,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
		Revoked:   rec.Revoked,
	}, nil
}

// RedisSessionStore keeps session records under auth:session:<id> with a TTL
// matching the session expiry.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) Put(ctx context.Context, session domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	value, err := encodeSession(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+session.ID, value, ttl).Err()
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	value, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Session{}, domain.ErrNotFound
		}
		return domain.Session{}, err
	}
	return decodeSession(id, value)
}

func (s *RedisSessionStore) Revoke(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	session.Revoked = true
	return s.Put(ctx, session)
}

// RedisQRTokenStore keeps one-shot QR codes; GETDEL makes consumption atomic
// so a code can never be redeemed twice.
type RedisQRTokenStore struct {
	client *redis.Client
}

func NewRedisQRTokenStore(client *redis.Client) *RedisQRTokenStore {
	return &RedisQRTokenStore{client: client}
}

func (s *RedisQRTokenStore) Issue(ctx context.Context, code, userID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.client.Set(ctx, qrKeyPrefix+code, userID, ttl).Err()
}

func (s *RedisQRTokenStore) Consume(ctx context.Context, code string) (string, error) {
	userID, err := s.client.GetDel(ctx, qrKeyPrefix+code).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return userID, nil
}
