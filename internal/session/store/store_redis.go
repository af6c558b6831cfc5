package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"soko/internal/session/models"
	id "soko/pkg/domain"
	"soko/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "gate:session:"
	refreshKeyPrefix = "gate:refresh:"
)

// RedisStore persists sessions in Redis with TTLs derived from session
// expiry, so abandoned sessions age out without a reaper.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed session store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func refreshKey(token string) string {
	return refreshKeyPrefix + token
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), payload, ttl)
	if session.RefreshToken != "" {
		pipe.Set(ctx, refreshKey(session.RefreshToken), session.ID.String(), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) FindByRefreshToken(ctx context.Context, token string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, refreshKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch refresh index: %w", err)
	}

	sessionID, err := id.ParseSessionID(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt refresh index: %w", err)
	}
	return s.FindByID(ctx, sessionID)
}

func (s *RedisStore) Update(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (s *RedisStore) Revoke(ctx context.Context, sessionID id.SessionID, now time.Time) error {
	sess, err := s.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Status == models.StatusRevoked {
		return sentinel.ErrRevoked
	}

	sess.Status = models.StatusRevoked
	sess.LastSeenAt = now

	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	// Keep the revoked record around briefly for debugging, drop the
	// refresh index immediately so it cannot mint new access tokens.
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), payload, time.Hour)
	pipe.Del(ctx, refreshKey(sess.RefreshToken))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
