//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"soko/internal/session/models"
	id "soko/pkg/domain"
	"soko/pkg/platform/sentinel"
	"soko/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) newSession(ttl time.Duration) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:           id.SessionID(uuid.New()),
		UserID:       id.UserID(uuid.New()),
		RefreshToken: uuid.NewString(),
		Status:       models.StatusActive,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastSeenAt:   now,
	}
}

func (s *RedisStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	sess := s.newSession(time.Hour)

	s.Require().NoError(s.store.Create(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, found.UserID)
	s.Equal(models.StatusActive, found.Status)

	byToken, err := s.store.FindByRefreshToken(ctx, sess.RefreshToken)
	s.Require().NoError(err)
	s.Equal(sess.ID, byToken.ID)
}

func (s *RedisStoreSuite) TestCreateExpiredRejected() {
	sess := s.newSession(-time.Minute)
	s.ErrorIs(s.store.Create(context.Background(), sess), sentinel.ErrExpired)
}

func (s *RedisStoreSuite) TestFindMissing() {
	ctx := context.Background()

	_, err := s.store.FindByID(ctx, id.SessionID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByRefreshToken(ctx, "no-such-token")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestUpdatePersistsChanges() {
	ctx := context.Background()
	sess := s.newSession(time.Hour)
	s.Require().NoError(s.store.Create(ctx, sess))

	sess.Device = "Chrome on Linux"
	sess.LastSeenAt = time.Now().Add(time.Minute)
	s.Require().NoError(s.store.Update(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal("Chrome on Linux", found.Device)
}

func (s *RedisStoreSuite) TestRevokeDropsRefreshIndex() {
	ctx := context.Background()
	sess := s.newSession(time.Hour)
	s.Require().NoError(s.store.Create(ctx, sess))

	s.Require().NoError(s.store.Revoke(ctx, sess.ID, time.Now()))

	// The record survives briefly for inspection, flagged revoked.
	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRevoked, found.Status)
	s.False(found.Active(time.Now()))

	// The refresh token can no longer resolve a session.
	_, err = s.store.FindByRefreshToken(ctx, sess.RefreshToken)
	s.ErrorIs(err, sentinel.ErrNotFound)

	// Revoking twice reports the prior revocation.
	s.ErrorIs(s.store.Revoke(ctx, sess.ID, time.Now()), sentinel.ErrRevoked)
}

func (s *RedisStoreSuite) TestSessionExpiresWithTTL() {
	ctx := context.Background()
	sess := s.newSession(time.Second)
	s.Require().NoError(s.store.Create(ctx, sess))

	time.Sleep(1500 * time.Millisecond)

	_, err := s.store.FindByID(ctx, sess.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
