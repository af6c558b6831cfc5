package store

import (
	"context"
	"sync"
	"time"

	"soko/internal/session/models"
	id "soko/pkg/domain"
	"soko/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in process memory. Suitable for tests and
// single-instance deployments without Redis.
type InMemoryStore struct {
	mu        sync.RWMutex
	sessions  map[id.SessionID]*models.Session
	byRefresh map[string]id.SessionID
}

// NewMemory creates an empty in-memory session store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		sessions:  make(map[id.SessionID]*models.Session),
		byRefresh: make(map[string]id.SessionID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *session
	s.sessions[session.ID] = &cp
	if session.RefreshToken != "" {
		s.byRefresh[session.RefreshToken] = session.ID
	}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, sessionID id.SessionID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *InMemoryStore) FindByRefreshToken(_ context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionID, ok := s.byRefresh[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *InMemoryStore) Update(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *InMemoryStore) Revoke(_ context.Context, sessionID id.SessionID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if sess.Status == models.StatusRevoked {
		return sentinel.ErrRevoked
	}
	sess.Status = models.StatusRevoked
	sess.LastSeenAt = now
	delete(s.byRefresh, sess.RefreshToken)
	return nil
}
