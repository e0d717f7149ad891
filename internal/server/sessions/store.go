// Package sessions keeps login sessions in process memory. Sessions do not
// survive a restart.
package sessions

import (
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
)

const idSize = 32

// Store is a concurrency-safe map of session ID to session.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
		now:      time.Now,
	}
}

// Create registers an authenticated session for username that expires
// after ttl.
func (s *Store) Create(username string, ttl time.Duration) (models.Session, error) {
	id, err := common.MakeRandHexString(idSize)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: session id: %w", common.ErrorInternal, err)
	}

	now := s.now()
	sess := &models.Session{
		ID:            id,
		Username:      username,
		Authenticated: true,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return *sess, nil
}

// Get returns a copy of the session. Unknown and expired sessions yield
// common.ErrorNotFound; expired ones are dropped.
func (s *Store) Get(id string) (models.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return models.Session{}, common.ErrorNotFound
	}

	if sess.Expired(s.now()) {
		s.Destroy(id)
		return models.Session{}, common.ErrorNotFound
	}
	return *sess, nil
}

// Destroy removes the session. Unknown IDs are ignored.
func (s *Store) Destroy(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep drops every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
