package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kaju0475/samduk/internal/domain"
)

// SessionStore keeps sessions in process memory. Suitable for single-node
// runs and tests; deployed runs use the redis-backed store instead.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: map[string]domain.Session{}}
}

func (s *SessionStore) Put(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return session, nil
}

func (s *SessionStore) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	session.Revoked = true
	s.sessions[id] = session
	return nil
}

type qrToken struct {
	userID    string
	expiresAt time.Time
}

// QRTokenStore keeps one-shot QR login codes in memory.
type QRTokenStore struct {
	mu     sync.Mutex
	tokens map[string]qrToken
	nowFn  func() time.Time
}

func NewQRTokenStore() *QRTokenStore {
	return &QRTokenStore{tokens: map[string]qrToken{}, nowFn: time.Now}
}

func (s *QRTokenStore) Issue(_ context.Context, code, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[code]; ok {
		return domain.ErrConflict
	}
	s.tokens[code] = qrToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *QRTokenStore) Consume(_ context.Context, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, ok := s.tokens[code]
	if !ok {
		return "", domain.ErrNotFound
	}
	delete(s.tokens, code)
	if !tok.expiresAt.After(s.nowFn()) {
		return "", domain.ErrNotFound
	}
	return tok.userID, nil
}
