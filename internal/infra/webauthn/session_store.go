package webauthnx

import (
	"sync"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"

	"passwordless/config"
	"passwordless/internal/domain/service"
)

const defaultCeremonyTTL = 5 * time.Minute

type storedSession struct {
	username  string
	session   *webauthn.SessionData
	expiresAt time.Time
}

// sessionStore keeps in-flight ceremony sessions in memory. Entries are
// removed on Take and lazily swept on Put.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]storedSession
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates the in-memory ceremony store.
func NewSessionStore(cfg *config.Config) service.CeremonyStore {
	ttl := defaultCeremonyTTL
	if cfg.WebAuthn != nil && cfg.WebAuthn.CeremonyTTL > 0 {
		ttl = cfg.WebAuthn.CeremonyTTL
	}

	return &sessionStore{
		sessions: make(map[string]storedSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *sessionStore) Put(username string, session *webauthn.SessionData) (string, error) {
	token := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, stored := range s.sessions {
		if stored.expiresAt.Before(now) {
			delete(s.sessions, key)
		}
	}
	s.sessions[token] = storedSession{
		username:  username,
		session:   session,
		expiresAt: now.Add(s.ttl),
	}

	return token, nil
}

func (s *sessionStore) Take(token, username string) (*webauthn.SessionData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[token]
	if !ok {
		return nil, service.ErrCeremonyNotFound
	}
	delete(s.sessions, token)

	if stored.username != username || stored.expiresAt.Before(s.now()) {
		return nil, service.ErrCeremonyNotFound
	}

	return stored.session, nil
}
