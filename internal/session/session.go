// Package session owns the bearer credential for the running process. It is
// initialized from durable storage at start, read by the API gateway on every
// request, and torn down on logout.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/filedash/filedash/internal/config"
	"github.com/filedash/filedash/internal/logging"
)

// ErrNotSignedIn is returned when an operation needs a credential and none
// is present.
var ErrNotSignedIn = errors.New("not signed in")

// Store persists the credential between runs.
type Store interface {
	Read() (string, error)
	Write(token string) error
	Remove() error
}

// Session holds the current credential.
type Session struct {
	store  Store
	logger *logging.Logger

	mu    sync.RWMutex
	token string
}

// New creates an empty session backed by store. A nil store keeps the
// credential in memory only.
func New(store Store, logger *logging.Logger) *Session {
	return &Session{store: store, logger: logging.OrDiscard(logger)}
}

// Init loads the credential. An override (from flags or the environment)
// wins over the stored one and is not persisted. A missing stored token is
// not an error; the session simply stays signed out.
func (s *Session) Init(override string) error {
	if override = strings.TrimSpace(override); override != "" {
		s.set(override)
		s.logger.Debug().Msg("Session initialized from override")
		return nil
	}
	if s.store == nil {
		return nil
	}

	token, err := s.store.Read()
	if err != nil {
		if errors.Is(err, config.ErrNoToken) {
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}
	s.set(token)
	s.logger.Debug().Msg("Session initialized from token store")
	return nil
}

// SignIn stores token in memory and in the backing store.
func (s *Session) SignIn(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is empty")
	}
	if s.store != nil {
		if err := s.store.Write(token); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}
	s.set(token)
	return nil
}

// Token returns the current credential, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Active reports whether a credential is present.
func (s *Session) Active() bool {
	return s.Token() != ""
}

// Teardown clears the credential in memory and removes it from the store.
// The in-memory credential is cleared even if removal fails.
func (s *Session) Teardown() error {
	s.set("")
	if s.store == nil {
		return nil
	}
	if err := s.store.Remove(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Session) set(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", config.ErrNoToken
	}
	return m.token, nil
}

func (m *MemoryStore) Write(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Remove() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
