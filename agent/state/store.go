package state

import (
	"context"
	"fmt"
	"strings"
	"sync"

	contractx "pieline/agent/contract"
)

// Store is the session persistence contract used by the dispatcher. Order
// state deliberately does not outlive the process, so the shipped
// implementation is in-memory; the contract stays narrow in case that ever
// changes.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keys sessions by ID behind a mutex. Calls within one
// conversation are strictly serialized, but independent conversations hit the
// store concurrently.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: session id is empty", contractx.ErrValidation)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownSession, sessionID)
	}
	return s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: session id is empty", contractx.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
