package storage

import (
	"errors"
	"sync"

	"github.com/communityhub/importer/internal/models"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("session not found")

// Store persists import sessions.
type Store interface {
	Get(sessionID string) (*models.ImportSession, error)
	Set(session *models.ImportSession) error
	GetAll() ([]*models.ImportSession, error)
	Delete(sessionID string) error
	Close() error
}

// Open returns a bbolt-backed store when path is set, otherwise an in-memory
// one.
func Open(path string) (Store, error) {
	if path == "" {
		return NewMemory(), nil
	}
	return NewBolt(path)
}

// MemoryStore keeps sessions in a map for the life of the process.
type MemoryStore struct {
	sessions map[string]*models.ImportSession
	mu       sync.RWMutex
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.ImportSession),
	}
}

func (s *MemoryStore) Get(sessionID string) (*models.ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *MemoryStore) Set(session *models.ImportSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

// GetAll returns sessions oldest first.
func (s *MemoryStore) GetAll() ([]*models.ImportSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*models.ImportSession, 0, len(s.sessions))
	for _, v := range s.sessions {
		result = append(result, v)
	}
	sortSessions(result)
	return result, nil
}

func (s *MemoryStore) Delete(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sessionID]; !exists {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
