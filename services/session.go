package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"airbnb-analyzer/models"
)

// ErrSessionNotFound is returned for unknown report ids.
var ErrSessionNotFound = errors.New("report not found")

// Session pairs one engine with the metadata of the dataset it was built
// from. A Session is never modified; replacing a dataset swaps the Session.
type Session struct {
	Info   models.DatasetInfo
	Engine *ReportEngine
}

// SessionStore keeps report sessions in memory, keyed by id. It is safe for
// concurrent use.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create builds an engine over ds and stores it under a fresh id.
func (s *SessionStore) Create(source string, ds *models.Dataset) (*Session, error) {
	sess, err := s.build(uuid.NewString(), source, ds)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.Info.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Replace swaps the dataset behind id for ds. Readers holding the previous
// Session keep a consistent view of the old data.
func (s *SessionStore) Replace(id, source string, ds *models.Dataset) (*Session, error) {
	sess, err := s.build(id, source, ds)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return nil, ErrSessionNotFound
	}
	s.sessions[id] = sess
	return sess, nil
}

// Get returns the current Session for id.
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete drops id from the store.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) build(id, source string, ds *models.Dataset) (*Session, error) {
	engine, err := NewReportEngine(ds)
	if err != nil {
		return nil, err
	}
	return &Session{
		Info: models.DatasetInfo{
			ID:       id,
			Source:   source,
			Rows:     engine.Len(),
			Columns:  engine.Columns(),
			LoadedAt: s.now().UTC(),
		},
		Engine: engine,
	}, nil
}
