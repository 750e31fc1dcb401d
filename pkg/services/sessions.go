package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"property-leads/pkg/form"
	"property-leads/pkg/models"
)

var (
	ErrSessionNotFound = errors.New("form session not found")
	ErrSessionExpired  = errors.New("form session expired")
)

// Session is one mounted form, addressed by an opaque ID
type Session struct {
	ID         string
	Controller *form.Controller
	ExpiresAt  time.Time
}

// SessionStore keeps the form sessions of every open page in memory.
// A session lives until it is deleted or has been idle for the TTL.
type SessionStore struct {
	newController func() *form.Controller
	sessions      map[string]*Session
	mu            sync.RWMutex
	ttl           time.Duration
	now           func() time.Time
	logger        *zap.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewSessionStore creates a store and starts its expiry sweeper.
// Call Close to stop the sweeper.
func NewSessionStore(newController func() *form.Controller, ttl time.Duration, logger *zap.Logger) *SessionStore {
	s := &SessionStore{
		newController: newController,
		sessions:      make(map[string]*Session),
		ttl:           ttl,
		now:           time.Now,
		logger:        logger,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go s.sweep(sweepInterval(ttl))
	return s
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl < time.Minute {
		return ttl
	}
	return time.Minute
}

// Create mounts a new empty form
func (s *SessionStore) Create() *Session {
	session := &Session{
		ID:         uuid.NewString(),
		Controller: s.newController(),
	}

	s.mu.Lock()
	session.ExpiresAt = s.now().Add(s.ttl)
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Debug("Form session created", zap.String("session", session.ID))
	return session
}

// Get returns a live session and extends its lifetime
func (s *SessionStore) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	now := s.now()
	if now.After(session.ExpiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionExpired
	}
	session.ExpiresAt = now.Add(s.ttl)
	return session, nil
}

// Delete discards a session, as when the user navigates away
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.logger.Debug("Form session discarded", zap.String("session", id))
	return nil
}

// Len returns the number of sessions held, expired ones not yet swept included
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SetField applies a field-change event to a session's form
func (s *SessionStore) SetField(id, name, value string) (form.View, error) {
	session, err := s.Get(id)
	if err != nil {
		return form.View{}, err
	}

	field, err := models.ParseField(name)
	if err != nil {
		return session.Controller.View(), err
	}
	if err := session.Controller.SetField(field, value); err != nil {
		return session.Controller.View(), err
	}
	return session.Controller.View(), nil
}

// Submit runs a session's submit event and returns the resulting view
func (s *SessionStore) Submit(ctx context.Context, id string) (form.View, error) {
	session, err := s.Get(id)
	if err != nil {
		return form.View{}, err
	}

	err = session.Controller.Submit(ctx)
	return session.Controller.View(), err
}

// Close stops the sweeper. Sessions stay readable.
func (s *SessionStore) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
	})
}

func (s *SessionStore) sweep(interval time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purgeExpired()
		}
	}
}

func (s *SessionStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	purged := 0
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, id)
			purged++
		}
	}
	if purged > 0 {
		s.logger.Debug("Expired form sessions purged", zap.Int("count", purged), zap.Int("remaining", len(s.sessions)))
	}
}
