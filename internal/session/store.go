// Package session keeps per-browser dashboard state in memory. Nothing is
// persisted: a session holds the uploaded datasets and the provisioning
// navigation state until it expires or is cleared.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a20121248/network-dashboard/internal/dataset"
	"github.com/a20121248/network-dashboard/internal/drilldown"
)

// Session is one browser's working state.
type Session struct {
	ID        string
	Datasets  map[dataset.Category]*dataset.Frame
	Drill     drilldown.State
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store owns every live session and evicts idle ones on a timer.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	log      *zap.Logger

	stop chan struct{}
	done chan struct{}
}

// NewStore creates a store whose janitor evicts sessions idle longer than ttl.
func NewStore(ttl time.Duration, log *zap.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Create registers a new session and returns it.
func (s *Store) Create() *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Datasets:  make(map[dataset.Category]*dataset.Frame),
		CreatedAt: now,
		LastSeen:  now,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.log.Info("session created", zap.String("session_id", sess.ID))
	return sess
}

// Get looks up a session by id, refreshing its idle timer. The second return
// is false for unknown or expired ids.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.LastSeen = time.Now()
	return sess, true
}

// SetDataset stores an uploaded frame under its category, replacing any
// previous upload of the same category.
func (s *Store) SetDataset(id string, f *dataset.Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Datasets[f.Category] = f
	sess.LastSeen = time.Now()
	return true
}

// Dataset retrieves the frame for a category, or nil.
func (s *Store) Dataset(id string, cat dataset.Category) *dataset.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return sess.Datasets[cat]
}

// ClearDatasets removes every dataset from a session and resets the
// provisioning navigation, leaving the session itself alive.
func (s *Store) ClearDatasets(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Datasets = make(map[dataset.Category]*dataset.Frame)
	sess.Drill = drilldown.Reset()
	sess.LastSeen = time.Now()
	return true
}

// Drill returns the session's provisioning navigation state.
func (s *Store) Drill(id string) (drilldown.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return drilldown.State{}, false
	}
	return sess.Drill, true
}

// SetDrill replaces the session's provisioning navigation state.
func (s *Store) SetDrill(id string, st drilldown.State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Drill = st
	sess.LastSeen = time.Now()
	return true
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartJanitor launches the eviction loop. Stop shuts it down.
func (s *Store) StartJanitor(interval time.Duration) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.evictExpired()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop terminates the janitor goroutine and waits for it to exit.
func (s *Store) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Store) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			s.log.Info("session expired", zap.String("session_id", id))
		}
	}
}
