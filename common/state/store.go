package state

import (
	"sync"

	"github.com/jobportal/jobview/common/models"
)

// Listener is called after the current job snapshot has been replaced
type Listener func(job *models.Job)

// Store holds the job currently being viewed and the authenticated user.
// Snapshots handed out by Job are never mutated afterwards; every change
// installs a new one.
type Store struct {
	mu   sync.RWMutex
	job  *models.Job
	user *models.User

	listeners map[int]Listener
	order     []int
	nextID    int
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		listeners: make(map[int]Listener),
	}
}

// Job returns the current snapshot, or nil when nothing has been loaded.
// Callers must treat it as read-only.
func (s *Store) Job() *models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.job
}

// ReplaceJob installs job as the new snapshot and notifies listeners
// synchronously, in subscription order, before returning.
func (s *Store) ReplaceJob(job models.Job) {
	snapshot := job.Clone()

	s.mu.Lock()
	s.job = &snapshot
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(&snapshot)
	}
}

// User returns the authenticated user, if any
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// UserID returns the authenticated user's id, or "" when unauthenticated
func (s *Store) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

// SetUser replaces the authenticated user. nil signs the user out.
func (s *Store) SetUser(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return
	}
	u := *user
	s.user = &u
}

// Subscribe registers fn for job replacements and returns a function that
// removes it
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, existing := range s.order {
				if existing == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// snapshotListeners must be called with s.mu held
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.listeners[id])
	}
	return out
}
