package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/metrics"
	"github.com/jobportal/jobview/common/models"
	"github.com/jobportal/jobview/common/nav"
	"github.com/jobportal/jobview/common/notify"
	"github.com/jobportal/jobview/common/state"
	"github.com/jobportal/jobview/common/view"
)

// Session is the per-client state of the server: its own store, history and
// detail view
type Session struct {
	ID      string
	Store   *state.Store
	History *nav.History
	View    *view.JobDetailView

	lastSeen time.Time
}

// SetUser switches the signed-in user when it differs from the current one.
// An empty id signs the user out.
func (s *Session) SetUser(userID string) {
	if s.Store.UserID() == userID {
		return
	}
	if userID == "" {
		s.Store.SetUser(nil)
		return
	}
	s.Store.SetUser(&models.User{ID: userID})
}

// Shared are the collaborators every session's view uses
type Shared struct {
	Jobs view.JobAPI

	// NewJobs, when set, gives each session its own backend client so that
	// cookies set by the backend never cross sessions
	NewJobs func() (view.JobAPI, error)

	Notifier notify.Notifier
	Logger   *logger.Logger
	Metrics  *metrics.ViewMetrics
}

// Registry keeps sessions in memory and expires the ones idle for longer
// than the TTL
type Registry struct {
	shared Shared
	ttl    time.Duration
	log    *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	stop      chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewRegistry creates a registry and starts its cleanup goroutine
func NewRegistry(shared Shared, ttl time.Duration, log *logger.Logger) *Registry {
	r := newRegistry(shared, ttl, log)
	go r.cleanup(cleanupInterval(ttl))
	return r
}

func newRegistry(shared Shared, ttl time.Duration, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard()
	}
	return &Registry{
		shared:   shared,
		ttl:      ttl,
		log:      log,
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
		now:      time.Now,
	}
}

func cleanupInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// Get returns the live session with id and refreshes its idle timer
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[id]
	if !ok || r.expired(sess) {
		return nil, false
	}
	sess.lastSeen = r.now()
	return sess, true
}

// GetOrCreate returns the session with id, creating a fresh one when id is
// empty, unknown or expired
func (r *Registry) GetOrCreate(id string) (sess *Session, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[id]; ok && !r.expired(existing) {
		existing.lastSeen = r.now()
		return existing, false
	}

	sess = r.newSession()
	r.sessions[sess.ID] = sess
	r.log.Debug("session created", "session_id", sess.ID)
	return sess, true
}

func (r *Registry) newSession() *Session {
	id := uuid.NewString()
	store := state.NewStore()
	history := nav.NewHistory()

	jobs := r.shared.Jobs
	if r.shared.NewJobs != nil {
		own, err := r.shared.NewJobs()
		if err != nil {
			r.log.Error("failed to create session client, using shared one", "session_id", id, "error", err)
		} else {
			jobs = own
		}
	}

	return &Session{
		ID:      id,
		Store:   store,
		History: history,
		View: view.New(view.Deps{
			State:    store,
			Jobs:     jobs,
			Notifier: r.shared.Notifier,
			History:  history,
			Logger:   r.shared.Logger,
			Metrics:  r.shared.Metrics,
		}),
		lastSeen: r.now(),
	}
}

// Delete removes a session
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of sessions, expired ones included until swept
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the cleanup goroutine and drops every session
func (r *Registry) Close() error {
	r.closeOnce.Do(func() {
		close(r.stop)

		r.mu.Lock()
		r.sessions = make(map[string]*Session)
		r.mu.Unlock()

		r.log.Info("session registry closed")
	})
	return nil
}

func (r *Registry) expired(sess *Session) bool {
	return r.now().Sub(sess.lastSeen) > r.ttl
}

// cleanup removes expired sessions periodically
func (r *Registry) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				r.log.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

func (r *Registry) sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, sess := range r.sessions {
		if r.expired(sess) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
