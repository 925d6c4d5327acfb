package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes success toasts from error toasts
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a user-visible toast
type Notification struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	JobID   string    `json:"job_id,omitempty"`
	UserID  string    `json:"user_id,omitempty"`
	At      time.Time `json:"at"`
}

// Success builds a success notification
func Success(message string) Notification {
	return newNotification(KindSuccess, message)
}

// Error builds an error notification
func Error(message string) Notification {
	return newNotification(KindError, message)
}

func newNotification(kind Kind, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		At:      time.Now().UTC(),
	}
}

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Multi fans a notification out to several notifiers in order
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		notifier.Notify(ctx, n)
	}
}

// Recorder keeps every notification in memory
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
