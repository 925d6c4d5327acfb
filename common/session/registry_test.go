package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobview/common/backendtest"
	"github.com/jobportal/jobview/common/clients"
	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/models"
	"github.com/jobportal/jobview/common/notify"
	"github.com/jobportal/jobview/common/view"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(t *testing.T, ttl time.Duration) (*Registry, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := newRegistry(Shared{}, ttl, logger.Discard())
	r.now = clock.now
	t.Cleanup(func() { _ = r.Close() })
	return r, clock
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)

	sess, created := r.GetOrCreate("")
	require.True(t, created)
	require.NotEmpty(t, sess.ID)
	require.NotNil(t, sess.Store)
	require.NotNil(t, sess.History)
	require.NotNil(t, sess.View)

	again, created := r.GetOrCreate(sess.ID)
	assert.False(t, created)
	assert.Same(t, sess, again)

	_, created = r.GetOrCreate("unknown")
	assert.True(t, created)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_IdleExpiry(t *testing.T) {
	r, clock := newTestRegistry(t, time.Minute)

	sess, _ := r.GetOrCreate("")

	clock.advance(50 * time.Second)
	_, ok := r.Get(sess.ID)
	require.True(t, ok, "access refreshes the idle timer")

	clock.advance(50 * time.Second)
	_, ok = r.Get(sess.ID)
	require.True(t, ok)

	clock.advance(61 * time.Second)
	_, ok = r.Get(sess.ID)
	assert.False(t, ok)

	replacement, created := r.GetOrCreate(sess.ID)
	assert.True(t, created)
	assert.NotEqual(t, sess.ID, replacement.ID)
}

func TestRegistry_Sweep(t *testing.T) {
	r, clock := newTestRegistry(t, time.Minute)

	old, _ := r.GetOrCreate("")
	clock.advance(2 * time.Minute)
	fresh, _ := r.GetOrCreate("")

	assert.Equal(t, 1, r.sweep())
	assert.Equal(t, 1, r.Len())

	_, ok := r.Get(old.ID)
	assert.False(t, ok)
	_, ok = r.Get(fresh.ID)
	assert.True(t, ok)
}

func TestRegistry_DeleteAndClose(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)

	a, _ := r.GetOrCreate("")
	r.GetOrCreate("")

	r.Delete(a.ID)
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 0, r.Len())
}

func TestSession_SetUser(t *testing.T) {
	r, _ := newTestRegistry(t, time.Minute)
	sess, _ := r.GetOrCreate("")

	sess.SetUser("u1")
	assert.Equal(t, "u1", sess.Store.UserID())

	sess.SetUser("")
	assert.Equal(t, "", sess.Store.UserID())
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	backend := backendtest.New(models.Job{ID: "j1", Title: "Go Engineer"})
	defer backend.Close()

	jobs, err := clients.NewJobClient(backend.APIConfig(), logger.Discard())
	require.NoError(t, err)

	recorder := &notify.Recorder{}
	r := newRegistry(Shared{Jobs: jobs, Notifier: recorder, Logger: logger.Discard()}, time.Minute, logger.Discard())
	defer r.Close()

	alice, _ := r.GetOrCreate("")
	alice.SetUser("alice")
	bob, _ := r.GetOrCreate("")
	bob.SetUser("bob")

	ctx := context.Background()
	require.NoError(t, alice.View.Sync(ctx, "j1"))
	require.NoError(t, bob.View.Sync(ctx, "j1"))

	require.NoError(t, alice.View.Apply(ctx))

	assert.True(t, alice.View.HasApplied())
	assert.False(t, bob.View.HasApplied())
	assert.Len(t, recorder.All(), 1)
}

func TestRegistry_PerSessionClients(t *testing.T) {
	backend := backendtest.New()
	defer backend.Close()

	created := 0
	r := newRegistry(Shared{
		NewJobs: func() (view.JobAPI, error) {
			created++
			return clients.NewJobClient(backend.APIConfig(), logger.Discard())
		},
	}, time.Minute, logger.Discard())
	defer r.Close()

	r.GetOrCreate("")
	r.GetOrCreate("")
	assert.Equal(t, 2, created)
}
