package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobview/common/logger"
)

type fakePublisher struct {
	channels []string
	messages []string
	err      error
}

func (f *fakePublisher) PublishEvent(_ context.Context, channel, message string) error {
	f.channels = append(f.channels, channel)
	f.messages = append(f.messages, message)
	return f.err
}

func TestConstructors(t *testing.T) {
	ok := Success("Applied")
	assert.Equal(t, KindSuccess, ok.Kind)
	assert.Equal(t, "Applied", ok.Message)
	assert.NotEmpty(t, ok.ID)
	assert.False(t, ok.At.IsZero())

	bad := Error("Already applied")
	assert.Equal(t, KindError, bad.Kind)
	assert.NotEqual(t, ok.ID, bad.ID)
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	console := NewConsole(&buf)

	console.Notify(context.Background(), Success("Applied"))
	console.Notify(context.Background(), Error("Already applied"))

	assert.Equal(t, "[ok] Applied\n[error] Already applied\n", buf.String())
}

func TestMultiAndRecorder(t *testing.T) {
	first, second := &Recorder{}, &Recorder{}
	Multi{first, second}.Notify(context.Background(), Success("Applied"))

	assert.Len(t, first.All(), 1)
	last, ok := second.Last()
	require.True(t, ok)
	assert.Equal(t, "Applied", last.Message)

	_, ok = (&Recorder{}).Last()
	assert.False(t, ok)
}

func TestRedisPublisher(t *testing.T) {
	pub := &fakePublisher{}
	notifier := NewRedisPublisher(pub, "jobview:notifications", logger.Discard())

	n := Success("Applied")
	n.UserID = "U1"
	n.JobID = "J1"
	notifier.Notify(context.Background(), n)

	require.Len(t, pub.channels, 1)
	assert.Equal(t, "jobview:notifications:U1", pub.channels[0])

	var decoded Notification
	require.NoError(t, json.Unmarshal([]byte(pub.messages[0]), &decoded))
	assert.Equal(t, n.ID, decoded.ID)
	assert.Equal(t, "J1", decoded.JobID)
}

func TestRedisPublisher_SkipsAnonymousAndSwallowsErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("redis down")}
	notifier := NewRedisPublisher(pub, "jobview:notifications", logger.Discard())

	notifier.Notify(context.Background(), Error("Something went wrong"))
	assert.Empty(t, pub.channels)

	n := Error("Something went wrong")
	n.UserID = "U1"
	notifier.Notify(context.Background(), n)
	assert.Len(t, pub.channels, 1)
}
