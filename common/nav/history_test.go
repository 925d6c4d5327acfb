package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_Back(t *testing.T) {
	h := NewHistory("/jobs")
	h.Push("/description/J1")

	assert.True(t, h.CanGoBack())
	route, ok := h.Back()
	assert.True(t, ok)
	assert.Equal(t, "/jobs", route)

	current, _ := h.Current()
	assert.Equal(t, "/jobs", current)

	_, ok = h.Back()
	assert.False(t, ok)
	assert.False(t, h.CanGoBack())
}

func TestHistory_PushSameRouteOnce(t *testing.T) {
	h := NewHistory()
	h.Push("/description/J1")
	h.Push("/description/J1")

	assert.False(t, h.CanGoBack())
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory()
	_, ok := h.Current()
	assert.False(t, ok)
}
