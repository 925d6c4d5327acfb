package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Console prints notifications as single lines, the terminal equivalent of
// a toast
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console notifier writing to w
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(_ context.Context, n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := "[ok]"
	if n.Kind == KindError {
		prefix = "[error]"
	}
	fmt.Fprintf(c.w, "%s %s\n", prefix, n.Message)
}
