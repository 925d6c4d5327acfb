package fanout

import (
	"context"
	"encoding/json"

	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/notify"
)

// Notifier delivers notifications straight to the hub. It is used when no
// redis bus is configured and the server runs as a single process.
type Notifier struct {
	hub *Hub
	log *logger.Logger
}

// NewNotifier creates a hub-backed notifier
func NewNotifier(hub *Hub, log *logger.Logger) *Notifier {
	return &Notifier{hub: hub, log: log}
}

func (n *Notifier) Notify(_ context.Context, note notify.Notification) {
	if note.UserID == "" {
		return
	}

	payload, err := json.Marshal(note)
	if err != nil {
		n.log.Error("failed to marshal notification", "notification_id", note.ID, "error", err)
		return
	}

	if !n.hub.Publish(note.UserID, payload) {
		n.log.Warn("hub stopped, notification dropped", "notification_id", note.ID)
	}
}
