package notify

import (
	"context"

	"github.com/jobportal/jobview/common/logger"
)

// LogNotifier records notifications in the service log
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a notifier backed by log
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) {
	l.log.InfoContext(ctx, "notification",
		"notification_id", n.ID,
		"kind", n.Kind,
		"message", n.Message,
		"job_id", n.JobID,
		"user_id", n.UserID,
	)
}
