package notify

import (
	"context"
	"encoding/json"

	"github.com/jobportal/jobview/common/logger"
)

// Publisher publishes a message on a pub/sub channel
type Publisher interface {
	PublishEvent(ctx context.Context, channel string, message string) error
}

// RedisPublisher publishes notifications on a per-user channel:
// {prefix}:{user_id}. The fanout subscriber relays them to websocket clients.
type RedisPublisher struct {
	pub    Publisher
	prefix string
	log    *logger.Logger
}

// NewRedisPublisher creates a publishing notifier
func NewRedisPublisher(pub Publisher, prefix string, log *logger.Logger) *RedisPublisher {
	return &RedisPublisher{
		pub:    pub,
		prefix: prefix,
		log:    log,
	}
}

// Channel returns the channel used for userID
func (p *RedisPublisher) Channel(userID string) string {
	return ChannelFor(p.prefix, userID)
}

// ChannelFor builds the notification channel name for a user
func ChannelFor(prefix, userID string) string {
	return prefix + ":" + userID
}

func (p *RedisPublisher) Notify(ctx context.Context, n Notification) {
	if n.UserID == "" {
		// Nobody can be subscribed to an anonymous channel
		p.log.Debug("dropping notification without user", "notification_id", n.ID)
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		p.log.Error("failed to marshal notification", "notification_id", n.ID, "error", err)
		return
	}

	if err := p.pub.PublishEvent(ctx, p.Channel(n.UserID), string(payload)); err != nil {
		p.log.Error("failed to publish notification",
			"notification_id", n.ID,
			"user_id", n.UserID,
			"error", err)
	}
}
