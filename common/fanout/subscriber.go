package fanout

import (
	"context"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jobportal/jobview/common/logger"
)

// PatternSubscriber opens a pattern subscription on the bus
type PatternSubscriber interface {
	PSubscribe(ctx context.Context, pattern string) (*goredis.PubSub, error)
}

// RedisSubscriber listens to Redis PubSub and forwards notifications to the Hub
type RedisSubscriber struct {
	redis  PatternSubscriber
	hub    *Hub
	prefix string
	log    *logger.Logger
}

// NewRedisSubscriber creates a subscriber for channels {prefix}:{user_id}
func NewRedisSubscriber(redisClient PatternSubscriber, hub *Hub, prefix string, log *logger.Logger) *RedisSubscriber {
	return &RedisSubscriber{
		redis:  redisClient,
		hub:    hub,
		prefix: prefix,
		log:    log,
	}
}

// Pattern is the channel pattern the subscriber listens on
func (s *RedisSubscriber) Pattern() string {
	return s.prefix + ":*"
}

// Start listens until ctx is done. It returns an error only when the
// subscription cannot be established.
func (s *RedisSubscriber) Start(ctx context.Context) error {
	pubsub, err := s.redis.PSubscribe(ctx, s.Pattern())
	if err != nil {
		return err
	}
	defer pubsub.Close()

	s.log.Info("redis subscriber started", "pattern", s.Pattern())

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("redis subscriber stopping")
			return nil

		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if msg == nil {
				continue
			}
			s.forward(msg.Channel, msg.Payload)
		}
	}
}

func (s *RedisSubscriber) forward(channel, payload string) {
	userID := s.userFromChannel(channel)
	if userID == "" {
		s.log.Warn("invalid notification channel", "channel", channel)
		return
	}

	s.log.Debug("received notification", "user_id", userID, "size", len(payload))
	s.hub.Publish(userID, []byte(payload))
}

// userFromChannel extracts the user id
// Example: "jobview:notifications:u1" → "u1"
func (s *RedisSubscriber) userFromChannel(channel string) string {
	userID, ok := strings.CutPrefix(channel, s.prefix+":")
	if !ok {
		return ""
	}
	return userID
}
