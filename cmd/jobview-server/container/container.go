package container

import (
	"github.com/jobportal/jobview/common/bootstrap"
	"github.com/jobportal/jobview/common/clients"
	"github.com/jobportal/jobview/common/fanout"
	"github.com/jobportal/jobview/common/notify"
	"github.com/jobportal/jobview/common/session"
	"github.com/jobportal/jobview/common/view"
)

// Container holds all initialized services (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components

	// Notification delivery
	Hub        *fanout.Hub
	Subscriber *fanout.RedisSubscriber // nil without redis
	Notifier   notify.Notifier

	// Per-client views
	Sessions *session.Registry
}

// NewContainer initializes all services once. The hub is created but not
// started; the caller runs it.
func NewContainer(components *bootstrap.Components) *Container {
	log := components.Logger
	cfg := components.Config
	hub := fanout.NewHub(log)

	c := &Container{
		Components: components,
		Hub:        hub,
	}

	// Toasts reach websocket clients through redis when it is configured so
	// that every replica can deliver them; otherwise straight through the hub
	var delivery notify.Notifier
	if components.Redis != nil {
		delivery = notify.NewRedisPublisher(components.Redis, cfg.Redis.ChannelPrefix, log)
		c.Subscriber = fanout.NewRedisSubscriber(components.Redis, hub, cfg.Redis.ChannelPrefix, log)
	} else {
		delivery = fanout.NewNotifier(hub, log)
	}
	c.Notifier = notify.Multi{notify.NewLogNotifier(log), delivery}

	c.Sessions = session.NewRegistry(session.Shared{
		Jobs: components.Jobs,
		NewJobs: func() (view.JobAPI, error) {
			jobs, err := clients.NewJobClient(cfg.API, log)
			if err != nil {
				return nil, err
			}
			return jobs, nil
		},
		Notifier: c.Notifier,
		Logger:   log,
		Metrics:  components.Metrics,
	}, cfg.Session.IdleTTL, log)
	components.AddCleanup(c.Sessions.Close)

	return c
}
