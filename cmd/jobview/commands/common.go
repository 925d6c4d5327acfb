package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/jobportal/jobview/common/bootstrap"
	"github.com/jobportal/jobview/common/config"
	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/models"
	"github.com/jobportal/jobview/common/nav"
	"github.com/jobportal/jobview/common/notify"
	"github.com/jobportal/jobview/common/state"
	"github.com/jobportal/jobview/common/view"
)

const serviceName = "jobview"

// AppContext holds what a command needs: the shared components and a detail
// view wired to print toasts on the terminal
type AppContext struct {
	Components *bootstrap.Components
	Store      *state.Store
	View       *view.JobDetailView
	Out        io.Writer
}

// NewAppContext loads configuration from envFile and the environment and
// builds a view for userID. Logs go to the command's error writer so the
// rendered page on stdout stays clean.
func NewAppContext(ctx context.Context, cmd *cli.Command, envFile, userID string) (*AppContext, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	root := cmd.Root()
	log := logger.NewWithWriter(root.ErrWriter, cfg.Service.LogLevel, cfg.Service.LogFormat)

	components, err := bootstrap.Setup(ctx, serviceName,
		bootstrap.WithCustomConfig(cfg),
		bootstrap.WithCustomLogger(log),
		bootstrap.WithoutMetrics(),
	)
	if err != nil {
		return nil, err
	}

	notifiers := notify.Multi{notify.NewConsole(root.Writer)}
	if components.Redis != nil {
		// web sessions of the same user see the toast too
		notifiers = append(notifiers, notify.NewRedisPublisher(components.Redis, cfg.Redis.ChannelPrefix, log))
	}

	store := state.NewStore()
	if userID != "" {
		store.SetUser(&models.User{ID: userID})
	}

	return &AppContext{
		Components: components,
		Store:      store,
		View: view.New(view.Deps{
			State:    store,
			Jobs:     components.Jobs,
			Notifier: notifiers,
			History:  nav.NewHistory(),
			Logger:   log,
		}),
		Out: root.Writer,
	}, nil
}

// Close releases the components
func (ac *AppContext) Close(ctx context.Context) {
	ac.Components.Shutdown(ctx)
}

// Print renders the current page
func (ac *AppContext) Print() error {
	return view.WriteText(ac.Out, ac.View.Render())
}
