package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jobportal/jobview/cmd/jobview-server/container"
	"github.com/jobportal/jobview/cmd/jobview-server/middleware"
	"github.com/jobportal/jobview/cmd/jobview-server/routes"
	"github.com/jobportal/jobview/common/bootstrap"
	"github.com/jobportal/jobview/common/config"
	"github.com/jobportal/jobview/common/server"
)

const serviceName = "jobview-server"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := config.LoadEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read .env: %v\n", err)
		os.Exit(1)
	}

	// Bootstrap common components (config, logger, backend client, redis, metrics)
	components, err := bootstrap.Setup(ctx, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap %s: %v\n", serviceName, err)
		os.Exit(1)
	}
	defer components.Shutdown(context.Background())

	// Initialize service container (singleton pattern - all services created once)
	c := container.NewContainer(components)

	e := newEcho(c)

	if err := run(ctx, e, c); err != nil {
		components.Logger.Error("server error", "error", err)
		components.Shutdown(context.Background())
		os.Exit(1)
	}
}

// newEcho builds the HTTP surface of the service
func newEcho(c *container.Container) *echo.Echo {
	e := setupEcho()
	setupMiddleware(e)
	setupHealthCheck(e, c.Components)
	setupMetrics(e, c.Components)
	registerRoutes(e, c)
	return e
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestID())
	e.Use(middleware.PropagateRequestID())
	e.Use(middleware.ExtractUser())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, components *bootstrap.Components) {
	e.GET("/health", echo.WrapHandler(server.HealthHandler(components.Health)))
}

// setupMetrics exposes the prometheus registry when metrics are enabled
func setupMetrics(e *echo.Echo, components *bootstrap.Components) {
	if components.Registry == nil {
		return
	}
	handler := promhttp.HandlerFor(components.Registry, promhttp.HandlerOpts{})
	e.GET(components.Config.Metrics.Path, echo.WrapHandler(handler))
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, c *container.Container) {
	routes.RegisterJobRoutes(e, c)
	routes.RegisterNotificationRoutes(e, c)
}

// run serves HTTP, the notification hub and the redis subscriber until ctx is
// done or one of them fails
func run(ctx context.Context, e *echo.Echo, c *container.Container) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.Hub.Run(gctx)
		return nil
	})

	if c.Subscriber != nil {
		g.Go(func() error {
			return c.Subscriber.Start(gctx)
		})
	}

	srv := server.New(serviceName, c.Components.Config.Service.Port, e, c.Components.Logger)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	return g.Wait()
}
