package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jobportal/jobview/common/clients"
	"github.com/jobportal/jobview/common/config"
	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/metrics"
	"github.com/jobportal/jobview/common/redis"
)

// Setup initializes all service components
// This is the main entry point for all binaries
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Backend client
	components.Jobs, err = clients.NewJobClient(components.Config.API, components.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create job client: %w", err)
	}

	// 4. Metrics (if enabled)
	if !options.skipMetrics && components.Config.Metrics.Enabled {
		components.Registry = prometheus.NewRegistry()
		components.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		components.Metrics = metrics.NewViewMetrics(components.Registry)
	}

	// 5. Redis notification bus (if enabled)
	if !options.skipRedis && components.Config.Redis.Enabled {
		components.Logger.Info("connecting to redis", "addr", components.Config.RedisAddr())
		components.Redis, err = redis.Dial(ctx, redis.Options{
			Addr:     components.Config.RedisAddr(),
			Password: components.Config.Redis.Password,
			DB:       components.Config.Redis.DB,
		}, components.Logger)
		if err != nil {
			components.Shutdown(ctx) // Cleanup what we've initialized
			return nil, err
		}

		components.addCleanup(func() error {
			components.Logger.Info("closing redis connection")
			return components.Redis.Close()
		})
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"redis", components.Redis != nil,
		"metrics", components.Metrics != nil,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}
