package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jobportal/jobview/common/clients"
	"github.com/jobportal/jobview/common/config"
	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/metrics"
	"github.com/jobportal/jobview/common/redis"
)

// Components holds all initialized service dependencies
type Components struct {
	Config   *config.Config
	Logger   *logger.Logger
	Jobs     *clients.JobClient
	Redis    *redis.Client
	Registry *prometheus.Registry
	Metrics  *metrics.ViewMetrics

	// Internal
	cleanupFuncs []func() error
}

// Shutdown performs graceful shutdown of all components
// Should be called with defer after Setup()
func (c *Components) Shutdown(ctx context.Context) error {
	c.Logger.Info("shutting down components")

	var errors []error

	// Run cleanup functions in reverse order (LIFO)
	for i := len(c.cleanupFuncs) - 1; i >= 0; i-- {
		if err := c.cleanupFuncs[i](); err != nil {
			errors = append(errors, err)
			c.Logger.Error("cleanup error", "error", err)
		}
	}
	c.cleanupFuncs = nil

	if len(errors) > 0 {
		return fmt.Errorf("shutdown errors: %v", errors)
	}

	c.Logger.Info("shutdown complete")
	return nil
}

// Health checks health of all components
func (c *Components) Health(ctx context.Context) error {
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			return fmt.Errorf("redis unhealthy: %w", err)
		}
	}
	return nil
}

// AddCleanup registers a cleanup function run by Shutdown
func (c *Components) AddCleanup(fn func() error) {
	c.addCleanup(fn)
}

func (c *Components) addCleanup(fn func() error) {
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}
