package bootstrap

import (
	"github.com/jobportal/jobview/common/config"
	"github.com/jobportal/jobview/common/logger"
)

// Option configures the bootstrap process
type Option func(*options)

type options struct {
	skipRedis    bool
	skipMetrics  bool
	customLogger *logger.Logger
	customConfig *config.Config
}

// WithoutRedis skips the notification bus even when it is enabled in config
func WithoutRedis() Option {
	return func(o *options) {
		o.skipRedis = true
	}
}

// WithoutMetrics skips the prometheus registry
func WithoutMetrics() Option {
	return func(o *options) {
		o.skipMetrics = true
	}
}

// WithCustomLogger uses a custom logger instead of creating one
func WithCustomLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// WithCustomConfig uses a custom config instead of loading from env
func WithCustomConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

func defaultOptions() *options {
	return &options{}
}
