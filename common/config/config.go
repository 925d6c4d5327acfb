package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration
type Config struct {
	Service ServiceConfig
	API     APIConfig
	Redis   RedisConfig
	Session SessionConfig
	Metrics MetricsConfig
}

// ServiceConfig holds service-specific settings
type ServiceConfig struct {
	Name        string
	Port        int
	Environment string
	LogLevel    string
	LogFormat   string
}

// APIConfig holds the job board backend settings
type APIConfig struct {
	// Base of the job routes, e.g. http://localhost:8000/api/v1/job
	JobEndpoint string
	// Base of the application routes, e.g. http://localhost:8000/api/v1/application
	ApplicationEndpoint string

	Timeout time.Duration

	// HTTP verb used for the apply call. The backend historically
	// registers it as GET.
	ApplyMethod string

	// Session cookie sent with every request
	AuthCookieName string
	AuthToken      string
}

// RedisConfig holds the notification bus settings
type RedisConfig struct {
	Enabled       bool
	Host          string
	Port          int
	Password      string
	DB            int
	ChannelPrefix string
}

// SessionConfig controls per-user view sessions in the server
type SessionConfig struct {
	IdleTTL time.Duration
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// LoadEnvFile loads key=value pairs from path into the process environment.
// A missing file is not an error; variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:        serviceName,
			Port:        getEnvInt("PORT", 8090),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
		},
		API: APIConfig{
			JobEndpoint:         getEnv("JOB_API_END_POINT", "http://localhost:8000/api/v1/job"),
			ApplicationEndpoint: getEnv("APPLICATION_API_END_POINT", "http://localhost:8000/api/v1/application"),
			Timeout:             getEnvDuration("API_TIMEOUT", 15*time.Second),
			ApplyMethod:         strings.ToUpper(getEnv("APPLY_METHOD", http.MethodGet)),
			AuthCookieName:      getEnv("AUTH_COOKIE_NAME", "token"),
			AuthToken:           getEnv("AUTH_TOKEN", ""),
		},
		Redis: RedisConfig{
			Enabled:       getEnvBool("REDIS_ENABLED", false),
			Host:          getEnv("REDIS_HOST", "localhost"),
			Port:          getEnvInt("REDIS_PORT", 6379),
			Password:      getEnv("REDIS_PASSWORD", ""),
			DB:            getEnvInt("REDIS_DB", 0),
			ChannelPrefix: getEnv("REDIS_CHANNEL_PREFIX", "jobview:notifications"),
		},
		Session: SessionConfig{
			IdleTTL: getEnvDuration("SESSION_IDLE_TTL", 30*time.Minute),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Service.Port)
	}

	if err := validateEndpoint("JOB_API_END_POINT", c.API.JobEndpoint); err != nil {
		return err
	}
	if err := validateEndpoint("APPLICATION_API_END_POINT", c.API.ApplicationEndpoint); err != nil {
		return err
	}

	switch c.API.ApplyMethod {
	case http.MethodGet, http.MethodPost:
	default:
		return fmt.Errorf("unsupported apply method: %s", c.API.ApplyMethod)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive")
	}

	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("session idle ttl must be positive")
	}

	return nil
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func validateEndpoint(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", name)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
