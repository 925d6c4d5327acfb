package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"

	"github.com/google/uuid"
)

// Logger interface for HTTP client logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// HTTPClient wraps http.Client with context-aware helpers
// It automatically extracts metadata from context and adds appropriate headers
type HTTPClient struct {
	client     *http.Client
	logger     Logger
	authCookie *http.Cookie
}

// NewHTTPClient creates a new HTTP client wrapper.
// A cookie jar is attached when the client has none so that session cookies
// set by the backend are sent back on later requests.
func NewHTTPClient(client *http.Client, logger Logger) (*HTTPClient, error) {
	if client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		client.Jar = jar
	}

	return &HTTPClient{
		client: client,
		logger: logger,
	}, nil
}

// WithAuthCookie sends the given session cookie on every request
func (c *HTTPClient) WithAuthCookie(name, value string) *HTTPClient {
	if name != "" && value != "" {
		c.authCookie = &http.Cookie{Name: name, Value: value}
	}
	return c
}

// DoRequest creates and executes an HTTP request, extracting metadata from context
// This is the central method that handles context-to-header conversion
func (c *HTTPClient) DoRequest(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")

	if userID, ok := GetUserID(ctx); ok {
		req.Header.Set("X-User-ID", userID)
	}

	requestID, ok := GetRequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	if c.authCookie != nil {
		req.AddCookie(c.authCookie)
	}

	c.logger.Debug("outbound request", "method", method, "url", url, "request_id", requestID)

	return c.client.Do(req)
}
