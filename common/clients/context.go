package clients

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// UserIDKey is the context key for user ID (for X-User-ID header)
	UserIDKey contextKey = "user-id"

	// RequestIDKey is the context key for request ID (for X-Request-ID header)
	RequestIDKey contextKey = "request-id"
)

// WithUserID adds a user ID to the context
// This will be automatically extracted and added as X-User-ID header in HTTP requests
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID retrieves the user ID from context
// Returns the user ID and true if found, empty string and false otherwise
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// WithRequestID pins the X-Request-ID sent with outbound requests
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(RequestIDKey).(string)
	return requestID, ok && requestID != ""
}
