package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobview/common/clients"
	"github.com/jobportal/jobview/common/logger"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for storing the signed-in user
	UserIDKey ContextKey = "user_id"

	// UserHeader carries the user id of the caller
	UserHeader = "X-User-ID"
)

// ExtractUser is a middleware that extracts the X-User-ID header and stores
// it in the echo context. An empty header means a signed-out visitor.
//
// Usage:
//
//	e := echo.New()
//	e.Use(middleware.ExtractUser())
func ExtractUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID := c.Request().Header.Get(UserHeader); userID != "" {
				c.Set(string(UserIDKey), userID)
			}
			return next(c)
		}
	}
}

// GetUserID retrieves the user id from the echo context
// Returns empty string if not set
func GetUserID(c echo.Context) string {
	userID, _ := c.Get(string(UserIDKey)).(string)
	return userID
}

// RequireUser ensures a user id exists in context
// Returns an error response if not found
func RequireUser(c echo.Context) (string, error) {
	userID := GetUserID(c)
	if userID == "" {
		err := c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error": "authentication required (X-User-ID header missing)",
		})
		return "", err
	}
	return userID, nil
}

// PropagateRequestID copies the request id assigned by echo's RequestID
// middleware into the request context, where the logger and the backend
// client pick it up
func PropagateRequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if requestID != "" {
				ctx := context.WithValue(c.Request().Context(), logger.RequestIDKey, requestID)
				ctx = clients.WithRequestID(ctx, requestID)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}
