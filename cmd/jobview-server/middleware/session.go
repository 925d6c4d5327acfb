package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobview/common/session"
)

const (
	// SessionKey is the context key for the caller's session
	SessionKey ContextKey = "session"

	// SessionCookie names the cookie carrying the session id
	SessionCookie = "jobview_session"
)

// Sessions attaches the caller's session, creating one when the cookie is
// missing or its session expired, and re-issues the session cookie on every
// request. It must run after ExtractUser.
func Sessions(registry *session.Registry, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				id = cookie.Value
			}

			sess, _ := registry.GetOrCreate(id)

			// the cookie lives as long as the idle timeout, counted from
			// the latest request
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			sess.SetUser(GetUserID(c))
			c.Set(string(SessionKey), sess)
			return next(c)
		}
	}
}

// GetSession retrieves the session attached by Sessions
func GetSession(c echo.Context) *session.Session {
	sess, _ := c.Get(string(SessionKey)).(*session.Session)
	return sess
}
