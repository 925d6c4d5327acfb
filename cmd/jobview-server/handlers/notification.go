package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobview/cmd/jobview-server/middleware"
	"github.com/jobportal/jobview/common/fanout"
	"github.com/jobportal/jobview/common/logger"
)

// NotificationHandler streams toasts to websocket clients
type NotificationHandler struct {
	hub *fanout.Hub
	log *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(hub *fanout.Hub, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{hub: hub, log: log}
}

// Stream upgrades to a websocket carrying the caller's notifications.
// The user may also be given as ?user_id= since browsers cannot set headers
// on websocket requests.
// GET /ws
func (h *NotificationHandler) Stream(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		userID = c.QueryParam("user_id")
	}
	if userID == "" {
		return c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error": "user_id is required",
		})
	}

	if err := h.hub.ServeWS(c.Response(), c.Request(), userID); err != nil {
		h.log.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		// the upgrader has already written the response
		return nil
	}
	return nil
}
