package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobview/cmd/jobview-server/container"
	"github.com/jobportal/jobview/cmd/jobview-server/handlers"
	"github.com/jobportal/jobview/cmd/jobview-server/middleware"
)

// RegisterJobRoutes registers the job detail routes; they all run inside the
// caller's session
func RegisterJobRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewJobHandler(c.Components.Logger)
	sessions := middleware.Sessions(c.Sessions, c.Components.Config.Session.IdleTTL)

	api := e.Group("/api/v1", sessions)
	{
		api.GET("/jobs/:id", h.GetJob)       // GET /api/v1/jobs/j1
		api.POST("/jobs/:id/apply", h.Apply) // POST /api/v1/jobs/j1/apply
		api.POST("/nav/back", h.Back)        // POST /api/v1/nav/back
	}
}

// RegisterNotificationRoutes registers the websocket notification stream
func RegisterNotificationRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewNotificationHandler(c.Hub, c.Components.Logger)
	e.GET("/ws", h.Stream)
}
