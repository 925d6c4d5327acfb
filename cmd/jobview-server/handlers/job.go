package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobview/cmd/jobview-server/middleware"
	"github.com/jobportal/jobview/common/clients"
	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/view"
)

// JobHandler serves the job detail view of the caller's session
type JobHandler struct {
	log *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(log *logger.Logger) *JobHandler {
	return &JobHandler{log: log}
}

// GetJob activates the detail view for a job and returns its model.
// ?refresh=1 forces a reload even when the job is already showing.
// A failed load is logged only; the response carries whatever the session
// already shows.
// GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c echo.Context) error {
	sess := middleware.GetSession(c)
	jobID := c.Param("id")
	ctx := c.Request().Context()

	var err error
	if c.QueryParam("refresh") == "1" {
		sess.History.Push(view.RouteFor(jobID))
		err = sess.View.Load(ctx, jobID)
	} else {
		err = sess.View.Sync(ctx, jobID)
	}
	if err != nil {
		h.log.WithContext(ctx).Warn("job load failed, keeping current view",
			"job_id", jobID,
			"error", err)
	}

	return c.JSON(http.StatusOK, sess.View.Render())
}

// Apply applies the caller to a job
// POST /api/v1/jobs/:id/apply
func (h *JobHandler) Apply(c echo.Context) error {
	if userID, err := middleware.RequireUser(c); userID == "" {
		return err
	}

	sess := middleware.GetSession(c)
	jobID := c.Param("id")
	ctx := c.Request().Context()

	// applying from a deep link activates the job first
	if sess.View.JobID() != jobID || sess.Store.Job() == nil {
		if err := sess.View.Sync(ctx, jobID); err != nil {
			return h.applyError(c, err)
		}
	}

	err := sess.View.Apply(ctx)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "applied",
			"view":   sess.View.Render(),
		})
	case errors.Is(err, view.ErrAlreadyApplied):
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
			"view":  sess.View.Render(),
		})
	case errors.Is(err, view.ErrApplyInFlight):
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
		})
	case errors.Is(err, view.ErrNoJob):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	default:
		return h.applyError(c, err)
	}
}

// Back navigates to the previous route without reloading
// POST /api/v1/nav/back
func (h *JobHandler) Back(c echo.Context) error {
	sess := middleware.GetSession(c)

	route, ok := sess.View.Back()
	if !ok {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": "no previous page",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"route":       route,
		"can_go_back": sess.History.CanGoBack(),
	})
}

// applyError maps a failed apply onto a response. Client errors reported by
// the backend keep their status and message.
func (h *JobHandler) applyError(c echo.Context, err error) error {
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		message := apiErr.Message
		if message == "" {
			message = http.StatusText(apiErr.StatusCode)
		}
		return c.JSON(apiErr.StatusCode, map[string]interface{}{
			"error": message,
		})
	}

	if errors.Is(err, view.ErrSuperseded) {
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error": err.Error(),
		})
	}

	h.log.WithContext(c.Request().Context()).Error("apply request failed", "error", err)

	message := clients.ErrorMessage(err)
	if message == "" {
		message = view.GenericApplyError
	}
	return c.JSON(http.StatusBadGateway, map[string]interface{}{
		"error": message,
	})
}
