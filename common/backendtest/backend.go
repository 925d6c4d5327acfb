// Package backendtest provides an in-process stand-in for the job board
// backend. It serves the job and application routes the view consumes and
// records what it was asked.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobview/common/config"
	"github.com/jobportal/jobview/common/models"
)

const (
	AppliedMessage        = "Job applied successfully."
	AlreadyAppliedMessage = "You have already applied for this jobs"
	NotFoundMessage       = "Job not found."
	UnauthorizedMessage   = "User not authenticated"
)

// Call is one request received by the backend
type Call struct {
	Method    string
	Path      string
	JobID     string
	UserID    string
	RequestID string
	Cookie    string
}

// Backend is an echo server mimicking the job board API
type Backend struct {
	mu    sync.Mutex
	jobs  map[string]models.Job
	calls []Call

	// GetHook runs before a job is served; tests use it to delay or fail
	// individual loads. A non-nil error response short-circuits the route.
	GetHook func(jobID string) (status int, message string)

	// ApplyHook overrides the default apply behavior when set
	ApplyHook func(jobID, userID string) (status int, message string)

	server *httptest.Server
}

// New starts a backend seeded with jobs. It is closed with t.Cleanup by the
// caller via Close.
func New(jobs ...models.Job) *Backend {
	b := &Backend{
		jobs: make(map[string]models.Job),
	}
	for _, job := range jobs {
		b.jobs[job.ID] = job.Clone()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/api/v1/job/get/:id", b.handleGetJob)
	e.Match([]string{http.MethodGet, http.MethodPost}, "/api/v1/application/apply/:id", b.handleApply)

	b.server = httptest.NewServer(e)
	return b
}

// Close shuts the server down
func (b *Backend) Close() {
	b.server.Close()
}

// URL returns the server base URL
func (b *Backend) URL() string {
	return b.server.URL
}

// APIConfig returns client settings pointing at this backend
func (b *Backend) APIConfig() config.APIConfig {
	return config.APIConfig{
		JobEndpoint:         b.server.URL + "/api/v1/job",
		ApplicationEndpoint: b.server.URL + "/api/v1/application",
		Timeout:             5 * time.Second,
		ApplyMethod:         http.MethodGet,
		AuthCookieName:      "token",
	}
}

// PutJob stores or replaces a job
func (b *Backend) PutJob(job models.Job) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs[job.ID] = job.Clone()
}

// Job returns the stored job
func (b *Backend) Job(jobID string) (models.Job, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	job, ok := b.jobs[jobID]
	return job.Clone(), ok
}

// Calls returns a copy of every request received
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CountCalls counts requests whose path matched the given route kind
// ("get" or "apply")
func (b *Backend) CountCalls(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if routeKind(c.Path) == kind {
			n++
		}
	}
	return n
}

func (b *Backend) record(c echo.Context) Call {
	req := c.Request()
	call := Call{
		Method:    req.Method,
		Path:      req.URL.Path,
		JobID:     c.Param("id"),
		UserID:    req.Header.Get("X-User-ID"),
		RequestID: req.Header.Get("X-Request-ID"),
	}
	if cookie, err := req.Cookie("token"); err == nil {
		call.Cookie = cookie.Value
	}

	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
	return call
}

func (b *Backend) handleGetJob(c echo.Context) error {
	call := b.record(c)

	if b.GetHook != nil {
		if status, message := b.GetHook(call.JobID); status != 0 {
			return c.JSON(status, map[string]interface{}{"success": false, "message": message})
		}
	}

	job, ok := b.Job(call.JobID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"success": false,
			"message": NotFoundMessage,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     job,
	})
}

func (b *Backend) handleApply(c echo.Context) error {
	call := b.record(c)

	status, message := b.apply(call.JobID, call.UserID)
	return c.JSON(status, map[string]interface{}{
		"success": status == http.StatusCreated || status == http.StatusOK,
		"message": message,
	})
}

func (b *Backend) apply(jobID, userID string) (int, string) {
	if b.ApplyHook != nil {
		return b.ApplyHook(jobID, userID)
	}

	if userID == "" {
		return http.StatusUnauthorized, UnauthorizedMessage
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	job, ok := b.jobs[jobID]
	if !ok {
		return http.StatusNotFound, NotFoundMessage
	}
	for _, app := range job.Applications {
		if app.Applicant == userID {
			return http.StatusBadRequest, AlreadyAppliedMessage
		}
	}

	job.Applications = append(job.Applications, models.Application{Applicant: userID})
	b.jobs[jobID] = job
	return http.StatusCreated, AppliedMessage
}

func routeKind(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/v1/job/get/"):
		return "get"
	case strings.HasPrefix(path, "/api/v1/application/apply/"):
		return "apply"
	default:
		return ""
	}
}
