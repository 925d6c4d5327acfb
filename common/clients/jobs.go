package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jobportal/jobview/common/config"
	"github.com/jobportal/jobview/common/models"
)

// JobClient talks to the job board backend: the job routes and the
// application routes
type JobClient struct {
	jobBase     string
	appBase     string
	applyMethod string
	http        *HTTPClient
	logger      Logger
}

// ApplyResponse is the body returned by the apply route
type ApplyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type jobResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Job     *models.Job `json:"job"`
}

// NewJobClient creates a client for the configured backend
func NewJobClient(cfg config.APIConfig, logger Logger) (*JobClient, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient, err := NewHTTPClient(&http.Client{Timeout: timeout}, logger)
	if err != nil {
		return nil, err
	}
	httpClient.WithAuthCookie(cfg.AuthCookieName, cfg.AuthToken)

	method := strings.ToUpper(cfg.ApplyMethod)
	if method == "" {
		method = http.MethodGet
	}

	return &JobClient{
		jobBase:     strings.TrimRight(cfg.JobEndpoint, "/"),
		appBase:     strings.TrimRight(cfg.ApplicationEndpoint, "/"),
		applyMethod: method,
		http:        httpClient,
		logger:      logger,
	}, nil
}

// GetJob fetches a job with its applications
// GET {JOB_API}/get/:id
func (c *JobClient) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	if jobID == "" {
		return nil, ErrMissingJobID
	}

	endpoint := fmt.Sprintf("%s/get/%s", c.jobBase, url.PathEscape(jobID))
	resp, err := c.http.DoRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, resp.Body)
	}

	var body jobResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode job response: %w", err)
	}

	if !body.Success || body.Job == nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	c.logger.Debug("fetched job",
		"job_id", body.Job.ID,
		"applications", len(body.Job.Applications))

	return body.Job, nil
}

// Apply submits an application for the current user to the job
// {APPLICATION_API}/apply/:id with the configured verb
func (c *JobClient) Apply(ctx context.Context, jobID string) (*ApplyResponse, error) {
	if jobID == "" {
		return nil, ErrMissingJobID
	}

	endpoint := fmt.Sprintf("%s/apply/%s", c.appBase, url.PathEscape(jobID))
	resp, err := c.http.DoRequest(ctx, c.applyMethod, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to apply to job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, resp.Body)
	}

	var body ApplyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode apply response: %w", err)
	}

	if !body.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	c.logger.Info("applied to job", "job_id", jobID)

	return &body, nil
}
