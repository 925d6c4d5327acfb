package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobportal/jobview/cmd/jobview-server/container"
	"github.com/jobportal/jobview/common/backendtest"
	"github.com/jobportal/jobview/common/bootstrap"
	"github.com/jobportal/jobview/common/config"
	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/models"
	"github.com/jobportal/jobview/common/notify"
	"github.com/jobportal/jobview/common/view"
)

type testEnv struct {
	backend   *backendtest.Backend
	container *container.Container
	server    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := backendtest.New(
		models.Job{ID: "j1", Title: "Backend Engineer", Position: 2, JobType: "Full Time", Salary: 12, Location: "Remote", ExperienceLevel: 3},
		models.Job{ID: "j2", Title: "Frontend Engineer", Position: 1},
	)
	t.Cleanup(backend.Close)

	cfg := &config.Config{
		Service: config.ServiceConfig{Name: serviceName, LogLevel: "error", LogFormat: "json"},
		API:     backend.APIConfig(),
		Session: config.SessionConfig{IdleTTL: time.Minute},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	components, err := bootstrap.Setup(ctx, serviceName,
		bootstrap.WithCustomConfig(cfg),
		bootstrap.WithCustomLogger(logger.Discard()),
		bootstrap.WithoutRedis(),
	)
	require.NoError(t, err)

	c := container.NewContainer(components)
	go c.Hub.Run(ctx)

	srv := httptest.NewServer(newEcho(c))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		components.Shutdown(context.Background())
	})

	return &testEnv{backend: backend, container: c, server: srv}
}

// client returns an HTTP client with its own session cookie jar
func (env *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func (env *testEnv) do(t *testing.T, client *http.Client, method, path, userID string) (int, map[string]json.RawMessage) {
	t.Helper()

	req, err := http.NewRequest(method, env.server.URL+path, nil)
	require.NoError(t, err)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]json.RawMessage
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &body))
	}
	return resp.StatusCode, body
}

func decodeModel(t *testing.T, raw json.RawMessage) view.Model {
	t.Helper()
	var m view.Model
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func decodeModelBody(t *testing.T, body map[string]json.RawMessage) view.Model {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return decodeModel(t, raw)
}

func errorOf(t *testing.T, body map[string]json.RawMessage) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(body["error"], &msg))
	return msg
}

func TestGetJob_RendersAndCachesPerSession(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t)

	status, body := env.do(t, client, http.MethodGet, "/api/v1/jobs/j1", "u1")
	require.Equal(t, http.StatusOK, status)

	m := decodeModelBody(t, body)
	assert.True(t, m.Loaded)
	assert.Equal(t, "Backend Engineer", m.Title)
	assert.Equal(t, "2 Positions", m.Positions)
	assert.Equal(t, "12 LPA", m.Salary)
	assert.Equal(t, "3 yrs", m.Experience)
	assert.False(t, m.HasApplied)
	assert.Equal(t, view.Action{Label: view.LabelApply, Enabled: true}, m.Action)

	// same job and user: rendered from session state
	status, _ = env.do(t, client, http.MethodGet, "/api/v1/jobs/j1", "u1")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, env.backend.CountCalls("get"))

	// forced refresh
	status, _ = env.do(t, client, http.MethodGet, "/api/v1/jobs/j1?refresh=1", "u1")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, env.backend.CountCalls("get"))

	// another client has its own session
	status, _ = env.do(t, env.client(t), http.MethodGet, "/api/v1/jobs/j1", "u1")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, env.backend.CountCalls("get"))
}

func TestGetJob_NotFoundIsNotShown(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(t, env.client(t), http.MethodGet, "/api/v1/jobs/missing", "u1")
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "error")

	m := decodeModelBody(t, body)
	assert.False(t, m.Loaded)
	assert.Equal(t, 1, env.backend.CountCalls("get"))
}

func TestGetJob_LoadFailureKeepsPriorSnapshot(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t)

	status, _ := env.do(t, client, http.MethodGet, "/api/v1/jobs/j1", "u1")
	require.Equal(t, http.StatusOK, status)

	env.backend.GetHook = func(jobID string) (int, string) {
		if jobID == "j2" {
			return http.StatusInternalServerError, "db down"
		}
		return 0, ""
	}

	status, body := env.do(t, client, http.MethodGet, "/api/v1/jobs/j2", "u1")
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "error")

	m := decodeModelBody(t, body)
	assert.True(t, m.Loaded)
	assert.Equal(t, "j1", m.JobID)
	assert.Equal(t, "Backend Engineer", m.Title)
	assert.Equal(t, 2, env.backend.CountCalls("get"))
}

func TestApply_FlowAndIdempotence(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t)

	status, _ := env.do(t, client, http.MethodGet, "/api/v1/jobs/j1", "u1")
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, client, http.MethodPost, "/api/v1/jobs/j1/apply", "u1")
	require.Equal(t, http.StatusOK, status)

	m := decodeModel(t, body["view"])
	assert.True(t, m.HasApplied)
	assert.Equal(t, 1, m.Applicants)
	assert.Equal(t, view.Action{Label: view.LabelAlreadyApplied, Enabled: false}, m.Action)

	status, body = env.do(t, client, http.MethodPost, "/api/v1/jobs/j1/apply", "u1")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, view.ErrAlreadyApplied.Error(), errorOf(t, body))

	assert.Equal(t, 1, env.backend.CountCalls("apply"))
}

func TestApply_DeepLinkLoadsFirst(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, env.client(t), http.MethodPost, "/api/v1/jobs/j2/apply", "u1")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 1, env.backend.CountCalls("get"))
	assert.Equal(t, 1, env.backend.CountCalls("apply"))
}

func TestApply_RequiresUser(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, env.client(t), http.MethodPost, "/api/v1/jobs/j1/apply", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 0, env.backend.CountCalls("apply"))
}

func TestApply_ServerRejection(t *testing.T) {
	env := newTestEnv(t)
	env.backend.ApplyHook = func(jobID, userID string) (int, string) {
		return http.StatusBadRequest, "Applications are closed"
	}
	client := env.client(t)

	status, body := env.do(t, client, http.MethodPost, "/api/v1/jobs/j1/apply", "u1")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Applications are closed", errorOf(t, body))

	status, body = env.do(t, client, http.MethodGet, "/api/v1/jobs/j1", "u1")
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decodeModelBody(t, body).HasApplied)
}

func TestBack_ReturnsPreviousRouteWithoutFetch(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t)

	status, body := env.do(t, client, http.MethodPost, "/api/v1/nav/back", "u1")
	assert.Equal(t, http.StatusConflict, status)
	assert.NotEmpty(t, errorOf(t, body))

	env.do(t, client, http.MethodGet, "/api/v1/jobs/j1", "u1")
	env.do(t, client, http.MethodGet, "/api/v1/jobs/j2", "u1")
	gets := env.backend.CountCalls("get")

	status, body = env.do(t, client, http.MethodPost, "/api/v1/nav/back", "u1")
	require.Equal(t, http.StatusOK, status)

	var route string
	require.NoError(t, json.Unmarshal(body["route"], &route))
	assert.Equal(t, view.RouteFor("j1"), route)
	assert.Equal(t, gets, env.backend.CountCalls("get"))
}

func TestWebSocket_ReceivesApplyToast(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/ws?user_id=u1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.container.Hub.GetConnectionCount() == 1 },
		2*time.Second, 10*time.Millisecond)

	status, _ := env.do(t, env.client(t), http.MethodPost, "/api/v1/jobs/j1/apply", "u1")
	require.Equal(t, http.StatusOK, status)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var n notify.Notification
	require.NoError(t, json.Unmarshal(data, &n))
	assert.Equal(t, notify.KindSuccess, n.Kind)
	assert.Equal(t, backendtest.AppliedMessage, n.Message)
	assert.Equal(t, "j1", n.JobID)
}

func TestWebSocket_RequiresUser(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	client := env.client(t)

	status, body := env.do(t, client, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"healthy"`, string(body["status"]))

	env.do(t, client, http.MethodGet, "/api/v1/jobs/j1", "u1")

	resp, err := client.Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `jobview_job_loads_total{outcome="success"} 1`)
}
