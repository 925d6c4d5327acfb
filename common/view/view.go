package view

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jobportal/jobview/common/clients"
	"github.com/jobportal/jobview/common/logger"
	"github.com/jobportal/jobview/common/metrics"
	"github.com/jobportal/jobview/common/models"
	"github.com/jobportal/jobview/common/nav"
	"github.com/jobportal/jobview/common/notify"
	"github.com/jobportal/jobview/common/state"
)

var (
	// ErrAlreadyApplied is returned by Apply when the user is already an
	// applicant; no request is made
	ErrAlreadyApplied = errors.New("already applied to this job")

	// ErrApplyInFlight is returned by Apply while an earlier apply for the
	// view is still pending
	ErrApplyInFlight = errors.New("apply already in progress")

	// ErrSuperseded is returned by a load whose result was discarded because
	// a newer load started
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrNoJob is returned by Apply before any job was activated
	ErrNoJob = errors.New("no job selected")
)

// GenericApplyError is shown when an apply fails without a server message
const GenericApplyError = "Something went wrong. Please try again."

// JobAPI is the backend the view reads from and writes to
type JobAPI interface {
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	Apply(ctx context.Context, jobID string) (*clients.ApplyResponse, error)
}

// JobState is the shared job/user state the view renders from
type JobState interface {
	Job() *models.Job
	ReplaceJob(job models.Job)
	UserID() string
}

// Deps are the collaborators of a JobDetailView
type Deps struct {
	State    JobState
	Jobs     JobAPI
	Notifier notify.Notifier
	History  *nav.History
	Logger   *logger.Logger
	Metrics  *metrics.ViewMetrics
}

type loadKey struct {
	jobID  string
	userID string
}

// JobDetailView shows one job and lets the current user apply to it
type JobDetailView struct {
	state    JobState
	jobs     JobAPI
	notifier notify.Notifier
	history  *nav.History
	log      *logger.Logger
	metrics  *metrics.ViewMetrics

	mu         sync.Mutex
	jobID      string
	requested  loadKey
	cancelLoad context.CancelFunc
	applying   bool

	// loadSeq identifies the newest load; older results are dropped
	loadSeq atomic.Uint64

	// commitMu serializes the check-then-write of results into state
	commitMu sync.Mutex
}

// New creates a view. Nil Notifier, History and Logger are replaced with
// no-op implementations.
func New(deps Deps) *JobDetailView {
	v := &JobDetailView{
		state:    deps.State,
		jobs:     deps.Jobs,
		notifier: deps.Notifier,
		history:  deps.History,
		log:      deps.Logger,
		metrics:  deps.Metrics,
	}
	if v.notifier == nil {
		v.notifier = notify.Multi{}
	}
	if v.history == nil {
		v.history = nav.NewHistory()
	}
	if v.log == nil {
		v.log = logger.Discard()
	}
	return v
}

// RouteFor returns the route of the detail page for jobID
func RouteFor(jobID string) string {
	return "/description/" + jobID
}

// JobID returns the job the view is showing
func (v *JobDetailView) JobID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.jobID
}

// HasApplied reports whether the current user is among the applicants of the
// job in shared state. It is recomputed on every call.
func (v *JobDetailView) HasApplied() bool {
	return state.HasApplied(v.state.Job(), v.state.UserID())
}

// Sync activates the view for jobID and loads it when the job or the current
// user differs from what was last requested. Re-activating with the same
// pair renders from shared state without a request.
func (v *JobDetailView) Sync(ctx context.Context, jobID string) error {
	v.history.Push(RouteFor(jobID))

	key := loadKey{jobID: jobID, userID: v.state.UserID()}

	v.mu.Lock()
	v.jobID = jobID
	unchanged := v.requested == key
	v.mu.Unlock()

	if unchanged {
		return nil
	}
	return v.Load(ctx, jobID)
}

// Load fetches jobID and installs it in shared state. Starting a load
// cancels the previous one; a result that arrives after a newer load has
// started is discarded. Failures are logged and leave state untouched.
func (v *JobDetailView) Load(ctx context.Context, jobID string) error {
	userID := v.state.UserID()
	key := loadKey{jobID: jobID, userID: userID}

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	v.mu.Lock()
	if v.cancelLoad != nil {
		v.cancelLoad()
	}
	seq := v.loadSeq.Add(1)
	v.cancelLoad = cancel
	v.jobID = jobID
	v.requested = key
	v.mu.Unlock()

	log := v.log.WithContext(ctx).WithJobID(jobID).WithUserID(userID)
	log.Debug("loading job")

	job, err := v.jobs.GetJob(clients.WithUserID(loadCtx, userID), jobID)

	v.commitMu.Lock()
	defer v.commitMu.Unlock()

	if seq != v.loadSeq.Load() {
		log.Debug("discarding superseded load", "seq", seq)
		v.metrics.LoadFinished(metrics.OutcomeSuperseded)
		return ErrSuperseded
	}

	v.mu.Lock()
	v.cancelLoad = nil
	if err != nil {
		// allow a later Sync with the same job and user to retry
		v.requested = loadKey{}
	}
	v.mu.Unlock()

	if err != nil {
		log.Error("failed to load job", "error", err)
		v.metrics.LoadFinished(metrics.OutcomeError)
		return fmt.Errorf("load job %s: %w", jobID, err)
	}

	v.state.ReplaceJob(*job)
	v.metrics.LoadFinished(metrics.OutcomeSuccess)

	log.Info("job loaded",
		"applications", len(job.Applications),
		"has_applied", state.HasApplied(job, userID))

	return nil
}

// Apply submits an application for the current user to the active job.
// It is a no-op returning ErrAlreadyApplied when the user already applied.
// Every request issued produces exactly one notification; shared state is
// only changed when the backend accepts the application.
func (v *JobDetailView) Apply(ctx context.Context) error {
	userID := v.state.UserID()

	v.mu.Lock()
	jobID := v.jobID
	switch {
	case jobID == "":
		v.mu.Unlock()
		return ErrNoJob
	case state.HasApplied(v.state.Job(), userID):
		v.mu.Unlock()
		v.metrics.ApplyFinished(metrics.OutcomeSkipped)
		return ErrAlreadyApplied
	case v.applying:
		v.mu.Unlock()
		v.metrics.ApplyFinished(metrics.OutcomeSkipped)
		return ErrApplyInFlight
	}
	// disables the action before the request goes out
	v.applying = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.applying = false
		v.mu.Unlock()
	}()

	log := v.log.WithContext(ctx).WithJobID(jobID).WithUserID(userID)

	resp, err := v.jobs.Apply(clients.WithUserID(ctx, userID), jobID)
	if err != nil {
		message := clients.ErrorMessage(err)
		if message == "" {
			message = GenericApplyError
		}
		log.Error("failed to apply to job", "error", err)
		v.notify(ctx, notify.Error(message), jobID, userID)
		v.metrics.ApplyFinished(metrics.OutcomeError)
		return fmt.Errorf("apply to job %s: %w", jobID, err)
	}

	v.appendApplicant(log, jobID, userID)

	v.notify(ctx, notify.Success(resp.Message), jobID, userID)
	v.metrics.ApplyFinished(metrics.OutcomeSuccess)
	return nil
}

// appendApplicant installs a snapshot of the current job with the user added
// as an applicant
func (v *JobDetailView) appendApplicant(log *logger.Logger, jobID, userID string) {
	v.commitMu.Lock()
	defer v.commitMu.Unlock()

	current := v.state.Job()
	if current == nil || current.ID != jobID {
		log.Warn("shared job changed during apply, skipping local update")
		return
	}

	next, err := state.WithApplicant(*current, userID)
	if err != nil {
		log.Error("failed to build applied snapshot", "error", err)
		return
	}
	v.state.ReplaceJob(next)
}

// Back returns the previous route without reloading anything
func (v *JobDetailView) Back() (string, bool) {
	return v.history.Back()
}

func (v *JobDetailView) notify(ctx context.Context, n notify.Notification, jobID, userID string) {
	n.JobID = jobID
	n.UserID = userID
	v.notifier.Notify(ctx, n)
}

func (v *JobDetailView) isApplying() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.applying
}
