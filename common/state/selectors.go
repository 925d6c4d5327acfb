package state

import (
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/samber/lo"

	"github.com/jobportal/jobview/common/models"
)

// HasApplied reports whether userID appears among the job's applicants.
// An empty userID (unauthenticated) never matches.
func HasApplied(job *models.Job, userID string) bool {
	if job == nil || userID == "" {
		return false
	}
	return lo.ContainsBy(job.Applications, func(app models.Application) bool {
		return app.Applicant == userID
	})
}

// WithApplicant returns a new snapshot of job with an application for
// userID appended. job itself is left untouched.
func WithApplicant(job models.Job, userID string) (models.Job, error) {
	// A nil slice marshals to null, which the add operation cannot append to
	if job.Applications == nil {
		job.Applications = []models.Application{}
	}

	doc, err := json.Marshal(job)
	if err != nil {
		return models.Job{}, fmt.Errorf("marshal job snapshot: %w", err)
	}

	ops, err := json.Marshal([]map[string]interface{}{{
		"op":    "add",
		"path":  "/applications/-",
		"value": models.Application{Applicant: userID},
	}})
	if err != nil {
		return models.Job{}, fmt.Errorf("marshal patch: %w", err)
	}

	patch, err := jsonpatch.DecodePatch(ops)
	if err != nil {
		return models.Job{}, fmt.Errorf("decode patch: %w", err)
	}

	patched, err := patch.Apply(doc)
	if err != nil {
		return models.Job{}, fmt.Errorf("apply patch: %w", err)
	}

	var out models.Job
	if err := json.Unmarshal(patched, &out); err != nil {
		return models.Job{}, fmt.Errorf("unmarshal patched job: %w", err)
	}
	return out, nil
}
