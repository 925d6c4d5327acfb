package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Job is the job record served by the job API
// Maps to: GET {JOB_API}/get/:id -> job
type Job struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Number of open positions
	Position float64 `json:"position"`
	JobType  string  `json:"jobType"`

	// Salary in LPA (lakhs per annum)
	Salary   float64 `json:"salary"`
	Location string  `json:"location"`

	// Required experience in years; may be fractional
	ExperienceLevel float64 `json:"experienceLevel"`

	CreatedAt time.Time `json:"createdAt"`

	// Applications in arrival order
	Applications []Application `json:"applications"`
}

// Application references the applicant who applied to a job.
// Only the applicant id is known on the client side.
type Application struct {
	Applicant string `json:"applicant"`
}

// UnmarshalJSON accepts the applicant either as a bare id or as a populated
// user object carrying "_id".
func (a *Application) UnmarshalJSON(data []byte) error {
	var raw struct {
		Applicant json.RawMessage `json:"applicant"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.Applicant = ""
	ref := bytes.TrimSpace(raw.Applicant)
	if len(ref) == 0 || bytes.Equal(ref, []byte("null")) {
		return nil
	}

	if ref[0] == '"' {
		return json.Unmarshal(ref, &a.Applicant)
	}

	var populated struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(ref, &populated); err != nil {
		return fmt.Errorf("decode applicant: %w", err)
	}
	a.Applicant = populated.ID
	return nil
}

// Clone returns a deep copy of the job so that snapshots never share the
// applications slice.
func (j Job) Clone() Job {
	out := j
	if j.Applications != nil {
		out.Applications = make([]Application, len(j.Applications))
		copy(out.Applications, j.Applications)
	}
	return out
}

// ApplicantCount returns the number of applications received
func (j *Job) ApplicantCount() int {
	if j == nil {
		return 0
	}
	return len(j.Applications)
}

// PostedDate returns the date portion of CreatedAt, dropping time of day.
func (j *Job) PostedDate() string {
	if j == nil || j.CreatedAt.IsZero() {
		return ""
	}
	return j.CreatedAt.Format(time.DateOnly)
}
