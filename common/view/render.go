package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/jobportal/jobview/common/state"
)

const (
	LabelApply          = "Apply Now"
	LabelAlreadyApplied = "Already Applied"
)

// Action is the apply control
type Action struct {
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}

// Model is everything the detail page displays
type Model struct {
	Loaded      bool   `json:"loaded"`
	JobID       string `json:"job_id"`
	Title       string `json:"title"`
	Positions   string `json:"positions"`
	JobType     string `json:"job_type"`
	Salary      string `json:"salary"`
	Location    string `json:"location"`
	Experience  string `json:"experience"`
	Applicants  int    `json:"applicants"`
	PostedDate  string `json:"posted_date"`
	Description string `json:"description"`

	HasApplied bool   `json:"has_applied"`
	Action     Action `json:"action"`
	CanGoBack  bool   `json:"can_go_back"`
}

// Render builds the page model from shared state
func (v *JobDetailView) Render() Model {
	job := v.state.Job()
	applied := state.HasApplied(job, v.state.UserID())

	m := Model{
		HasApplied: applied,
		Action:     Action{Label: LabelApply, Enabled: true},
		CanGoBack:  v.history.CanGoBack(),
	}

	switch {
	case applied:
		m.Action = Action{Label: LabelAlreadyApplied, Enabled: false}
	case v.isApplying():
		m.Action.Enabled = false
	}

	if job == nil {
		return m
	}

	m.Loaded = true
	m.JobID = job.ID
	m.Title = job.Title
	m.Positions = formatNumber(job.Position) + " Positions"
	m.JobType = job.JobType
	m.Salary = formatSalary(job.Salary)
	m.Location = job.Location
	m.Experience = formatNumber(job.ExperienceLevel) + " yrs"
	m.Applicants = job.ApplicantCount()
	m.PostedDate = job.PostedDate()
	m.Description = job.Description
	return m
}

func formatSalary(lpa float64) string {
	return formatNumber(lpa) + " LPA"
}

// formatNumber prints backend numbers without trailing zeros: 3, 1.5
func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// WriteText renders m for a terminal
func WriteText(w io.Writer, m Model) error {
	var b strings.Builder

	if m.CanGoBack {
		b.WriteString("< Back\n\n")
	}

	if !m.Loaded {
		b.WriteString("Loading job...\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "%s\n", m.Title)
	fmt.Fprintf(&b, "[%s] [%s] [%s]\n", m.Positions, m.JobType, m.Salary)

	control := "enabled"
	if !m.Action.Enabled {
		control = "disabled"
	}
	fmt.Fprintf(&b, "(%s) %s\n\n", m.Action.Label, control)

	b.WriteString("Job Details\n")
	table := tablewriter.NewWriter(&b)
	table.Header("Field", "Value")
	table.Append("Role", m.Title)
	table.Append("Location", m.Location)
	table.Append("Experience Required", m.Experience)
	table.Append("Salary", m.Salary)
	table.Append("Total Applicants", strconv.Itoa(m.Applicants))
	table.Append("Posted Date", m.PostedDate)
	if err := table.Render(); err != nil {
		return fmt.Errorf("render job details: %w", err)
	}

	b.WriteString("\nJob Description\n")
	fmt.Fprintf(&b, "  %s\n", m.Description)

	_, err := io.WriteString(w, b.String())
	return err
}
