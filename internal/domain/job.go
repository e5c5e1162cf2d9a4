package domain

import "time"

type JobKind string

const (
	JobScan    JobKind = "scan"
	JobProcess JobKind = "process"
)

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusCancelled JobStatus = "cancelled"
	StatusFailed    JobStatus = "failed"
)

func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// Report is the outcome of one batch run. Files skipped because the source
// is already narrower than the target width are counted as failed.
type Report struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// JobSnapshot is a point-in-time view of a background job, safe to hand to
// the HTTP layer while the job keeps running.
type JobSnapshot struct {
	ID         string     `json:"id"`
	Kind       JobKind    `json:"kind"`
	Status     JobStatus  `json:"status"`
	Current    int        `json:"current"`
	Total      int        `json:"total"`
	Log        []string   `json:"log"`
	Report     *Report    `json:"report,omitempty"`
	Files      []FileInfo `json:"files,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
