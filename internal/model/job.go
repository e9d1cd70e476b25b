package model

import "time"

// JobStatus represents the state of a discovery scrape job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// ScrapeJob tracks one city-wide business discovery run.
type ScrapeJob struct {
	ID         string    `json:"id"`
	Keyword    string    `json:"keyword"`
	City       string    `json:"city"`
	Province   string    `json:"province,omitempty"`
	Status     JobStatus `json:"status"`
	LeadsFound int       `json:"leads_found"`
	Error      string    `json:"error_message,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
