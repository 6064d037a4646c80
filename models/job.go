package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a pipeline job. Completed, failed and
// cancelled are terminal.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// PipelineJob is the unit of work that ties extraction, cleaning,
// deduplication, scoring and persistence together for a single source run.
// The executor that created a job is its only writer; the scheduler that
// retries failed jobs lives outside this module and only reads
// RetryCount/MaxRetries.
type PipelineJob struct {
	ID         uuid.UUID `json:"id"`
	SourceName string    `json:"source_name"`
	SourceURL  string    `json:"source_url"`
	Status     JobStatus `json:"status"`

	ItemsScraped   int `json:"items_scraped"`
	ItemsValidated int `json:"items_validated"`
	ItemsSaved     int `json:"items_saved"`
	ItemsRejected  int `json:"items_rejected"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`

	Errors []string `json:"errors"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// IsTerminal reports whether the job reached a final state.
func (j *PipelineJob) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// RecordError appends a human-readable error to the job's audit trail.
func (j *PipelineJob) RecordError(message string) {
	j.Errors = append(j.Errors, message)
}

// CountersReconcile verifies the completion invariant
// saved + rejected <= scraped.
func (j *PipelineJob) CountersReconcile() bool {
	return j.ItemsSaved+j.ItemsRejected <= j.ItemsScraped
}
