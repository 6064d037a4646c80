package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/alwinjaison18/scholarship/models"
)

// JobStore persists pipeline job state so runs survive restarts and stay
// auditable.
type JobStore struct {
	db *sql.DB
}

// NewJobStore creates a store bound to the given connection.
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

// Create inserts a new pending job.
func (store *JobStore) Create(ctx context.Context, job *models.PipelineJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = models.JobStatusPending
	}

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO pipeline_jobs (
			id, source_name, source_url, status, max_retries, created_at
		) VALUES ($1, $2, $3, $4, $5, NOW())`,
		job.ID, job.SourceName, job.SourceURL, job.Status, job.MaxRetries)
	if err != nil {
		return fmt.Errorf("creating pipeline job for %s: %w", job.SourceName, err)
	}
	return nil
}

// Save writes the job's mutable fields back to the database.
func (store *JobStore) Save(ctx context.Context, job *models.PipelineJob) error {
	_, err := store.db.ExecContext(ctx,
		`UPDATE pipeline_jobs SET
			status = $2,
			items_scraped = $3,
			items_validated = $4,
			items_saved = $5,
			items_rejected = $6,
			retry_count = $7,
			errors = $8,
			started_at = $9,
			completed_at = $10
		WHERE id = $1`,
		job.ID,
		job.Status,
		job.ItemsScraped,
		job.ItemsValidated,
		job.ItemsSaved,
		job.ItemsRejected,
		job.RetryCount,
		pq.Array(job.Errors),
		job.StartedAt,
		job.CompletedAt)
	if err != nil {
		return fmt.Errorf("saving pipeline job %s: %w", job.ID, err)
	}
	return nil
}

// GetByID fetches a job. Returns (nil, nil) when no row matches.
func (store *JobStore) GetByID(ctx context.Context, id uuid.UUID) (*models.PipelineJob, error) {
	row := store.db.QueryRowContext(ctx,
		`SELECT id, source_name, source_url, status, items_scraped,
			items_validated, items_saved, items_rejected, retry_count,
			max_retries, errors, created_at, started_at, completed_at
		 FROM pipeline_jobs WHERE id = $1`, id)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching pipeline job %s: %w", id, err)
	}
	return job, nil
}

// ListRecent fetches the most recently created jobs.
func (store *JobStore) ListRecent(ctx context.Context, limit int) ([]*models.PipelineJob, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := store.db.QueryContext(ctx,
		`SELECT id, source_name, source_url, status, items_scraped,
			items_validated, items_saved, items_rejected, retry_count,
			max_retries, errors, created_at, started_at, completed_at
		 FROM pipeline_jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing pipeline jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.PipelineJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning pipeline job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func scanJob(row rowScanner) (*models.PipelineJob, error) {
	var job models.PipelineJob
	err := row.Scan(
		&job.ID,
		&job.SourceName,
		&job.SourceURL,
		&job.Status,
		&job.ItemsScraped,
		&job.ItemsValidated,
		&job.ItemsSaved,
		&job.ItemsRejected,
		&job.RetryCount,
		&job.MaxRetries,
		pq.Array(&job.Errors),
		&job.CreatedAt,
		&job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
