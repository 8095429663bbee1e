package primary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intentbot/internal/models"
	"intentbot/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const jobColumns = `id, job_id, task_type, payload, queue, status, result, error, created_at, updated_at`

// RecordJobEnqueue inserts a record into the background_jobs table.
func (s *StoreImpl) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	query := `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (job_id) DO NOTHING
		RETURNING id`

	payloadJSON := json.RawMessage("{}")
	if params.Payload != nil {
		payloadJSON = json.RawMessage(params.Payload)
	}

	var insertedID int64
	err := s.db.QueryRow(ctx, query,
		params.JobID, params.TaskType, payloadJSON, params.Queue, params.Status, time.Now(),
	).Scan(&insertedID)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row when the job is already recorded.
		if errors.Is(err, pgx.ErrNoRows) {
			log.Debugf("Job %s already recorded, skipping insertion", params.JobID)
			return nil
		}
		return fmt.Errorf("failed to record job enqueue event for JobID %s: %w", params.JobID, err)
	}

	log.Debugf("Recorded job enqueue event for JobID %s with DB ID %d", params.JobID, insertedID)
	return nil
}

// UpdateJobStatus updates the status of a job given its Asynq Task UUID.
func (s *StoreImpl) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	query := `UPDATE background_jobs SET status = $1, updated_at = $2 WHERE job_id = $3`
	cmdTag, err := s.db.Exec(ctx, query, status, time.Now(), jobID)
	if err != nil {
		return fmt.Errorf("failed to update job status for job %s: %w", jobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found to update status: %w", jobID, store.ErrNotFound)
	}
	return nil
}

// CompleteJob records the final state of a job.
func (s *StoreImpl) CompleteJob(ctx context.Context, jobID uuid.UUID, status string, result json.RawMessage, errMsg string) error {
	query := `UPDATE background_jobs SET status = $1, result = $2, error = $3, updated_at = $4 WHERE job_id = $5`
	var errCol *string
	if errMsg != "" {
		errCol = &errMsg
	}
	var resultCol any
	if len(result) > 0 {
		resultCol = result
	}
	cmdTag, err := s.db.Exec(ctx, query, status, resultCol, errCol, time.Now(), jobID)
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not found to complete: %w", jobID, store.ErrNotFound)
	}
	return nil
}

// GetJob retrieves one job by its Asynq Task UUID.
func (s *StoreImpl) GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error) {
	query := `SELECT ` + jobColumns + ` FROM background_jobs WHERE job_id = $1`
	job, err := scanJob(s.db.QueryRow(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	return job, nil
}

// ListJobs returns jobs, newest first.
func (s *StoreImpl) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	query := `SELECT ` + jobColumns + ` FROM background_jobs ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.BackgroundJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return jobs, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return jobs, fmt.Errorf("error iterating job rows: %w", err)
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (*models.BackgroundJob, error) {
	job := &models.BackgroundJob{}
	var result []byte
	err := row.Scan(
		&job.ID, &job.JobID, &job.TaskType, &job.Payload, &job.Queue, &job.Status,
		&result, &job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
	if len(result) > 0 {
		job.Result = result
	}
	return job, err
}
