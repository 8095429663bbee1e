package store

import (
	"context"
	"encoding/json"

	"intentbot/internal/models"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// --- Job Client ---

type JobClient interface {
	Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	// EnqueueClassifyJob queues a message for classification and returns the job ID.
	EnqueueClassifyJob(ctx context.Context, messageID uuid.UUID, text string) (uuid.UUID, error)
	Close() error
}

// --- History Store ---

type HistoryStore interface {
	RecordClassifications(ctx context.Context, records []*models.ClassificationRecord) error
	ListClassifications(ctx context.Context, limit, offset int) ([]*models.ClassificationRecord, error)
	ListMessageClassifications(ctx context.Context, messageID uuid.UUID) ([]*models.ClassificationRecord, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

// --- Job Store ---

// JobRecordParams holds parameters for recording a job event.
type JobRecordParams struct {
	JobID    uuid.UUID
	TaskType string
	Payload  []byte
	Queue    string
	Status   string
}

type JobStore interface {
	RecordJobEnqueue(ctx context.Context, params JobRecordParams) error
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error
	// CompleteJob stores the final status together with the result or error message.
	CompleteJob(ctx context.Context, jobID uuid.UUID, status string, result json.RawMessage, errMsg string) error
	GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error)
	ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error)
}

// Store is a database backend holding both history and jobs.
type Store interface {
	HistoryStore
	JobStore
	Ping(ctx context.Context) error
	Close() error
}
