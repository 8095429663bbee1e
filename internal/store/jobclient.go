package store

import (
	"context"
	"fmt"
	"time"

	"intentbot/internal/models"
	"intentbot/internal/tasks"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
)

// How long asynq keeps completed classification results around.
const resultRetention = 24 * time.Hour

// AsynqJobClient is a concrete JobClient.
// It enqueues classification tasks and records them to the JobStore when one is set.
var _ JobClient = (*AsynqJobClient)(nil)

type AsynqJobClient struct {
	client   *asynq.Client
	jobStore JobStore
}

// NewAsynqJobClient connects to Redis. js may be nil, in which case jobs are
// only tracked by asynq itself.
func NewAsynqJobClient(redis asynq.RedisClientOpt, js JobStore) *AsynqJobClient {
	return &AsynqJobClient{client: asynq.NewClient(redis), jobStore: js}
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue enqueues a task and records the event to the JobStore.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("AsynqJobClient internal client is not initialized")
	}
	log.Debugf("Enqueuing task type '%s'", task.Type())
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		log.WithError(err).Errorf("Failed to enqueue task type '%s'", task.Type())
		return nil, err
	}
	log.Debugf("Enqueued task type '%s' as %s on queue %s", task.Type(), info.ID, info.Queue)

	if jc.jobStore == nil {
		return info, nil
	}
	jobUUID, err := uuid.Parse(info.ID)
	if err != nil {
		// The job is already enqueued; only the DB record is lost.
		log.WithError(err).Errorf("Asynq task ID '%s' is not a UUID, job not recorded", info.ID)
		return info, nil
	}
	recordParams := JobRecordParams{
		JobID:    jobUUID,
		TaskType: task.Type(),
		Payload:  task.Payload(),
		Queue:    info.Queue,
		Status:   models.JobStatusEnqueued,
	}
	if err := jc.jobStore.RecordJobEnqueue(ctx, recordParams); err != nil {
		log.WithError(err).Errorf("Failed to record job enqueue event for task %s", info.ID)
	}
	return info, nil
}

func (jc *AsynqJobClient) EnqueueClassifyJob(ctx context.Context, messageID uuid.UUID, text string) (uuid.UUID, error) {
	jobID := uuid.New()
	task, err := tasks.NewClassifyMessageTask(tasks.ClassifyMessagePayload{JobID: jobID, MessageID: messageID, Text: text})
	if err != nil {
		return uuid.Nil, err
	}
	_, err = jc.Enqueue(ctx, task,
		asynq.TaskID(jobID.String()),
		asynq.Queue(tasks.QueueClassify),
		asynq.Retention(resultRetention),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue classify job for message %s: %w", messageID, err)
	}
	return jobID, nil
}
