// Package worker holds the asynq task handlers.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"intentbot/internal/models"
	"intentbot/internal/services"
	"intentbot/internal/store"
	"intentbot/internal/tasks"
)

// Replier answers one chat message. *services.ResponderService implements it.
type Replier interface {
	Reply(ctx context.Context, msg services.Message) (*services.ReplyResult, error)
}

// ClassifyDeps holds what the classification handler needs. JobStore is
// optional; without it job state lives only in asynq.
type ClassifyDeps struct {
	Responder Replier
	JobStore  store.JobStore
}

// ClassifyJobResult is written as the task result and stored on the job record.
type ClassifyJobResult struct {
	Ignored bool                  `json:"ignored,omitempty"`
	Reply   *services.ReplyResult `json:"reply,omitempty"`
}

// RegisterHandlers registers all task handlers on mux.
func RegisterHandlers(mux *asynq.ServeMux, deps ClassifyDeps) {
	log.Infof("Registering %s handler", tasks.TypeClassifyMessage)
	mux.HandleFunc(tasks.TypeClassifyMessage, HandleClassifyMessage(deps))
}

// HandleClassifyMessage classifies the task's message and stores the reply.
// Malformed payloads are not retried.
func HandleClassifyMessage(deps ClassifyDeps) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		p, err := tasks.ParseClassifyMessagePayload(t.Payload())
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logger := log.WithFields(log.Fields{"job_id": p.JobID, "message_id": p.MessageID})
		logger.Debug("Processing classification job")

		setStatus(ctx, deps.JobStore, p.JobID, models.JobStatusRunning)

		reply, err := deps.Responder.Reply(ctx, services.Message{ID: p.MessageID, Text: p.Text})
		result := ClassifyJobResult{Reply: reply}
		switch {
		case errors.Is(err, models.ErrEmptyMessage), errors.Is(err, models.ErrBotMessage):
			logger.WithError(err).Info("Message ignored")
			result = ClassifyJobResult{Ignored: true}
		case err != nil:
			complete(ctx, deps.JobStore, p.JobID, models.JobStatusFailed, nil, err.Error())
			return fmt.Errorf("classify message %s: %w", p.MessageID, err)
		}

		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode classification result: %w", err)
		}
		if w := t.ResultWriter(); w != nil {
			if _, err := w.Write(data); err != nil {
				logger.WithError(err).Warn("Failed to write task result")
			}
		}
		complete(ctx, deps.JobStore, p.JobID, models.JobStatusCompleted, data, "")
		logger.Debug("Classification job completed")
		return nil
	}
}

func setStatus(ctx context.Context, js store.JobStore, jobID uuid.UUID, status string) {
	if js == nil || jobID == uuid.Nil {
		return
	}
	if err := js.UpdateJobStatus(ctx, jobID, status); err != nil {
		log.WithError(err).Warnf("Failed to set job %s to %s", jobID, status)
	}
}

func complete(ctx context.Context, js store.JobStore, jobID uuid.UUID, status string, result json.RawMessage, errMsg string) {
	if js == nil || jobID == uuid.Nil {
		return
	}
	if err := js.CompleteJob(ctx, jobID, status, result, errMsg); err != nil {
		log.WithError(err).Warnf("Failed to record job %s as %s", jobID, status)
	}
}
