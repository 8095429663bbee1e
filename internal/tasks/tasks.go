package tasks

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Defines constants for task types used in Asynq.

const (
	// TypeClassifyMessage classifies one chat message and composes its reply.
	TypeClassifyMessage = "message:classify"

	// QueueClassify is the queue classification tasks are enqueued on.
	QueueClassify = "classify"
)

// ClassifyMessagePayload is the JSON payload of a TypeClassifyMessage task.
// JobID repeats the asynq task ID so the handler can update the job record.
type ClassifyMessagePayload struct {
	JobID     uuid.UUID `json:"job_id,omitempty"`
	MessageID uuid.UUID `json:"message_id"`
	Text      string    `json:"text"`
}

// NewClassifyMessageTask builds a classification task.
func NewClassifyMessageTask(p ClassifyMessagePayload, opts ...asynq.Option) (*asynq.Task, error) {
	if p.MessageID == uuid.Nil {
		return nil, errors.New("classify task: message id is required")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode classify payload: %w", err)
	}
	return asynq.NewTask(TypeClassifyMessage, data, opts...), nil
}

// ParseClassifyMessagePayload decodes a task payload.
func ParseClassifyMessagePayload(data []byte) (ClassifyMessagePayload, error) {
	var p ClassifyMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode classify payload: %w", err)
	}
	if p.MessageID == uuid.Nil {
		return p, errors.New("classify payload: message id is required")
	}
	return p, nil
}
