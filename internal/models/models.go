package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClassificationRecord is one classified sentence of a message, as stored in
// the classification_history table.
type ClassificationRecord struct {
	ID            int64     `db:"id" json:"id"`
	MessageID     uuid.UUID `db:"message_id" json:"message_id"`
	SentenceIndex int       `db:"sentence_index" json:"sentence_index"`
	Sentence      string    `db:"sentence" json:"sentence"`
	Lemmas        string    `db:"lemmas" json:"lemmas"` // space separated
	Category      *string   `db:"category" json:"category,omitempty"`
	Score         float64   `db:"score" json:"score"`
	Error         *string   `db:"error" json:"error,omitempty"`
	Answer        *string   `db:"answer" json:"answer,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// CategoryCount is the number of history rows per category.
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int64  `db:"count" json:"count"`
}

// BackgroundJob mirrors the background_jobs table schema.
type BackgroundJob struct {
	ID        int64           `db:"id" json:"id"`
	JobID     uuid.UUID       `db:"job_id" json:"job_id"` // Asynq Task ID
	TaskType  string          `db:"task_type" json:"task_type"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	Queue     string          `db:"queue" json:"queue"`
	Status    string          `db:"status" json:"status"`
	Result    json.RawMessage `db:"result" json:"result,omitempty"`
	Error     *string         `db:"error" json:"error,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
