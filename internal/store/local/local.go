// Package local is the SQLite backend of the history and job stores, for
// single-node setups and tests.
package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"intentbot/internal/models"
	"intentbot/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// StoreImpl implements store.Store on SQLite.
type StoreImpl struct {
	db *sql.DB
}

var _ store.Store = (*StoreImpl)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS classification_history (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id     TEXT NOT NULL,
	sentence_index INTEGER NOT NULL,
	sentence       TEXT NOT NULL,
	lemmas         TEXT NOT NULL DEFAULT '',
	category       TEXT,
	score          REAL NOT NULL DEFAULT 0,
	error          TEXT,
	answer         TEXT,
	created_at     TIMESTAMP NOT NULL,
	UNIQUE (message_id, sentence_index)
);
CREATE INDEX IF NOT EXISTS idx_classification_history_created ON classification_history (created_at DESC);

CREATE TABLE IF NOT EXISTS background_jobs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	job_id     TEXT NOT NULL UNIQUE,
	task_type  TEXT NOT NULL,
	payload    BLOB NOT NULL,
	queue      TEXT NOT NULL,
	status     TEXT NOT NULL,
	result     BLOB,
	error      TEXT,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// NewLocalStore opens (or creates) the SQLite database at path. ":memory:"
// gives a private in-memory database.
func NewLocalStore(ctx context.Context, path string) (*StoreImpl, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open sqlite database %s: %w", path, err)
	}
	// SQLite serializes writers anyway, and an in-memory database lives in a
	// single connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create schema: %w", err)
	}
	log.Debugf("SQLite store ready at %s", path)
	return &StoreImpl{db: db}, nil
}

func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *StoreImpl) Close() error {
	return s.db.Close()
}

// --- History Store Implementation ---

const historyColumns = `id, message_id, sentence_index, sentence, lemmas, category, score, error, answer, created_at`

func (s *StoreImpl) RecordClassifications(ctx context.Context, records []*models.ClassificationRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for recording classifications: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO classification_history (message_id, sentence_index, sentence, lemmas, category, score, error, answer, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (message_id, sentence_index) DO UPDATE
		SET sentence = excluded.sentence, lemmas = excluded.lemmas, category = excluded.category,
		    score = excluded.score, error = excluded.error, answer = excluded.answer
		RETURNING id`
	now := time.Now().UTC()

	for _, r := range records {
		err := tx.QueryRowContext(ctx, query,
			r.MessageID.String(), r.SentenceIndex, r.Sentence, r.Lemmas, r.Category, r.Score, r.Error, r.Answer, now,
		).Scan(&r.ID)
		if err != nil {
			return fmt.Errorf("failed to insert classification for message %s, sentence %d: %w", r.MessageID, r.SentenceIndex, err)
		}
		r.CreatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for recording classifications: %w", err)
	}
	return nil
}

func (s *StoreImpl) ListClassifications(ctx context.Context, limit, offset int) ([]*models.ClassificationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + historyColumns + ` FROM classification_history
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	return collectRecords(rows)
}

func (s *StoreImpl) ListMessageClassifications(ctx context.Context, messageID uuid.UUID) ([]*models.ClassificationRecord, error) {
	query := `SELECT ` + historyColumns + ` FROM classification_history
		WHERE message_id = ? ORDER BY sentence_index`
	rows, err := s.db.QueryContext(ctx, query, messageID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications for message %s: %w", messageID, err)
	}
	return collectRecords(rows)
}

func (s *StoreImpl) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM classification_history
		WHERE category IS NOT NULL
		GROUP BY category ORDER BY COUNT(*) DESC, category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}
	defer rows.Close()

	var counts []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func collectRecords(rows *sql.Rows) ([]*models.ClassificationRecord, error) {
	defer rows.Close()

	records := []*models.ClassificationRecord{}
	for rows.Next() {
		r := &models.ClassificationRecord{}
		var messageID string
		err := rows.Scan(
			&r.ID, &messageID, &r.SentenceIndex, &r.Sentence, &r.Lemmas,
			&r.Category, &r.Score, &r.Error, &r.Answer, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classification row: %w", err)
		}
		if r.MessageID, err = uuid.Parse(messageID); err != nil {
			return nil, fmt.Errorf("classification %d has invalid message id: %w", r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classification rows: %w", err)
	}
	return records, nil
}

// --- Job Store Implementation ---

const jobColumns = `id, job_id, task_type, payload, queue, status, result, error, created_at, updated_at`

func (s *StoreImpl) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	payload := params.Payload
	if payload == nil {
		payload = []byte("{}")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (job_id) DO NOTHING`,
		params.JobID.String(), params.TaskType, payload, params.Queue, params.Status, now, now)
	if err != nil {
		return fmt.Errorf("failed to record job enqueue event for JobID %s: %w", params.JobID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debugf("Job %s already recorded, skipping insertion", params.JobID)
	}
	return nil
}

func (s *StoreImpl) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE background_jobs SET status = ?, updated_at = ? WHERE job_id = ?`,
		status, time.Now().UTC(), jobID.String())
	if err != nil {
		return fmt.Errorf("failed to update job status for job %s: %w", jobID, err)
	}
	return requireRow(res, jobID)
}

func (s *StoreImpl) CompleteJob(ctx context.Context, jobID uuid.UUID, status string, result json.RawMessage, errMsg string) error {
	var errCol *string
	if errMsg != "" {
		errCol = &errMsg
	}
	var resultCol []byte
	if len(result) > 0 {
		resultCol = result
	}
	res, err := s.db.ExecContext(ctx, `UPDATE background_jobs SET status = ?, result = ?, error = ?, updated_at = ? WHERE job_id = ?`,
		status, resultCol, errCol, time.Now().UTC(), jobID.String())
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}
	return requireRow(res, jobID)
}

func (s *StoreImpl) GetJob(ctx context.Context, jobID uuid.UUID) (*models.BackgroundJob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM background_jobs WHERE job_id = ?`, jobID.String())
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	return job, nil
}

func (s *StoreImpl) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM background_jobs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*models.BackgroundJob, error) {
	job := &models.BackgroundJob{}
	var jobID string
	var payload, result []byte
	err := row.Scan(&job.ID, &jobID, &job.TaskType, &payload, &job.Queue, &job.Status,
		&result, &job.Error, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if job.JobID, err = uuid.Parse(jobID); err != nil {
		return nil, fmt.Errorf("job %d has invalid job id: %w", job.ID, err)
	}
	job.Payload = payload
	if len(result) > 0 {
		job.Result = result
	}
	return job, nil
}

func requireRow(res sql.Result, jobID uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("job %s: %w", jobID, store.ErrNotFound)
	}
	return nil
}
