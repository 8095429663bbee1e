package primary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"intentbot/internal/store"
)

// StoreImpl implements store.Store using PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

var _ store.Store = (*StoreImpl)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS classification_history (
	id             BIGSERIAL PRIMARY KEY,
	message_id     UUID NOT NULL,
	sentence_index INTEGER NOT NULL,
	sentence       TEXT NOT NULL,
	lemmas         TEXT NOT NULL DEFAULT '',
	category       TEXT,
	score          DOUBLE PRECISION NOT NULL DEFAULT 0,
	error          TEXT,
	answer         TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (message_id, sentence_index)
);
CREATE INDEX IF NOT EXISTS idx_classification_history_created ON classification_history (created_at DESC);

CREATE TABLE IF NOT EXISTS background_jobs (
	id         BIGSERIAL PRIMARY KEY,
	job_id     UUID NOT NULL UNIQUE,
	task_type  TEXT NOT NULL,
	payload    JSONB NOT NULL DEFAULT '{}',
	queue      TEXT NOT NULL,
	status     TEXT NOT NULL,
	result     JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// NewPrimaryStore creates a new PostgreSQL primary store implementation and
// makes sure its tables exist.
func NewPrimaryStore(ctx context.Context, dsn string) (*StoreImpl, error) {
	if dsn == "" {
		return nil, errors.New("database DSN cannot be empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := dbpool.Exec(ctx, schema); err != nil {
		dbpool.Close()
		return nil, fmt.Errorf("unable to create schema: %w", err)
	}
	log.Debug("PostgreSQL schema ready")

	return &StoreImpl{db: dbpool}, nil
}

// Ping checks the database connection.
func (s *StoreImpl) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection pool.
func (s *StoreImpl) Close() error {
	s.db.Close()
	return nil
}
