package primary

import (
	"context"
	"fmt"
	"time"

	"intentbot/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const historyColumns = `id, message_id, sentence_index, sentence, lemmas, category, score, error, answer, created_at`

// --- History Store Implementation ---

// RecordClassifications inserts all records of a message in one transaction
// and fills in their IDs and timestamps.
func (s *StoreImpl) RecordClassifications(ctx context.Context, records []*models.ClassificationRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for recording classifications: %w", err)
	}
	defer tx.Rollback(ctx)

	sql := `
		INSERT INTO classification_history (message_id, sentence_index, sentence, lemmas, category, score, error, answer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (message_id, sentence_index) DO UPDATE
		SET sentence = EXCLUDED.sentence, lemmas = EXCLUDED.lemmas, category = EXCLUDED.category,
		    score = EXCLUDED.score, error = EXCLUDED.error, answer = EXCLUDED.answer
		RETURNING id, created_at`
	now := time.Now()

	for _, r := range records {
		err := tx.QueryRow(ctx, sql,
			r.MessageID, r.SentenceIndex, r.Sentence, r.Lemmas, r.Category, r.Score, r.Error, r.Answer, now,
		).Scan(&r.ID, &r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert classification for message %s, sentence %d: %w", r.MessageID, r.SentenceIndex, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction for recording classifications: %w", err)
	}
	return nil
}

// ListClassifications returns history rows, newest first.
func (s *StoreImpl) ListClassifications(ctx context.Context, limit, offset int) ([]*models.ClassificationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	sql := `SELECT ` + historyColumns + ` FROM classification_history
		ORDER BY created_at DESC, message_id, sentence_index
		LIMIT $1 OFFSET $2`

	rows, err := s.db.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	return collectRecords(rows)
}

// ListMessageClassifications returns the rows of one message in sentence order.
func (s *StoreImpl) ListMessageClassifications(ctx context.Context, messageID uuid.UUID) ([]*models.ClassificationRecord, error) {
	sql := `SELECT ` + historyColumns + ` FROM classification_history
		WHERE message_id = $1 ORDER BY sentence_index`

	rows, err := s.db.Query(ctx, sql, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications for message %s: %w", messageID, err)
	}
	return collectRecords(rows)
}

// CountByCategory counts classified sentences per category, most frequent first.
func (s *StoreImpl) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	sql := `SELECT category, COUNT(*) FROM classification_history
		WHERE category IS NOT NULL
		GROUP BY category ORDER BY COUNT(*) DESC, category`

	rows, err := s.db.Query(ctx, sql)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}
	return counts, nil
}

func collectRecords(rows pgx.Rows) ([]*models.ClassificationRecord, error) {
	defer rows.Close()

	records := []*models.ClassificationRecord{}
	for rows.Next() {
		r := &models.ClassificationRecord{}
		err := rows.Scan(
			&r.ID, &r.MessageID, &r.SentenceIndex, &r.Sentence, &r.Lemmas,
			&r.Category, &r.Score, &r.Error, &r.Answer, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classification row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classification rows: %w", err)
	}
	return records, nil
}
