package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/crid-api/internal/models"
)

// JournalRepository durably records applied registry mutations. Writes happen
// after the in-memory commit; the journal is the persistence collaborator,
// not a participant in the mutation itself.
type JournalRepository struct {
	db *sqlx.DB
}

// NewJournalRepository constructs the repository.
func NewJournalRepository(db *sqlx.DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Append persists one journal entry.
func (r *JournalRepository) Append(ctx context.Context, entry *models.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO registry_journal (id, action, student_id, course_code, period, actor, payload, created_at)
        VALUES (:id, :action, :student_id, :course_code, :period, :actor, :payload, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// ListByStudent returns the journal trail for one student, newest first.
func (r *JournalRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := fmt.Sprintf(`SELECT id, action, student_id, course_code, period, actor, payload, created_at
        FROM registry_journal WHERE student_id = $1 ORDER BY created_at DESC LIMIT %d`, limit)
	var entries []models.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	return entries, nil
}
