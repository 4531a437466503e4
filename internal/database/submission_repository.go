package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/sptracker/internal/errs"
	"github.com/example/sptracker/pkg/models"
	"github.com/jmoiron/sqlx"
)

const submissionColumns = `id, link, category, type, level, rts, done, scheduled_at, tab, created_at`

// SubmissionRepository handles database operations for the submission ledger
type SubmissionRepository struct {
	q sqlx.ExtContext
}

// NewSubmissionRepository creates a new repository instance
func NewSubmissionRepository(q sqlx.ExtContext) *SubmissionRepository {
	return &SubmissionRepository{q: q}
}

// WithTx returns a copy of the repository bound to tx
func (r *SubmissionRepository) WithTx(tx *sqlx.Tx) *SubmissionRepository {
	return &SubmissionRepository{q: tx}
}

// SubmissionFilter selects submissions of a tab scheduled in [From, To).
// A nil or empty Categories places no restriction on the category.
type SubmissionFilter struct {
	Tab        string
	From       time.Time
	To         time.Time
	Categories []string
}

// Create inserts a new submission and sets its ID
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	query := r.q.Rebind(`
		INSERT INTO sp_submission (
			link, category, type, level, rts, done, scheduled_at, tab, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := r.q.QueryRowxContext(ctx, query,
		s.Link,
		s.Category,
		s.Type,
		s.Level,
		s.Rts,
		s.Done,
		s.ScheduledAt.UTC(),
		s.Tab,
		s.CreatedAt.UTC(),
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// Get returns a submission by ID
func (r *SubmissionRepository) Get(ctx context.Context, id int64) (*models.Submission, error) {
	var s models.Submission
	query := r.q.Rebind(`SELECT ` + submissionColumns + ` FROM sp_submission WHERE id = ?`)
	err := sqlx.GetContext(ctx, r.q, &s, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.E(errs.NotFound, "database.GetSubmission", fmt.Errorf("submission %d does not exist", id), "id")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &s, nil
}

// MarkDone flips a pending submission to done and returns it. The update only
// matches pending rows, so of two concurrent calls for the same ID exactly one
// succeeds; the other gets a Conflict.
func (r *SubmissionRepository) MarkDone(ctx context.Context, id int64) (*models.Submission, error) {
	query := r.q.Rebind(`UPDATE sp_submission SET done = ? WHERE id = ? AND done = ?`)
	result, err := r.q.ExecContext(ctx, query, true, id, false)
	if err != nil {
		return nil, fmt.Errorf("failed to mark submission done: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	s, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errs.E(errs.Conflict, "database.MarkDone", fmt.Errorf("submission %d is already done", id), "id")
	}
	return s, nil
}

// CountPendingBetween counts pending submissions of a category/type/level
// triple scheduled in [from, to)
func (r *SubmissionRepository) CountPendingBetween(ctx context.Context, category, typ, level string, from, to time.Time) (int, error) {
	query := r.q.Rebind(`
		SELECT COUNT(id)
		FROM sp_submission
		WHERE category = ? AND type = ? AND level = ? AND done = ?
		AND scheduled_at >= ? AND scheduled_at < ?
	`)
	var count int
	err := sqlx.GetContext(ctx, r.q, &count, query, category, typ, level, false, from.UTC(), to.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

// List returns the submissions matching f ordered by schedule
func (r *SubmissionRepository) List(ctx context.Context, f SubmissionFilter) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM sp_submission
		WHERE tab = ? AND scheduled_at >= ? AND scheduled_at < ?`
	args := []interface{}{f.Tab, f.From.UTC(), f.To.UTC()}

	if len(f.Categories) > 0 {
		query += ` AND category IN (?)`
		args = append(args, f.Categories)
	}
	query += ` ORDER BY scheduled_at, id`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build submissions query: %w", err)
	}

	submissions := []models.Submission{}
	if err := sqlx.SelectContext(ctx, r.q, &submissions, r.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	return submissions, nil
}
