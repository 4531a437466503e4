package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sptracker/pkg/models"
	"github.com/jmoiron/sqlx"
)

// ProgressRepository runs the per-category aggregate queries behind the
// dashboards. Every query starts from the tab's category list so categories
// without activity come back with a zero count.
type ProgressRepository struct {
	q sqlx.ExtContext
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(q sqlx.ExtContext) *ProgressRepository {
	return &ProgressRepository{q: q}
}

// CompletedSince counts done submissions scheduled at or after since
func (r *ProgressRepository) CompletedSince(ctx context.Context, tab string, since time.Time) ([]models.CategoryCount, error) {
	return r.countPerCategory(ctx, `
		SELECT category, tab, COUNT(id) AS cnt
		FROM sp_submission
		WHERE done = ? AND scheduled_at >= ?
		GROUP BY category, tab`,
		tab, true, since.UTC())
}

// DistinctCompleted counts distinct links with at least one done submission
func (r *ProgressRepository) DistinctCompleted(ctx context.Context, tab string) ([]models.CategoryCount, error) {
	return r.countPerCategory(ctx, `
		SELECT category, tab, COUNT(DISTINCT link) AS cnt
		FROM sp_submission
		WHERE done = ?
		GROUP BY category, tab`,
		tab, true)
}

// PendingBefore counts pending submissions scheduled before until
func (r *ProgressRepository) PendingBefore(ctx context.Context, tab string, until time.Time) ([]models.CategoryCount, error) {
	return r.countPerCategory(ctx, `
		SELECT category, tab, COUNT(id) AS cnt
		FROM sp_submission
		WHERE done = ? AND scheduled_at < ?
		GROUP BY category, tab`,
		tab, false, until.UTC())
}

// countPerCategory left-joins the grouped counts onto the tab's categories.
// args are the arguments of the inner query.
func (r *ProgressRepository) countPerCategory(ctx context.Context, inner, tab string, args ...interface{}) ([]models.CategoryCount, error) {
	query := r.q.Rebind(`
		SELECT c.name AS category, COALESCE(s.cnt, 0) AS cnt
		FROM sp_category c
		LEFT JOIN (` + inner + `) s ON s.category = c.name AND s.tab = c.tab
		WHERE c.tab = ?
		ORDER BY c.id
	`)

	counts := []models.CategoryCount{}
	args = append(args, tab)
	if err := sqlx.SelectContext(ctx, r.q, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return counts, nil
}
