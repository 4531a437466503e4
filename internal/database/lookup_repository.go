package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/sptracker/internal/errs"
	"github.com/example/sptracker/pkg/models"
	"github.com/jmoiron/sqlx"
)

// LookupRepository reads the reference tables: types, levels and categories
type LookupRepository struct {
	q sqlx.ExtContext
}

// NewLookupRepository creates a new repository instance
func NewLookupRepository(q sqlx.ExtContext) *LookupRepository {
	return &LookupRepository{q: q}
}

// WithTx returns a copy of the repository bound to tx
func (r *LookupRepository) WithTx(tx *sqlx.Tx) *LookupRepository {
	return &LookupRepository{q: tx}
}

// ListLevels returns all levels in insertion order
func (r *LookupRepository) ListLevels(ctx context.Context) ([]models.Level, error) {
	levels := []models.Level{}
	err := sqlx.SelectContext(ctx, r.q, &levels, `SELECT id, name, offset_days FROM sp_level ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get levels: %w", err)
	}
	return levels, nil
}

// ListTypes returns all types in insertion order
func (r *LookupRepository) ListTypes(ctx context.Context) ([]models.Type, error) {
	types := []models.Type{}
	err := sqlx.SelectContext(ctx, r.q, &types, `SELECT id, name, offset_days FROM sp_type ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get types: %w", err)
	}
	return types, nil
}

// ListCategories returns the categories of a tab
func (r *LookupRepository) ListCategories(ctx context.Context, tab string) ([]models.Category, error) {
	categories := []models.Category{}
	query := r.q.Rebind(`SELECT id, name, tab FROM sp_category WHERE tab = ? ORDER BY id`)
	if err := sqlx.SelectContext(ctx, r.q, &categories, query, tab); err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// RequireCategory fails with a validation error unless the category exists in tab
func (r *LookupRepository) RequireCategory(ctx context.Context, name, tab string) error {
	query := r.q.Rebind(`SELECT COUNT(id) FROM sp_category WHERE name = ? AND tab = ?`)
	var count int
	if err := sqlx.GetContext(ctx, r.q, &count, query, name, tab); err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count == 0 {
		return errs.Validationf("database.RequireCategory", []string{"category", "tab"},
			"unknown category %q in tab %q", name, tab)
	}
	return nil
}

// ListTabs returns every tab that has at least one category
func (r *LookupRepository) ListTabs(ctx context.Context) ([]string, error) {
	tabs := []string{}
	err := sqlx.SelectContext(ctx, r.q, &tabs, `SELECT DISTINCT tab FROM sp_category ORDER BY tab`)
	if err != nil {
		return nil, fmt.Errorf("failed to get tabs: %w", err)
	}
	return tabs, nil
}

// Offset returns the base revision offset in days for a type/level pair.
// A pair is configured only when both the type and the level exist.
func (r *LookupRepository) Offset(ctx context.Context, typ, level string) (int, error) {
	query := r.q.Rebind(`
		SELECT t.offset_days + l.offset_days
		FROM sp_type t, sp_level l
		WHERE t.name = ? AND l.name = ?
	`)
	var offset int
	err := sqlx.GetContext(ctx, r.q, &offset, query, typ, level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errs.E(errs.Configuration, "database.Offset",
			fmt.Errorf("no offset configured for type %q and level %q", typ, level), "type", "level")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get offset: %w", err)
	}
	return offset, nil
}
