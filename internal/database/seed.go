package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Default reference data. Harder levels get smaller offsets so they come back
// sooner; "Editorial" adds nothing because a problem solved from the editorial
// needs the earliest revision.
var (
	defaultTypes = []struct {
		Name   string
		Offset int
	}{
		{"Editorial", 0},
		{"Hint", 1},
		{"Self", 2},
	}
	defaultLevels = []struct {
		Name   string
		Offset int
	}{
		{"Very Easy", 2},
		{"Easy", 2},
		{"Medium", 1},
		{"Hard", 0},
		{"Very Hard", 0},
	}
	defaultCategories = []struct {
		Name string
		Tab  string
	}{
		{"Leetcode", "IP"},
		{"Codeforces", "IP"},
		{"GeeksforGeeks", "IP"},
		{"Arrays", "DSA"},
		{"Graphs", "DSA"},
		{"DP", "DSA"},
	}
)

// seed inserts the default reference data, keeping rows that already exist
func seed(ctx context.Context, db *sqlx.DB) error {
	for _, t := range defaultTypes {
		query := db.Rebind(`INSERT INTO sp_type (name, offset_days) VALUES (?, ?) ON CONFLICT DO NOTHING`)
		if _, err := db.ExecContext(ctx, query, t.Name, t.Offset); err != nil {
			return fmt.Errorf("failed to seed type %s: %w", t.Name, err)
		}
	}
	for _, l := range defaultLevels {
		query := db.Rebind(`INSERT INTO sp_level (name, offset_days) VALUES (?, ?) ON CONFLICT DO NOTHING`)
		if _, err := db.ExecContext(ctx, query, l.Name, l.Offset); err != nil {
			return fmt.Errorf("failed to seed level %s: %w", l.Name, err)
		}
	}
	for _, c := range defaultCategories {
		query := db.Rebind(`INSERT INTO sp_category (name, tab) VALUES (?, ?) ON CONFLICT DO NOTHING`)
		if _, err := db.ExecContext(ctx, query, c.Name, c.Tab); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
	}
	return nil
}
