// Package progress summarizes the ledger for the dashboards.
package progress

import (
	"context"
	"math"
	"time"

	"github.com/example/sptracker/internal/clock"
	"github.com/example/sptracker/internal/errs"
	"github.com/example/sptracker/pkg/models"
)

// Source runs the per-category counting queries. Implementations return one
// entry per category of the tab, zero counts included.
type Source interface {
	CompletedSince(ctx context.Context, tab string, since time.Time) ([]models.CategoryCount, error)
	DistinctCompleted(ctx context.Context, tab string) ([]models.CategoryCount, error)
	PendingBefore(ctx context.Context, tab string, until time.Time) ([]models.CategoryCount, error)
}

// Aggregator computes overall and weekly progress per category
type Aggregator struct {
	source    Source
	clock     clock.Clock
	weekStart time.Weekday
}

// New creates an aggregator. weekStart is the first day of a progress week.
func New(source Source, clk clock.Clock, weekStart time.Weekday) *Aggregator {
	return &Aggregator{source: source, clock: clk, weekStart: weekStart}
}

// OverallProgress counts distinct completed links per category
func (a *Aggregator) OverallProgress(ctx context.Context, tab string) ([]models.CategoryCount, error) {
	counts, err := a.source.DistinctCompleted(ctx, tab)
	if err != nil {
		return nil, errs.E(errs.Storage, "progress.OverallProgress", err, "tab")
	}
	return counts, nil
}

// OverallPending counts pending revisions due today or earlier per category
func (a *Aggregator) OverallPending(ctx context.Context, tab string) ([]models.CategoryCount, error) {
	_, endOfToday := clock.DayBounds(a.clock.Now())
	counts, err := a.source.PendingBefore(ctx, tab, endOfToday)
	if err != nil {
		return nil, errs.E(errs.Storage, "progress.OverallPending", err, "tab")
	}
	return counts, nil
}

// WeeklyProgress returns each category's share of this week's completions
func (a *Aggregator) WeeklyProgress(ctx context.Context, tab string) ([]models.WeeklyProgress, error) {
	since := clock.StartOfWeek(a.clock.Now(), a.weekStart)
	counts, err := a.source.CompletedSince(ctx, tab, since)
	if err != nil {
		return nil, errs.E(errs.Storage, "progress.WeeklyProgress", err, "tab")
	}
	return Percentages(counts), nil
}

// Percentages converts counts into rounded percentages of their total. With
// a zero total every category gets 0.
func Percentages(counts []models.CategoryCount) []models.WeeklyProgress {
	total := 0
	for _, c := range counts {
		total += c.Count
	}

	progress := make([]models.WeeklyProgress, 0, len(counts))
	for _, c := range counts {
		p := models.WeeklyProgress{Category: c.Category}
		if total > 0 {
			p.Progress = int(math.Round(float64(c.Count) * 100 / float64(total)))
		}
		progress = append(progress, p)
	}
	return progress
}
