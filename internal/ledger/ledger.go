// Package ledger records practice attempts and their scheduled revisions.
//
// Every write pairs two rows: recording an attempt writes a done row and its
// pending follow-up, completing a revision marks the pending row done and
// writes its successor. Each pair is written in one transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/sptracker/internal/clock"
	"github.com/example/sptracker/internal/database"
	"github.com/example/sptracker/internal/errs"
	"github.com/example/sptracker/internal/metrics"
	"github.com/example/sptracker/internal/spaced_repetition"
	"github.com/example/sptracker/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Ledger owns the submission records
type Ledger struct {
	db     *sqlx.DB
	lookup *database.LookupRepository
	subs   *database.SubmissionRepository
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a ledger on db
func New(db *sqlx.DB, clk clock.Clock, logger *slog.Logger) *Ledger {
	return &Ledger{
		db:     db,
		lookup: database.NewLookupRepository(db),
		subs:   database.NewSubmissionRepository(db),
		clock:  clk,
		logger: logger,
	}
}

// AttemptRequest describes a newly solved problem. Repetitions defaults to 1.
type AttemptRequest struct {
	Link        string
	Category    string
	Type        string
	Level       string
	Tab         string
	Repetitions int
}

// CompleteRequest identifies a pending revision to complete. Empty fields and
// a non-positive Repetitions are taken from the stored record.
type CompleteRequest struct {
	ID          int64
	Link        string
	Category    string
	Type        string
	Level       string
	Tab         string
	Repetitions int
}

// Filter selects submissions of Tab scheduled in [From, To). A nil or empty
// Categories means every category.
type Filter struct {
	Tab        string
	From       time.Time
	To         time.Time
	Categories []string
}

// RecordAttempt writes a done record dated now and a pending record dated at
// the next revision date. It returns both, done first.
func (l *Ledger) RecordAttempt(ctx context.Context, req AttemptRequest) ([]models.Submission, error) {
	const op = "ledger.RecordAttempt"

	if err := requireFields(op, map[string]string{
		"link":     req.Link,
		"category": req.Category,
		"type":     req.Type,
		"level":    req.Level,
		"tab":      req.Tab,
	}); err != nil {
		return nil, err
	}

	var (
		records []models.Submission
		plan    spaced_repetition.Plan
	)
	err := l.inTx(ctx, func(tx *sqlx.Tx) error {
		subs := l.subs.WithTx(tx)
		if err := l.lookup.WithTx(tx).RequireCategory(ctx, req.Category, req.Tab); err != nil {
			return err
		}
		var err error
		plan, err = l.scheduler(tx).NextDate(ctx, spaced_repetition.Request{
			Type:        req.Type,
			Level:       req.Level,
			Category:    req.Category,
			Tab:         req.Tab,
			Repetitions: req.Repetitions,
		})
		if err != nil {
			return err
		}

		done := models.Submission{
			Link:        req.Link,
			Category:    req.Category,
			Type:        req.Type,
			Level:       req.Level,
			Rts:         plan.Repetitions,
			Done:        true,
			ScheduledAt: plan.Now,
			Tab:         req.Tab,
			CreatedAt:   plan.Now,
		}
		pending := done
		pending.Rts = plan.Repetitions + 1
		pending.Done = false
		pending.ScheduledAt = plan.Next

		if err := subs.Create(ctx, &done); err != nil {
			return err
		}
		if err := subs.Create(ctx, &pending); err != nil {
			return err
		}
		records = []models.Submission{done, pending}

		l.logPlan(op, req.Category, req.Type, req.Level, plan)
		return nil
	})
	if err != nil {
		return nil, classify(op, err)
	}

	metrics.AttemptsRecorded.WithLabelValues(req.Tab).Inc()
	metrics.IntervalDays.Observe(float64(plan.IntervalDays()))
	return records, nil
}

// CompleteAndReschedule marks a pending record done and writes its successor
// with the repetition count increased by one
func (l *Ledger) CompleteAndReschedule(ctx context.Context, req CompleteRequest) (*models.Submission, error) {
	const op = "ledger.CompleteAndReschedule"

	if req.ID <= 0 {
		return nil, errs.Validationf(op, []string{"id"}, "id must be positive, got %d", req.ID)
	}

	var (
		next models.Submission
		plan spaced_repetition.Plan
	)
	err := l.inTx(ctx, func(tx *sqlx.Tx) error {
		subs := l.subs.WithTx(tx)
		current, err := subs.MarkDone(ctx, req.ID)
		if err != nil {
			return err
		}
		req = req.withDefaults(current)
		if err := l.lookup.WithTx(tx).RequireCategory(ctx, req.Category, req.Tab); err != nil {
			return err
		}

		plan, err = l.scheduler(tx).NextDate(ctx, spaced_repetition.Request{
			Type:        req.Type,
			Level:       req.Level,
			Category:    req.Category,
			Tab:         req.Tab,
			Repetitions: req.Repetitions,
		})
		if err != nil {
			return err
		}

		next = models.Submission{
			Link:        req.Link,
			Category:    req.Category,
			Type:        req.Type,
			Level:       req.Level,
			Rts:         plan.Repetitions + 1,
			Done:        false,
			ScheduledAt: plan.Next,
			Tab:         req.Tab,
			CreatedAt:   plan.Now,
		}
		if err := subs.Create(ctx, &next); err != nil {
			return err
		}

		l.logPlan(op, req.Category, req.Type, req.Level, plan, "id", req.ID)
		return nil
	})
	if err != nil {
		return nil, classify(op, err)
	}

	metrics.Reschedules.WithLabelValues(req.Tab).Inc()
	metrics.IntervalDays.Observe(float64(plan.IntervalDays()))
	return &next, nil
}

// CountCreatedToday counts the pending records of a category/type/level
// triple scheduled for today
func (l *Ledger) CountCreatedToday(ctx context.Context, category, typ, level string) (int, error) {
	from, to := clock.DayBounds(l.clock.Now())
	count, err := l.subs.CountPendingBetween(ctx, category, typ, level, from, to)
	if err != nil {
		return 0, classify("ledger.CountCreatedToday", err)
	}
	return count, nil
}

// ListSubmissions returns the submissions selected by f
func (l *Ledger) ListSubmissions(ctx context.Context, f Filter) ([]models.Submission, error) {
	const op = "ledger.ListSubmissions"

	if err := f.validate(op); err != nil {
		return nil, err
	}
	submissions, err := l.subs.List(ctx, database.SubmissionFilter{
		Tab:        f.Tab,
		From:       f.From,
		To:         f.To,
		Categories: f.Categories,
	})
	if err != nil {
		return nil, classify(op, err)
	}
	return submissions, nil
}

// Summary counts done and pending submissions per day and category
func (l *Ledger) Summary(ctx context.Context, f Filter) ([]models.SummaryRow, error) {
	submissions, err := l.ListSubmissions(ctx, f)
	if err != nil {
		return nil, err
	}

	loc := l.clock.Now().Location()
	type key struct{ date, category string }
	rows := map[key]*models.SummaryRow{}
	for _, s := range submissions {
		k := key{s.ScheduledAt.In(loc).Format("2006-01-02"), s.Category}
		row, ok := rows[k]
		if !ok {
			row = &models.SummaryRow{Date: k.date, Category: k.category}
			rows[k] = row
		}
		if s.Done {
			row.Done++
		} else {
			row.Pending++
		}
	}

	summary := make([]models.SummaryRow, 0, len(rows))
	for _, row := range rows {
		summary = append(summary, *row)
	}
	sort.Slice(summary, func(i, j int) bool {
		if summary[i].Date != summary[j].Date {
			return summary[i].Date < summary[j].Date
		}
		return summary[i].Category < summary[j].Category
	})
	return summary, nil
}

func (l *Ledger) scheduler(tx *sqlx.Tx) *spaced_repetition.Scheduler {
	return spaced_repetition.New(l.lookup.WithTx(tx), l.subs.WithTx(tx), l.clock)
}

// inTx runs fn in a transaction, rolling back when fn fails
func (l *Ledger) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (l *Ledger) logPlan(op, category, typ, level string, plan spaced_repetition.Plan, attrs ...any) {
	l.logger.Info("revision scheduled", append([]any{
		"op", op,
		"type", typ,
		"level", level,
		"category", category,
		"offset", plan.Offset,
		"rts", plan.Repetitions,
		"backlog", plan.Backlog,
		"next", plan.Next.Format(time.RFC3339),
	}, attrs...)...)
}

func (r CompleteRequest) withDefaults(current *models.Submission) CompleteRequest {
	if r.Link == "" {
		r.Link = current.Link
	}
	if r.Category == "" {
		r.Category = current.Category
	}
	if r.Type == "" {
		r.Type = current.Type
	}
	if r.Level == "" {
		r.Level = current.Level
	}
	if r.Tab == "" {
		r.Tab = current.Tab
	}
	if r.Repetitions <= 0 {
		r.Repetitions = current.Rts
	}
	return r
}

func (f Filter) validate(op string) error {
	if err := requireFields(op, map[string]string{"tab": f.Tab}); err != nil {
		return err
	}
	if f.From.IsZero() || f.To.IsZero() {
		return errs.Validationf(op, []string{"from", "to"}, "date range is required")
	}
	if f.To.Before(f.From) {
		return errs.Validationf(op, []string{"from", "to"}, "range ends before it starts")
	}
	return nil
}

// requireFields reports every blank value as a validation error
func requireFields(op string, fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errs.Validationf(op, missing, "missing required fields: %s", strings.Join(missing, ", "))
}

// classify attaches op to errors that carry no kind yet; those are storage
// failures
func classify(op string, err error) error {
	var classified *errs.Error
	if errors.As(err, &classified) {
		return err
	}
	return errs.E(errs.Storage, op, err)
}
