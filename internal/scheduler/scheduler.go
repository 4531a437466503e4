package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/sptracker/internal/metrics"
	"github.com/example/sptracker/pkg/models"
	"github.com/go-co-op/gocron"
)

// DefaultDigestTime is when the daily digest runs unless configured otherwise
const DefaultDigestTime = "08:00"

// Digest summarizes the revisions that are due for a tab
type Digest struct {
	Tab         string
	Pending     []models.CategoryCount
	Total       int
	GeneratedAt time.Time
}

// Notifier delivers digests
type Notifier interface {
	SendDigest(ctx context.Context, d Digest) error
}

// TabLister lists the tabs that have categories
type TabLister interface {
	ListTabs(ctx context.Context) ([]string, error)
}

// PendingReporter counts overdue revisions per category of a tab
type PendingReporter interface {
	OverallPending(ctx context.Context, tab string) ([]models.CategoryCount, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	tabs      TabLister
	pending   PendingReporter
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new scheduler instance running in loc
func New(tabs TabLister, pending PendingReporter, notifier Notifier, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		tabs:      tabs,
		pending:   pending,
		notifier:  notifier,
		logger:    logger,
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

// Start schedules the daily digest at the given "HH:MM" and runs the
// scheduler in the background
func (s *Scheduler) Start(at string) error {
	if at == "" {
		at = DefaultDigestTime
	}
	_, err := s.scheduler.Every(1).Day().At(at).Do(func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("digest run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule digest at %q: %w", at, err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("digest scheduled", "at", at)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunOnce sends the digest of each tab, or of every known tab when none is
// given. Tabs with nothing due are skipped. Delivery failures are logged and
// the remaining tabs are still processed; the first error is returned.
func (s *Scheduler) RunOnce(ctx context.Context, tabs ...string) error {
	if len(tabs) == 0 {
		var err error
		if tabs, err = s.tabs.ListTabs(ctx); err != nil {
			return fmt.Errorf("failed to list tabs: %w", err)
		}
	}

	var firstErr error
	for _, tab := range tabs {
		sent, err := s.sendTab(ctx, tab)
		if err != nil {
			s.logger.Error("failed to send digest", "tab", tab, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if sent {
			metrics.DigestsSent.WithLabelValues(tab).Inc()
		}
	}
	return firstErr
}

func (s *Scheduler) sendTab(ctx context.Context, tab string) (bool, error) {
	counts, err := s.pending.OverallPending(ctx, tab)
	if err != nil {
		return false, fmt.Errorf("failed to get pending counts: %w", err)
	}

	d := Digest{Tab: tab, GeneratedAt: s.now()}
	for _, c := range counts {
		if c.Count > 0 {
			d.Pending = append(d.Pending, c)
			d.Total += c.Count
		}
	}
	if d.Total == 0 {
		s.logger.Debug("nothing due, skipping digest", "tab", tab)
		return false, nil
	}

	if err := s.notifier.SendDigest(ctx, d); err != nil {
		return false, err
	}
	return true, nil
}

// LogNotifier writes digests to a logger. It is used when no chat is
// configured.
type LogNotifier struct {
	Logger *slog.Logger
}

// SendDigest logs d
func (n LogNotifier) SendDigest(_ context.Context, d Digest) error {
	attrs := []any{"tab", d.Tab, "total", d.Total}
	for _, c := range d.Pending {
		attrs = append(attrs, c.Category, c.Count)
	}
	n.Logger.Info("pending revisions", attrs...)
	return nil
}
