package spaced_repetition

import (
	"context"
	"time"

	"github.com/example/sptracker/internal/clock"
)

// DefaultRepetitions is the repetition count of a first submission
const DefaultRepetitions = 1

// OffsetSource resolves the base offset in days of a type/level pair. A
// missing pair must be reported as a configuration error, never defaulted.
type OffsetSource interface {
	Offset(ctx context.Context, typ, level string) (int, error)
}

// BacklogCounter counts pending submissions of a category/type/level triple
// scheduled in [from, to)
type BacklogCounter interface {
	CountPendingBetween(ctx context.Context, category, typ, level string, from, to time.Time) (int, error)
}

// Request describes the submission a revision is being planned for
type Request struct {
	Type        string
	Level       string
	Category    string
	Tab         string
	Repetitions int
}

// Plan is the outcome of scheduling: the inputs that went into the interval
// and the resulting revision date
type Plan struct {
	Offset      int
	Repetitions int
	Backlog     int
	Now         time.Time
	Next        time.Time
}

// IntervalDays is the number of days between Now and Next
func (p Plan) IntervalDays() int {
	return p.Offset + p.Repetitions + p.Backlog
}

// Scheduler computes revision dates. The interval grows with the repetition
// count, and each revision of the same triple already pending for today pushes
// the date one more day so a bulk of entries does not come due on a single day.
type Scheduler struct {
	offsets OffsetSource
	backlog BacklogCounter
	clock   clock.Clock
}

// New creates a scheduler
func New(offsets OffsetSource, backlog BacklogCounter, clk clock.Clock) *Scheduler {
	return &Scheduler{offsets: offsets, backlog: backlog, clock: clk}
}

// NextRevisionDate returns now + (offset + repetitions + backlog) calendar days
func NextRevisionDate(now time.Time, offset, repetitions, backlog int) time.Time {
	return now.AddDate(0, 0, offset+repetitions+backlog)
}

// NextDate plans the next revision for req
func (s *Scheduler) NextDate(ctx context.Context, req Request) (Plan, error) {
	repetitions := req.Repetitions
	if repetitions <= 0 {
		repetitions = DefaultRepetitions
	}

	offset, err := s.offsets.Offset(ctx, req.Type, req.Level)
	if err != nil {
		return Plan{}, err
	}

	now := s.clock.Now()
	from, to := clock.DayBounds(now)
	backlog, err := s.backlog.CountPendingBetween(ctx, req.Category, req.Type, req.Level, from, to)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Offset:      offset,
		Repetitions: repetitions,
		Backlog:     backlog,
		Now:         now,
		Next:        NextRevisionDate(now, offset, repetitions, backlog),
	}, nil
}
