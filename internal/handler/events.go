package handler

import (
	"fmt"
	"time"

	"github.com/example/sptracker/pkg/models"
)

const (
	eventLayout   = "2006-01-02 15:04"
	eventDuration = 5 * time.Minute
)

// toEvent renders a submission as a calendar entry in loc
func toEvent(s models.Submission, loc *time.Location) models.CalendarEvent {
	start := s.ScheduledAt.In(loc)
	e := models.CalendarEvent{
		ID:       s.ID,
		Name:     s.Category,
		Start:    start.Format(eventLayout),
		End:      start.Add(eventDuration).Format(eventLayout),
		Color:    "red",
		Timed:    1,
		Link:     s.Link,
		Type:     s.Type,
		Level:    s.Level,
		Category: s.Category,
		Rts:      s.Rts,
		Tab:      s.Tab,
	}
	if s.Done {
		e.Color = "green"
		e.Done = 1
	}
	return e
}

func toEvents(subs []models.Submission, loc *time.Location) []models.CalendarEvent {
	events := make([]models.CalendarEvent, 0, len(subs))
	for _, s := range subs {
		events = append(events, toEvent(s, loc))
	}
	return events
}

// parseRange parses the from/to dates of a request. A date without a time
// part covers the whole day, so "to" is inclusive.
func parseRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start, _, err := parseDate(from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from: %w", err)
	}
	end, dateOnly, err := parseDate(to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to: %w", err)
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func parseDate(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.ParseInLocation(eventLayout, s, loc); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unrecognized date %q", s)
	}
	return t, false, nil
}
