// Package clock provides the current time to the scheduler and aggregators so
// that date arithmetic can be tested deterministically.
package clock

import "time"

// Clock returns the current time
type Clock interface {
	Now() time.Time
}

// Func adapts a function to the Clock interface
type Func func() time.Time

// Now calls f
func (f Func) Now() time.Time { return f() }

// System returns wall-clock time in loc. A nil loc means time.Local.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Func(func() time.Time { return time.Now().In(loc) })
}

// Fixed always returns t
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}

// StartOfDay truncates t to midnight in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayBounds returns [start of t's day, start of the next day)
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// StartOfWeek returns midnight of the most recent weekStart on or before t
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := StartOfDay(t)
	diff := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -diff)
}
