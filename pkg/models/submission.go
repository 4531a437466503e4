package models

import "time"

// Submission is a single entry of the practice ledger. A done entry records a
// solved attempt, a pending entry is a revision scheduled for ScheduledAt.
type Submission struct {
	ID          int64     `json:"id" db:"id"`
	Link        string    `json:"link" db:"link"`
	Category    string    `json:"category" db:"category"`
	Type        string    `json:"type" db:"type"`
	Level       string    `json:"level" db:"level"`
	Rts         int       `json:"rts" db:"rts"` // repetition count
	Done        bool      `json:"done" db:"done"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	Tab         string    `json:"tab" db:"tab"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CalendarEvent is the calendar view of a submission
type CalendarEvent struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Color    string `json:"color"`
	Timed    int    `json:"timed"`
	Link     string `json:"link"`
	Type     string `json:"type"`
	Level    string `json:"level"`
	Category string `json:"category"`
	Rts      int    `json:"rts"`
	Done     int    `json:"done"`
	Tab      string `json:"tab"`
}

// SummaryRow holds per-day counts of a category inside a date range
type SummaryRow struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Done     int    `json:"done"`
	Pending  int    `json:"pending"`
}
