package models

// Level is a difficulty level of a problem. Offset is the number of days it
// contributes to the base revision interval.
type Level struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Offset int    `json:"offset" db:"offset_days"`
}

// Type describes how a problem was solved (on its own, with a hint, from the editorial)
type Type struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Offset int    `json:"offset" db:"offset_days"`
}
