package models

// CategoryCount is a per-category counter rendered as a chart point
type CategoryCount struct {
	Category string `json:"x" db:"category"`
	Count    int    `json:"y" db:"cnt"`
}

// WeeklyProgress is the share (in percent) of this week's completions that
// belong to a category
type WeeklyProgress struct {
	Category string `json:"x"`
	Progress int    `json:"y"`
}
