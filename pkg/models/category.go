package models

// Category groups submissions inside a tab (e.g. "Leetcode" in the "IP" tab)
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Tab  string `json:"tab" db:"tab"`
}
