package model

import "time"

// Habit status values. An empty string means "no outcome recorded today".
const (
	HabitStatusCompleted = "completed"
	HabitStatusMissed    = "missed"
	HabitStatusUnset     = ""
)

type Habit struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"userId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Streak      int    `json:"streak"`
	// Status holds the outcome recorded on LastMarkedDate. Readers must
	// treat it as unset when LastMarkedDate is not today.
	Status string `json:"status"`
	// History holds one entry per processed day, oldest first, append-only.
	History []bool `json:"history"`
	// LastMarkedDate is the date key of the last explicit mark, "" if never marked.
	LastMarkedDate string `json:"lastMarkedDate"`
	// LastPenaltyDate is the date key through which backfill has been applied,
	// "" if backfill has never run.
	LastPenaltyDate string    `json:"lastPenaltyDate"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
