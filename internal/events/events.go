package events

import (
	"fmt"
	"time"
)

// Routing keys published through the outbox.
const (
	HabitMissedKey = "habit.missed"
)

// Miss sources.
const (
	SourceMark     = "mark"
	SourceBackfill = "backfill"
)

// HabitMissedPayload is published once per penalized (habit, day).
type HabitMissedPayload struct {
	HabitID   int64     `json:"habit_id"`
	HabitName string    `json:"habit_name"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	PartnerID *int64    `json:"partner_id,omitempty"`
	DateKey   string    `json:"date_key"`
	Source    string    `json:"source"`
	Amount    int64     `json:"amount"`
	MissedAt  time.Time `json:"missed_at"`
	TraceID   string    `json:"trace_id,omitempty"`
}

// EventKey is the idempotency key for a miss event: one per habit per day.
func (p HabitMissedPayload) EventKey() string {
	return fmt.Sprintf("%d:%s", p.HabitID, p.DateKey)
}
