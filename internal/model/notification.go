package model

import "time"

const (
	NotificationTypeHabitMissed    = "habit_missed"
	NotificationTypePartnerRequest = "partner_request"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
