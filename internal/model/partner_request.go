package model

import "time"

const (
	PartnerRequestStatusPending  = "pending"
	PartnerRequestStatusAccepted = "accepted"
	PartnerRequestStatusRejected = "rejected"
)

type PartnerRequest struct {
	ID         int64     `json:"id"`
	FromUserID int64     `json:"fromUserId"`
	ToUserID   int64     `json:"toUserId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Populated on list reads for display.
	FromName     string `json:"fromName,omitempty"`
	FromUsername string `json:"fromUsername,omitempty"`
}
