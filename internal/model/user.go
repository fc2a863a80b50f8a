package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarSeed   string    `json:"avatarSeed"`
	TotalEarned  int64     `json:"totalEarned"`
	TotalSpent   int64     `json:"totalSpent"`
	PartnerID    *int64    `json:"partnerId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
