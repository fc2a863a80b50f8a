package model

import "time"

const (
	TransactionTypePenalty = "penalty"
	TransactionTypeReward  = "reward"

	TransactionStatusPending   = "pending"
	TransactionStatusConfirmed = "confirmed"
)

type Transaction struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Type      string    `json:"type"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	FromLabel string    `json:"from"`
	ToLabel   string    `json:"to"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
