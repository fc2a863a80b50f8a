package service

import (
	"fmt"
	"time"

	"habitpact/internal/events"
	"habitpact/internal/model"
)

// partnerLabel and selfLabel are the display labels on the two sides of
// a miss pair.
const (
	partnerLabel = "Accountability Partner"
	selfLabel    = "You"
)

// MissEvent is one missed (habit, day). It expands deterministically into
// the owner's penalty entry and, when a partner exists, the mirrored
// reward entry, so the pairing invariant is enforced structurally rather
// than by two independent creation calls.
type MissEvent struct {
	HabitID   int64
	HabitName string
	OwnerID   int64
	OwnerName string
	PartnerID *int64
	DateKey   string
	Source    string // events.SourceMark or events.SourceBackfill
	Amount    int64
}

// Expand produces the ledger entries for this miss: always the owner's
// penalty, plus the partner's reward when partnered. Backfilled misses
// carry the missed date in the reason; an explicit mark names the habit
// without a date suffix.
func (m MissEvent) Expand() []*model.Transaction {
	suffix := ""
	if m.Source == events.SourceBackfill {
		suffix = fmt.Sprintf(" (%s)", m.DateKey)
	}

	entries := []*model.Transaction{
		{
			UserID:    m.OwnerID,
			Type:      model.TransactionTypePenalty,
			Amount:    m.Amount,
			Reason:    fmt.Sprintf("Missed habit: %s%s", m.HabitName, suffix),
			FromLabel: m.OwnerName,
			ToLabel:   partnerLabel,
			Status:    model.TransactionStatusPending,
		},
	}

	if m.PartnerID != nil {
		entries = append(entries, &model.Transaction{
			UserID:    *m.PartnerID,
			Type:      model.TransactionTypeReward,
			Amount:    m.Amount,
			Reason:    fmt.Sprintf("%s missed: %s%s", m.OwnerName, m.HabitName, suffix),
			FromLabel: m.OwnerName,
			ToLabel:   selfLabel,
			Status:    model.TransactionStatusPending,
		})
	}

	return entries
}

// Payload builds the MQ event published alongside the ledger entries.
func (m MissEvent) Payload(now time.Time) events.HabitMissedPayload {
	return events.HabitMissedPayload{
		HabitID:   m.HabitID,
		HabitName: m.HabitName,
		UserID:    m.OwnerID,
		UserName:  m.OwnerName,
		PartnerID: m.PartnerID,
		DateKey:   m.DateKey,
		Source:    m.Source,
		Amount:    m.Amount,
		MissedAt:  now.UTC(),
	}
}
